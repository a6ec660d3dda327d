// Package logging builds the log/slog loggers used across git-deps.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// levelOff is above every standard level.
const levelOff = slog.Level(100)

// New creates a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewFile creates a logger that appends to the file at path.
// The caller closes the returned file.
func NewFile(path string, level slog.Level) (*slog.Logger, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f, nil
}

// NewDiscard creates a logger that discards all output.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: levelOff}))
}

// LevelFromString converts a level name to a slog.Level.
// Supports debug, info, warn, error and off (case-insensitive).
// Returns slog.LevelWarn for unrecognized strings.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "off", "none", "quiet":
		return levelOff
	default:
		return slog.LevelWarn
	}
}

// ValidLevel reports whether s is a level name LevelFromString understands.
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug", "info", "warn", "warning", "error", "off", "none", "quiet":
		return true
	}
	return false
}

// EffectiveLevel resolves the level from the --debug flag and configuration.
// The flag wins; an empty configured level means warnings only.
func EffectiveLevel(debug bool, configured string) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return LevelFromString(configured)
}
