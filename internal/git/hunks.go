package git

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// lineEdit is a run of equal, deleted or inserted lines.
type lineEdit struct {
	op diffmatchpatch.Operation
	n  int
}

// changeBlock is a contiguous change in 0-based line indexes.
type changeBlock struct {
	oldStart, oldCount int
	newStart, newCount int
}

// computeHunks diffs two file contents line by line and groups the changes
// into unified-diff style hunks padded with context lines. Changes separated
// by at most 2*context unchanged lines share a hunk.
func computeHunks(oldText, newText string, context int) []Hunk {
	if oldText == newText {
		return nil
	}
	if context < 0 {
		context = 0
	}

	edits := lineEdits(oldText, newText)

	var blocks []changeBlock
	oldPos, newPos := 0, 0
	for _, e := range edits {
		switch e.op {
		case diffmatchpatch.DiffEqual:
			oldPos += e.n
			newPos += e.n
			continue
		case diffmatchpatch.DiffDelete:
			if b := lastOpenBlock(blocks, oldPos, newPos); b != nil {
				b.oldCount += e.n
			} else {
				blocks = append(blocks, changeBlock{oldStart: oldPos, oldCount: e.n, newStart: newPos})
			}
			oldPos += e.n
		case diffmatchpatch.DiffInsert:
			if b := lastOpenBlock(blocks, oldPos, newPos); b != nil {
				b.newCount += e.n
			} else {
				blocks = append(blocks, changeBlock{oldStart: oldPos, newStart: newPos, newCount: e.n})
			}
			newPos += e.n
		}
	}
	if len(blocks) == 0 {
		return nil
	}

	oldTotal, newTotal := oldPos, newPos

	hunks := make([]Hunk, 0, len(blocks))
	cur := blocks[0]
	flush := func(b changeBlock) {
		oldFrom := max(b.oldStart-context, 0)
		newFrom := max(b.newStart-context, 0)
		oldTo := min(b.oldStart+b.oldCount+context, oldTotal)
		newTo := min(b.newStart+b.newCount+context, newTotal)
		hunks = append(hunks, Hunk{
			OldStart: hunkStart(oldFrom, oldTo-oldFrom),
			OldLines: oldTo - oldFrom,
			NewStart: hunkStart(newFrom, newTo-newFrom),
			NewLines: newTo - newFrom,
		})
	}
	for _, next := range blocks[1:] {
		gap := next.oldStart - (cur.oldStart + cur.oldCount)
		if gap <= 2*context {
			cur.oldCount = next.oldStart + next.oldCount - cur.oldStart
			cur.newCount = next.newStart + next.newCount - cur.newStart
			continue
		}
		flush(cur)
		cur = next
	}
	flush(cur)

	return hunks
}

// lastOpenBlock returns the last block when it ends exactly at the current
// position, so adjacent deletes and inserts form one change.
func lastOpenBlock(blocks []changeBlock, oldPos, newPos int) *changeBlock {
	if len(blocks) == 0 {
		return nil
	}
	b := &blocks[len(blocks)-1]
	if b.oldStart+b.oldCount == oldPos && b.newStart+b.newCount == newPos {
		return b
	}
	return nil
}

// hunkStart converts a 0-based index to the 1-based start printed in hunk
// headers. Empty ranges point at the line before the change.
func hunkStart(index, count int) int {
	if count == 0 {
		return index
	}
	return index + 1
}

func lineEdits(oldText, newText string) []lineEdit {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	edits := make([]lineEdit, 0, len(diffs))
	for _, d := range diffs {
		n := countLines(d.Text)
		if n == 0 {
			continue
		}
		edits = append(edits, lineEdit{op: d.Type, n: n})
	}
	return edits
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
