package output

import "fmt"

// PlainWriter writes one full dependency id per line, in discovery order.
type PlainWriter struct{}

// Write outputs the deduplicated dependency ids.
func (w *PlainWriter) Write(report *DependencyReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	for _, d := range report.Dependencies() {
		if _, err := fmt.Fprintln(out, d.ID); err != nil {
			return err
		}
	}
	return nil
}
