package output

import (
	"encoding/csv"
	"os"
	"strconv"
)

// CSVWriter writes dependency reports as CSV, one row per root and dependency.
type CSVWriter struct{}

var csvHeader = []string{"root", "revision", "dependency", "summary", "author", "email", "date", "fixup"}

// Write outputs the dependency report as CSV.
func (w *CSVWriter) Write(report *DependencyReport, options OutputOptions) error {
	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, root := range report.Roots {
		for _, d := range root.Dependencies {
			record := []string{
				root.Commit.ID,
				root.Revision,
				d.ID,
				d.Summary,
				d.Author,
				d.Email,
				d.When.Format(reportDateTimeLayout),
				strconv.FormatBool(d.Fixup),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func createCSVWriter(outputPath string) (*csv.Writer, *os.File, error) {
	out, file, err := openOutputWriter(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return csv.NewWriter(out), file, nil
}
