// Package export renders task lists as downloadable documents.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"github.com/helixml/tasklist/domain/task"
)

// ErrUnknownFormat indicates an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export document format.
type Format string

// Format values.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// ParseFormat parses a format name, case-insensitively. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// Exporter renders tasks in one of the supported formats.
type Exporter struct {
	title string
	now   func() time.Time
}

// NewExporter creates an Exporter whose PDF reports carry title.
func NewExporter(title string) *Exporter {
	return &Exporter{title: title, now: time.Now}
}

// Export renders tasks in format.
func (e *Exporter) Export(ctx context.Context, tasks []task.Task, format Format) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return json.MarshalIndent(task.Records(tasks), "", "  ")
	case FormatYAML:
		return yaml.Marshal(task.Records(tasks))
	case FormatCSV:
		return e.csv(tasks)
	case FormatPDF:
		return e.pdf(tasks)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func (e *Exporter) csv(tasks []task.Task) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "name", "finished"}); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if err := w.Write([]string{t.ID(), t.Name(), strconv.FormatBool(t.Finished())}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Exporter) pdf(tasks []task.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(e.title, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(e.title))
	pdf.Ln(10)

	done := 0
	for _, t := range tasks {
		if t.Finished() {
			done++
		}
	}
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.Cell(0, 6, fmt.Sprintf("%d tasks, %d completed. Generated %s",
		len(tasks), done, e.now().Format("2006-01-02 15:04")))
	pdf.Ln(10)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 11)
	for _, t := range tasks {
		box := "[  ]"
		if t.Finished() {
			box = "[x]"
		}
		pdf.CellFormat(10, 7, box, "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 7, tr(t.Name()), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
