// Package export renders task collections into downloadable report formats.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	domain "github.com/example/task-tracker-demo/domain/task"
)

// Supported report formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

var csvHeader = []string{"id", "title", "description", "due_date", "priority", "status", "created_at"}

// row is the flattened, human-readable shape shared by all formats.
// Timestamps use the minute-precision layout shown in the UI rather than
// the RFC 3339 form the stores persist.
type row struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func toRows(tasks []*domain.Task) []row {
	rows := make([]row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, row{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			DueDate:     domain.FormatDateTime(t.DueDate),
			Priority:    string(t.Priority),
			Status:      string(t.Status),
			CreatedAt:   domain.FormatDateTime(t.CreatedAt),
		})
	}
	return rows
}

// Render serializes tasks in the requested format and returns the payload
// together with its MIME content type. Unknown formats are rejected.
func Render(format string, tasks []*domain.Task) ([]byte, string, error) {
	rows := toRows(tasks)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode JSON export: %w", err)
		}
		return data, "application/json", nil

	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(csvHeader); err != nil {
			return nil, "", fmt.Errorf("failed to write CSV header: %w", err)
		}
		for _, r := range rows {
			record := []string{
				fmt.Sprint(r.ID), r.Title, r.Description,
				r.DueDate, r.Priority, r.Status, r.CreatedAt,
			}
			if err := w.Write(record); err != nil {
				return nil, "", fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, "", fmt.Errorf("failed to flush CSV export: %w", err)
		}
		return buf.Bytes(), "text/csv", nil

	case FormatPDF:
		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(40, 10, "Task Report")
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		for _, r := range rows {
			line := fmt.Sprintf("#%d [%s/%s] %s (due %s)", r.ID, r.Priority, r.Status, r.Title, r.DueDate)
			pdf.MultiCell(0, 6, line, "0", "L", false)
			if r.Description != "" {
				pdf.MultiCell(0, 5, "    "+r.Description, "0", "L", false)
			}
		}
		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			return nil, "", fmt.Errorf("failed to render PDF export: %w", err)
		}
		return buf.Bytes(), "application/pdf", nil

	default:
		return nil, "", fmt.Errorf("unknown export format %q, expected one of csv, json, pdf", format)
	}
}

// Extension returns the file extension for a format accepted by Render.
func Extension(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return "json"
	case FormatPDF:
		return "pdf"
	default:
		return "csv"
	}
}
