package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jung-kurt/gofpdf"

	"tasklist/models"
)

var Formats = []string{"json", "csv", "pdf"}

// ContentType returns the MIME type for a supported format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "csv":
		return "text/csv"
	case "pdf":
		return "application/pdf"
	default:
		return "application/json"
	}
}

// FormatTime renders an epoch-millisecond timestamp as "MM-DD HH:mm" in loc.
func FormatTime(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format("01-02 15:04")
}

// Render serializes tasks in the given format (json, csv or pdf).
func Render(tasks []models.Task, format string, loc *time.Location) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	switch strings.ToLower(format) {
	case "json":
		return json.MarshalIndent(tasks, "", "  ")
	case "csv":
		var b bytes.Buffer
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"id", "text", "completed", "priority", "created_at"})
		for _, t := range tasks {
			_ = w.Write([]string{t.ID, t.Text, strconv.FormatBool(t.Completed), string(t.Priority), FormatTime(t.CreatedAt, loc)})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case "pdf":
		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(40, 10, "Task List")
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		// Core fonts are cp1252; runes outside it cannot be drawn.
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		if len(tasks) == 0 {
			pdf.MultiCell(0, 6, "No tasks", "0", "L", false)
		}
		for _, t := range tasks {
			mark := "[ ]"
			if t.Completed {
				mark = "[x]"
			}
			line := fmt.Sprintf("%s %s (%s) %s", mark, t.Text, t.Priority, FormatTime(t.CreatedAt, loc))
			pdf.MultiCell(0, 6, tr(line), "0", "L", false)
		}
		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}
