package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// Formats understood by Save.
var Formats = []string{"json", "yaml", "xlsx", "html", "md"}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes the report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(r)
}

// WriteXLSX writes a workbook with a Results sheet and a Summary sheet.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const results = "Results"
	if err := f.SetSheetName("Sheet1", results); err != nil {
		return err
	}
	header := []any{"ID", "Suite", "Title", "Outcome", "Duration (ms)", "Kind", "Error"}
	if err := f.SetSheetRow(results, "A1", &header); err != nil {
		return err
	}
	for i, res := range r.Results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{res.ID, res.Suite, res.Title, res.Outcome(), res.Duration.Milliseconds(), res.Kind, res.Error}
		if err := f.SetSheetRow(results, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(results, "C", "C", 45); err != nil {
		return err
	}
	if err := f.SetColWidth(results, "G", "G", 80); err != nil {
		return err
	}

	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return err
	}
	rows := [][]any{
		{"Run", r.RunID},
		{"Target", r.BaseURL},
		{"Timestamp", r.Timestamp.Format(time.RFC3339)},
		{"Total", r.TotalTests},
		{"Passed", r.Passed},
		{"Failed", r.Failed},
		{"Success rate (%)", r.SuccessRate},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// Markdown renders the report as a markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Library E2E run %s\n\n", r.RunID)
	fmt.Fprintf(&b, "Target `%s`, %s. **%d/%d passed** (%.1f%%).\n\n",
		r.BaseURL, r.Timestamp.Format("2006-01-02 15:04:05"), r.Passed, r.TotalTests, r.SuccessRate)

	b.WriteString("| Case | Suite | Title | Outcome | Duration | Error |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, res := range r.Results {
		outcome := "✅ passed"
		if !res.Passed {
			outcome = "❌ failed"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			cell(res.ID), cell(res.Suite), cell(res.Title), outcome,
			res.Duration.Round(time.Millisecond), cell(res.Error))
	}
	return b.String()
}

// cell escapes text for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

var htmlPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	return p
}()

// WriteHTML renders the markdown through goldmark and sanitizes the result.
func (r *Report) WriteHTML(w io.Writer) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(r.Markdown()), &body); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}

	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Library E2E %s</title></head>\n<body>\n%s</body>\n</html>\n",
		bluemonday.StrictPolicy().Sanitize(r.RunID), htmlPolicy.Sanitize(body.String()))
	return err
}

// Write renders the report in one format.
func (r *Report) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "json":
		return r.WriteJSON(w)
	case "yaml":
		return r.WriteYAML(w)
	case "xlsx":
		return r.WriteXLSX(w)
	case "html":
		return r.WriteHTML(w)
	case "md":
		_, err := io.WriteString(w, r.Markdown())
		return err
	}
	return fmt.Errorf("unknown report format %q", format)
}

// Save writes one file per format into dir and returns their paths.
func (r *Report) Save(dir string, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	var paths []string
	for _, format := range formats {
		format = strings.ToLower(format)
		path := filepath.Join(dir, fmt.Sprintf("library-e2e-%s.%s", r.RunID, format))
		if err := r.saveOne(path, format); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (r *Report) saveOne(path, format string) error {
	var buf bytes.Buffer
	if err := r.Write(&buf, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
