package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Table is a Renderable table with headers, rows, and optional footer.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string
	// Data replaces the row maps in structured output when set.
	Data any
}

// NewTable creates a table that wraps structured data for serialization.
func NewTable(title string, headers []string, rows [][]string, footer []string, data any) *Table {
	return &Table{
		Title:   title,
		Headers: headers,
		Rows:    rows,
		Footer:  footer,
		Data:    data,
	}
}

func (t *Table) RenderData() any {
	if t.Data != nil {
		return t.Data
	}
	result := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				m[h] = row[j]
			}
		}
		result[i] = m
	}
	return result
}

func (t *Table) RenderText(w io.Writer, colored bool) error {
	writeTitle(w, t.Title, colored, color.New(color.Bold))

	numeric := numericColumns(t.Headers, t.Rows)
	align := make([]tw.Align, len(numeric))
	for i, n := range numeric {
		align[i] = tw.AlignLeft
		if n {
			align[i] = tw.AlignRight
		}
	}
	byColumn := tw.CellAlignment{Global: tw.AlignLeft, PerColumn: align}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  byColumn,
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row:    tw.CellConfig{Alignment: byColumn},
			Footer: tw.CellConfig{Alignment: byColumn},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)

	table.Header(t.Headers)
	for _, row := range t.Rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if len(t.Footer) > 0 {
		footer := make([]any, len(t.Footer))
		for i, f := range t.Footer {
			footer[i] = f
		}
		table.Footer(footer...)
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

func (t *Table) RenderMarkdown(w io.Writer) error {
	if t.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", t.Title)
	}

	fmt.Fprintf(w, "| %s |\n", markdownCells(t.Headers))
	seps := make([]string, len(t.Headers))
	for i, n := range numericColumns(t.Headers, t.Rows) {
		seps[i] = "---"
		if n {
			seps[i] = "---:"
		}
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range t.Rows {
		fmt.Fprintf(w, "| %s |\n", markdownCells(row))
	}
	if len(t.Footer) > 0 {
		fmt.Fprintf(w, "| %s |\n", markdownCells(t.Footer))
	}

	fmt.Fprintln(w)
	return nil
}

// markdownCells joins cells into a table row. Pipes are escaped and line
// breaks collapse to spaces so a cell never splits the row.
func markdownCells(cells []string) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "|", `\|`)
		out[i] = strings.Join(strings.Fields(strings.ReplaceAll(c, "\n", " ")), " ")
	}
	return strings.Join(out, " | ")
}

// numericColumns reports, per header, whether every non-empty cell in that
// column is a number. Line, score and count columns read better right aligned.
func numericColumns(headers []string, rows [][]string) []bool {
	numeric := make([]bool, len(headers))
	for col := range headers {
		seen := false
		numeric[col] = true
		for _, row := range rows {
			if col >= len(row) || row[col] == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64); err != nil {
				numeric[col] = false
				break
			}
		}
		numeric[col] = numeric[col] && seen
	}
	return numeric
}

// Report is a compound Renderable made of several parts under one title.
type Report struct {
	Title    string
	Sections []Renderable
	Data     any
}

func (r *Report) RenderData() any {
	if r.Data != nil {
		return r.Data
	}
	parts := make([]any, len(r.Sections))
	for i, s := range r.Sections {
		parts[i] = s.RenderData()
	}
	return map[string]any{
		"title":    r.Title,
		"sections": parts,
	}
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	writeTitle(w, r.Title, colored, color.New(color.Bold, color.FgCyan))

	for i, s := range r.Sections {
		if err := s.RenderText(w, colored); err != nil {
			return err
		}
		if i < len(r.Sections)-1 {
			fmt.Fprintln(w)
		}
	}
	return nil
}

func (r *Report) RenderMarkdown(w io.Writer) error {
	if r.Title != "" {
		fmt.Fprintf(w, "# %s\n\n", r.Title)
	}
	for _, s := range r.Sections {
		if err := s.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

func writeTitle(w io.Writer, title string, colored bool, c *color.Color) {
	if title == "" {
		return
	}
	if colored {
		c.Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
	fmt.Fprintln(w)
}
