// Package output renders analysis results as text, markdown, JSON, TOON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	toon "github.com/toon-format/toon-go"
	"gopkg.in/yaml.v3"

	"github.com/panbanda/reviewer/pkg/models"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
	FormatYAML     Format = "yaml"
)

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "markdown", "md":
		return FormatMarkdown
	case "toon":
		return FormatTOON
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// FormatFromPath infers a format from an output file extension. ok is false
// for extensions that name no structured format, including .txt.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".md", ".markdown":
		return FormatMarkdown, true
	case ".toon":
		return FormatTOON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Renderable defines data that can render itself in multiple formats.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
	// RenderData returns the underlying data for structured encoders.
	RenderData() any
}

// Formatter writes Renderables and plain values in one configured format.
type Formatter struct {
	format  Format
	writer  io.Writer
	file    *os.File
	colored bool
}

// NewFormatter creates a formatter writing to stdout, or to the file at
// output when it is non-empty. File output is never colored.
func NewFormatter(format Format, output string, colored bool) (*Formatter, error) {
	if output == "" {
		return NewWriter(format, os.Stdout, colored), nil
	}

	f, err := os.Create(output)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &Formatter{format: format, writer: f, file: f}, nil
}

// NewWriter creates a formatter over an existing writer.
func NewWriter(format Format, w io.Writer, colored bool) *Formatter {
	return &Formatter{format: format, writer: w, colored: colored}
}

// Close closes the formatter's writer if it's a file.
func (f *Formatter) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

// Format returns the configured format.
func (f *Formatter) Format() Format {
	return f.format
}

// Colored returns whether colored output is enabled.
func (f *Formatter) Colored() bool {
	return f.colored
}

// Output writes data in the configured format.
func (f *Formatter) Output(data any) error {
	if r, ok := data.(Renderable); ok {
		return f.render(r)
	}
	return f.outputRaw(data)
}

func (f *Formatter) render(r Renderable) error {
	switch f.format {
	case FormatMarkdown:
		return r.RenderMarkdown(f.writer)
	case FormatText:
		return r.RenderText(f.writer, f.colored)
	default:
		return f.encode(r.RenderData())
	}
}

// outputRaw handles data with no text rendering of its own.
func (f *Formatter) outputRaw(data any) error {
	switch f.format {
	case FormatMarkdown:
		fmt.Fprintln(f.writer, "```json")
		if err := f.outputJSON(data); err != nil {
			return err
		}
		fmt.Fprintln(f.writer, "```")
		return nil
	case FormatText:
		return f.outputJSON(data)
	default:
		return f.encode(data)
	}
}

func (f *Formatter) encode(data any) error {
	switch f.format {
	case FormatTOON:
		return f.outputTOON(data)
	case FormatYAML:
		return f.outputYAML(data)
	default:
		return f.outputJSON(data)
	}
}

func (f *Formatter) outputJSON(data any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (f *Formatter) outputTOON(data any) error {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return fmt.Errorf("encode toon: %w", err)
	}
	_, err = fmt.Fprintln(f.writer, string(out))
	return err
}

func (f *Formatter) outputYAML(data any) error {
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return encoder.Close()
}

// Message helpers for colored output

func (f *Formatter) Success(format string, args ...any) {
	if f.colored {
		color.New(color.FgGreen).Fprintf(f.writer, format+"\n", args...)
	} else {
		fmt.Fprintf(f.writer, format+"\n", args...)
	}
}

func (f *Formatter) Warning(format string, args ...any) {
	if f.colored {
		color.New(color.FgYellow).Fprintf(f.writer, format+"\n", args...)
	} else {
		fmt.Fprintf(f.writer, "WARNING: "+format+"\n", args...)
	}
}

func (f *Formatter) Error(format string, args ...any) {
	if f.colored {
		color.New(color.FgRed).Fprintf(f.writer, format+"\n", args...)
	} else {
		fmt.Fprintf(f.writer, "ERROR: "+format+"\n", args...)
	}
}

// SeverityColor colors text by severity: red for high and critical,
// yellow for medium, cyan for low.
func SeverityColor(sev models.Severity, text string) string {
	switch sev {
	case models.SeverityCritical:
		return color.New(color.FgRed, color.Bold).Sprint(text)
	case models.SeverityHigh:
		return color.RedString(text)
	case models.SeverityMedium:
		return color.YellowString(text)
	case models.SeverityLow:
		return color.CyanString(text)
	default:
		return text
	}
}
