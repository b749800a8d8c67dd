// Package output renders command results as text, markdown tables or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
)

// Mode selects the output format.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out  io.Writer
	errW io.Writer
	mode Mode
}

// NewRenderer creates a renderer. ModeAuto resolves to text on a TTY and
// markdown otherwise, so piped output stays machine-friendly.
func NewRenderer(out, errW io.Writer, mode Mode) *Renderer {
	if mode == "" || mode == ModeAuto {
		mode = ModeMarkdown
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			mode = ModeText
		}
	}
	return &Renderer{out: out, errW: errW, mode: mode}
}

// Mode returns the resolved output mode.
func (r *Renderer) Mode() Mode {
	return r.mode
}

// Println writes a plain line to standard output. No-op in JSON mode,
// where only structured payloads belong on stdout.
func (r *Renderer) Println(s string) {
	if r.mode == ModeJSON {
		return
	}
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted text to standard output. No-op in JSON mode.
func (r *Renderer) Printf(format string, args ...any) {
	if r.mode == ModeJSON {
		return
	}
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// StatusLine writes a "name: status" line, with an optional detail.
func (r *Renderer) StatusLine(name, status, detail string) {
	if r.mode == ModeJSON {
		return
	}
	if detail != "" {
		_, _ = fmt.Fprintf(r.out, "%s: %s (%s)\n", name, status, detail)
		return
	}
	_, _ = fmt.Fprintf(r.out, "%s: %s\n", name, status)
}

// Errorf writes formatted text to standard error in every mode.
func (r *Renderer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.errW, format, args...)
}

// Table renders a header and rows as a table (text), a markdown table
// (markdown) or an array of objects (json).
func (r *Renderer) Table(header []string, rows [][]string) {
	if r.mode == ModeJSON {
		objects := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			obj := make(map[string]string, len(header))
			for i, col := range header {
				if i < len(row) {
					obj[col] = row[i]
				}
			}
			objects = append(objects, obj)
		}
		_ = r.JSON(objects)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, col := range header {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	if r.mode == ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}

// JSON writes v as indented JSON to standard output.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
