package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Renderer writes command output in one mode. Data goes to the output
// writer; status and errors go to the error writer.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   OutputMode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with explicit terminal detection,
// mostly for tests.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	lr := lipgloss.NewRenderer(out)
	if isTTY && mode != ModeMarkdown && mode != ModeJSON {
		lr.SetColorProfile(termenv.NewOutput(out).EnvColorProfile())
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: newStyles(lr),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd fits in int
}

// EffectiveMode resolves ModeAuto: text on a terminal, markdown otherwise.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Styles returns the text-mode styles.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Writer returns the output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the error writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// Println writes a line to the output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a level 1 or 2 header in the effective mode.
func (r *Renderer) Header(level int, text string) {
	switch r.EffectiveMode() {
	case ModeMarkdown:
		r.Println(FormatHeader(level, text))
		r.Println("")
	case ModeJSON:
		// headers are not part of JSON documents
	default:
		style := r.styles.Header2
		if level <= 1 {
			style = r.styles.Header1
		}
		r.Println(style.Render(text))
		r.Println("")
	}
}

// Success writes a status line to the error writer.
func (r *Renderer) Success(msg string) {
	r.status(r.styles.Success, "✓", msg)
}

// Warning writes a warning line to the error writer.
func (r *Renderer) Warning(msg string) {
	r.status(r.styles.Warning, "!", msg)
}

// Error writes an error line to the error writer.
func (r *Renderer) Error(msg string) {
	r.status(r.styles.Error, "✗", msg)
}

func (r *Renderer) status(style lipgloss.Style, symbol, msg string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintf(r.errOut, "%s %s\n", style.Render(symbol), msg)
		return
	}
	_, _ = fmt.Fprintf(r.errOut, "%s %s\n", symbol, msg)
}

// Muted renders s in the muted style when in text mode.
func (r *Renderer) Muted(s string) string {
	if r.EffectiveMode() != ModeText {
		return s
	}
	return r.styles.Muted.Render(s)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// StatusLine writes "symbol name detail" to the output, with the symbol
// picked by status: success, warning, error or anything else (pending).
func (r *Renderer) StatusLine(name, status, detail string) {
	symbol, style := "•", r.styles.Muted
	switch status {
	case "success", "completed":
		symbol, style = "✓", r.styles.Success
	case "warning":
		symbol, style = "!", r.styles.Warning
	case "error", "failed":
		symbol, style = "✗", r.styles.Error
	}

	line := name
	if detail != "" {
		line += " " + r.Muted(detail)
	}
	if r.EffectiveMode() == ModeText {
		symbol = style.Render(symbol)
	}
	r.Printf("%s %s\n", symbol, line)
}
