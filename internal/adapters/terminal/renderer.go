// Package terminal renders findings for a terminal: clause text through
// glamour, the risk indicator as a row of dots styled with lipgloss.
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/rentura/internal/domain/presenter"
)

// Dot glyphs.
const (
	FilledDot = "●"
	EmptyDot  = "○"
)

const defaultWidth = 80

// Renderer writes a presenter.View to a terminal.
type Renderer struct {
	md     *glamour.TermRenderer
	width  int
	style  string
	filled lipgloss.Style
	empty  lipgloss.Style
	note   lipgloss.Style
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWidth sets the wrap width for clause text.
func WithWidth(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.width = n
		}
	}
}

// WithStyle selects a glamour standard style such as "dark", "light" or
// "notty". Empty picks one based on the terminal background.
func WithStyle(name string) Option {
	return func(r *Renderer) { r.style = name }
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		width:  defaultWidth,
		filled: lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB")).Bold(true),
		empty:  lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		note:   lipgloss.NewStyle().Italic(true),
	}
	for _, opt := range opts {
		opt(r)
	}

	gopts := []glamour.TermRendererOption{glamour.WithWordWrap(r.width - dotsWidth())}
	if r.style == "" {
		gopts = append(gopts, glamour.WithAutoStyle())
	} else {
		gopts = append(gopts, glamour.WithStandardStyle(r.style))
	}
	md, err := glamour.NewTermRenderer(gopts...)
	if err != nil {
		return nil, fmt.Errorf("terminal: markdown renderer: %w", err)
	}
	r.md = md
	return r, nil
}

// Dots renders the indicator for one row.
func (r *Renderer) Dots(cells []presenter.Cell) string {
	var b strings.Builder
	for _, c := range cells {
		if c == presenter.CellFilled {
			b.WriteString(r.filled.Render(FilledDot))
		} else {
			b.WriteString(r.empty.Render(EmptyDot))
		}
	}
	return b.String()
}

// Render writes one line block per row, or the empty message.
func (r *Renderer) Render(w io.Writer, view presenter.View) error {
	if view.Empty || len(view.Rows) == 0 {
		_, err := fmt.Fprintln(w, r.note.Render(view.Message))
		return err
	}

	pad := strings.Repeat(" ", dotsWidth()+2)
	for _, row := range view.Rows {
		text, err := r.md.Render(row.Text)
		if err != nil {
			text = row.Text
		}
		lines := strings.Split(strings.TrimSpace(text), "\n")
		for i, ln := range lines {
			ln = strings.TrimSpace(ln)
			if i == 0 {
				_, err = fmt.Fprintf(w, "%s  %s\n", r.Dots(row.Indicator), ln)
			} else {
				_, err = fmt.Fprintf(w, "%s%s\n", pad, ln)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func dotsWidth() int { return presenter.IndicatorCells }
