// Package presenter maps ranked findings onto what a page or terminal shows:
// inline-formatted clause text and a fixed five-cell risk indicator.
package presenter

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/okian/rentura/internal/domain/findings"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// IndicatorCells is the fixed width of the risk indicator.
const IndicatorCells = findings.MaxIntensity

// DefaultEmptyMessage is shown when no clause survived filtering.
const DefaultEmptyMessage = "Es scheint als wären alle Klausel in Ihrem Vertrag zulässig."

// Cell is one position of the risk indicator.
type Cell string

// Indicator cell states.
const (
	CellFilled Cell = "filled"
	CellEmpty  Cell = "empty"
)

// Row is the presentation of one finding.
type Row struct {
	Text      string         `json:"text"`
	HTML      template.HTML  `json:"html"`
	Score     findings.Score `json:"score"`
	Intensity int            `json:"intensity"`
	Indicator []Cell         `json:"indicator"`
}

// View is either a list of rows or, when Empty, a single message.
type View struct {
	Rows    []Row  `json:"rows"`
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
}

// Option applies a configuration option to the Presenter.
type Option func(*Presenter)

// WithEmptyMessage overrides the message shown for an empty list.
func WithEmptyMessage(msg string) Option {
	return func(p *Presenter) {
		if msg = strings.TrimSpace(msg); msg != "" {
			p.emptyMessage = msg
		}
	}
}

// WithMarkdown sets the markdown engine used for clause text.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(p *Presenter) {
		if md != nil {
			p.md = md
		}
	}
}

// Presenter renders finding lists. It is safe for concurrent use.
type Presenter struct {
	md           goldmark.Markdown
	emptyMessage string
}

// New creates a Presenter using GitHub-flavoured markdown. Raw HTML inside
// clause text is not passed through.
func New(opts ...Option) *Presenter {
	p := &Presenter{
		md:           goldmark.New(goldmark.WithExtensions(extension.GFM)),
		emptyMessage: DefaultEmptyMessage,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EmptyMessage returns the configured empty-result message.
func (p *Presenter) EmptyMessage() string { return p.emptyMessage }

// Present maps list onto a View. It never fails.
func (p *Presenter) Present(list findings.List) View {
	if list.Empty() {
		return View{Rows: []Row{}, Empty: true, Message: p.emptyMessage}
	}
	rows := make([]Row, len(list))
	for i, f := range list {
		rows[i] = Row{
			Text:      f.Text,
			HTML:      p.Inline(f.Text),
			Score:     f.Score,
			Intensity: f.Intensity,
			Indicator: Indicator(f.Intensity),
		}
	}
	return View{Rows: rows}
}

// Inline renders text as markdown without the surrounding paragraph, so it
// can sit inside a span. On failure the escaped plain text is returned.
func (p *Presenter) Inline(text string) template.HTML {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(html.EscapeString(text)) //nolint:gosec // escaped above
	}
	out := strings.TrimSpace(buf.String())
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") && strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return template.HTML(out) //nolint:gosec // goldmark output, raw HTML disabled
}

// Indicator returns IndicatorCells cells with the first intensity filled.
// Out-of-range intensities are clamped.
func Indicator(intensity int) []Cell {
	n := max(0, min(IndicatorCells, intensity))
	cells := make([]Cell, IndicatorCells)
	for i := range cells {
		if i < n {
			cells[i] = CellFilled
		} else {
			cells[i] = CellEmpty
		}
	}
	return cells
}

// Filled counts the filled cells of an indicator.
func Filled(cells []Cell) int {
	n := 0
	for _, c := range cells {
		if c == CellFilled {
			n++
		}
	}
	return n
}
