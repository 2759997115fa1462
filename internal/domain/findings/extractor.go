package findings

import (
	"regexp"
	"strconv"
	"strings"
)

// Patterns and phrases recognised in the summary.
const (
	// DefaultMarkerPhrase identifies a probability-declaration line.
	DefaultMarkerPhrase = "Wahrscheinlichkeit der Unwirksamkeit"

	// ScorePattern captures the rating of a declaration, e.g. "7/10" or "10 / 10".
	// Spacing may include no-break spaces.
	ScorePattern = `(\d{1,2})` + space + `*/` + space + `*10`

	// AnnotationPattern matches a rating embedded in a description, e.g. ": 7/10" or "(7/10)".
	AnnotationPattern = space + `*[:(]?` + space + `*\d{1,2}` + space + `*/` + space + `*10\)?`

	// BulletPattern matches one leading list marker. '*' and '-' need trailing
	// whitespace so that emphasis such as "**Kaution**" survives.
	BulletPattern = `^(?:•` + space + `*|[*-]` + space + `+)`
)

// space is ASCII whitespace plus Unicode space separators such as U+00A0.
const space = `[\s\p{Zs}]`

var (
	scoreRe      = regexp.MustCompile(ScorePattern)
	annotationRe = regexp.MustCompile(AnnotationPattern)
	bulletRe     = regexp.MustCompile(BulletPattern)
)

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithMarkerPhrases replaces the phrases that identify a probability
// declaration. Blank phrases are ignored; an empty set keeps the default.
func WithMarkerPhrases(phrases ...string) Option {
	return func(e *Extractor) {
		var kept []string
		for _, p := range phrases {
			if p = strings.TrimSpace(p); p != "" {
				kept = append(kept, strings.ToLower(p))
			}
		}
		if len(kept) > 0 {
			e.markers = kept
		}
	}
}

// WithAdditionalMarkerPhrases adds phrases next to the ones already configured.
func WithAdditionalMarkerPhrases(phrases ...string) Option {
	return func(e *Extractor) {
		for _, p := range phrases {
			if p = strings.TrimSpace(p); p != "" {
				e.markers = append(e.markers, strings.ToLower(p))
			}
		}
	}
}

// Extractor runs the summary pipeline. It holds only read-only state and is
// safe for concurrent use.
type Extractor struct {
	markers []string // lower-cased
}

// NewExtractor creates an Extractor recognising DefaultMarkerPhrase unless
// configured otherwise.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		markers: []string{strings.ToLower(DefaultMarkerPhrase)},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract runs the default extractor over summary.
func Extract(summary string) List {
	return defaultExtractor.Extract(summary).Findings
}

// MarkerPhrases returns the lower-cased phrases in use.
func (e *Extractor) MarkerPhrases() []string {
	return append([]string(nil), e.markers...)
}

// IsDeclaration reports whether line contains one of the marker phrases,
// ignoring case.
func (e *Extractor) IsDeclaration(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range e.markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// MatchPairs pairs each line with the declaration directly after it. A line
// not followed by a declaration is dropped, never emitted on its own.
func (e *Extractor) MatchPairs(lines []string) []Pair {
	pairs, _ := e.matchPairs(lines)
	return pairs
}

func (e *Extractor) matchPairs(lines []string) ([]Pair, int) {
	var (
		pairs    []Pair
		unpaired int
	)
	for i := 0; i < len(lines); {
		if i+1 < len(lines) && e.IsDeclaration(lines[i+1]) {
			pairs = append(pairs, Pair{Description: lines[i], Declaration: lines[i+1]})
			i += 2
			continue
		}
		unpaired++
		i++
	}
	return pairs, unpaired
}

// ExtractScore parses the first "N/10" rating out of a declaration line.
func (e *Extractor) ExtractScore(line string) Score {
	m := scoreRe.FindStringSubmatch(line)
	if m == nil {
		return Score{}
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return Score{}
	}
	return ScoreOf(v)
}

// Normalize strips one leading bullet and the first embedded rating from a
// description. Markdown emphasis is kept as is.
func (e *Extractor) Normalize(description string) string {
	text := bulletRe.ReplaceAllString(strings.TrimSpace(description), "")
	if loc := annotationRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]] + text[loc[1]:]
	}
	return strings.TrimSpace(text)
}

// Extract segments, pairs, scores, filters and ranks summary.
func (e *Extractor) Extract(summary string) Result {
	lines := SplitLines(summary)
	pairs, unpaired := e.matchPairs(lines)

	stats := Stats{
		Lines:    len(lines),
		Pairs:    len(pairs),
		Unpaired: unpaired,
	}

	kept := make([]Finding, 0, len(pairs))
	for _, p := range pairs {
		score := e.ExtractScore(p.Declaration)
		if outOfRange(score) {
			stats.OutOfRange++
		}
		intensity := Intensity(score)
		if intensity == 0 {
			stats.Discarded++
			continue
		}
		kept = append(kept, Finding{
			Text:      e.Normalize(p.Description),
			Score:     score,
			Intensity: intensity,
		})
	}

	list := Rank(kept)
	stats.Emitted = len(list)
	return Result{Findings: list, Stats: stats}
}
