// Package findings turns the free-text summary of a lease analysis into a
// filtered list of clause findings ranked by risk.
//
// Every function in this package is pure: the same summary always produces
// the same list in the same order, and nothing outside the returned values is
// touched. Logging and metrics are left to callers, which receive a Stats
// value describing what the pipeline saw.
package findings

import (
	"encoding/json"
	"strconv"
)

// Intensity bounds. Scores at or below intensityOffset never surface.
const (
	MaxIntensity    = 5
	MaxScore        = 10
	intensityOffset = 5
)

// Score is the 0-10 rating parsed from a probability declaration.
// Valid is false when the declaration did not carry a readable rating.
type Score struct {
	Value int
	Valid bool
}

// ScoreOf returns a valid Score holding v.
func ScoreOf(v int) Score { return Score{Value: v, Valid: true} }

// String implements fmt.Stringer.
func (s Score) String() string {
	if !s.Valid {
		return "n/a"
	}
	return strconv.Itoa(s.Value) + "/10"
}

// MarshalJSON encodes an absent score as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(s.Value)), nil
}

// UnmarshalJSON accepts an integer or null.
func (s *Score) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Score{}
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = ScoreOf(v)
	return nil
}

// Finding is one clause worth the reader's attention.
type Finding struct {
	Text      string `json:"text"`
	Score     Score  `json:"score"`
	Intensity int    `json:"intensity"`
}

// List is a ranked sequence of findings, highest intensity first.
type List []Finding

// Empty reports whether no finding survived filtering.
func (l List) Empty() bool { return len(l) == 0 }

// Pair is a description line together with the probability declaration that
// immediately follows it in the summary.
type Pair struct {
	Description string
	Declaration string
}

// Stats counts what a single extraction run observed.
type Stats struct {
	Lines      int `json:"lines"`
	Pairs      int `json:"pairs"`
	Unpaired   int `json:"unpaired"`
	Discarded  int `json:"discarded"`
	Emitted    int `json:"emitted"`
	OutOfRange int `json:"out_of_range"`
}

// Result bundles the ranked findings with the run statistics.
type Result struct {
	Findings List
	Stats    Stats
}
