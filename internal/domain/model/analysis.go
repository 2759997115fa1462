// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"time"

	"github.com/okian/rentura/internal/domain/findings"
	"github.com/okian/rentura/internal/domain/presenter"
)

// Analysis is what the upstream analysis service returned for one document.
// Checks is kept verbatim; only Summary feeds the findings pipeline.
type Analysis struct {
	Summary string          `json:"summary"`
	Checks  json.RawMessage `json:"checks"`
}

// Check is one prompt answer inside Checks, as the upstream service
// currently shapes it.
type Check struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// CheckList decodes Checks best-effort. ok is false when Checks has a
// different shape.
func (a Analysis) CheckList() (checks []Check, ok bool) {
	if len(a.Checks) == 0 {
		return nil, true
	}
	if err := json.Unmarshal(a.Checks, &checks); err != nil {
		return nil, false
	}
	return checks, true
}

// Report is one processed analysis ready for display.
type Report struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Findings  findings.List   `json:"findings"`
	View      presenter.View  `json:"view"`
	Checks    json.RawMessage `json:"checks,omitempty"`
	Stats     findings.Stats  `json:"stats"`
}
