package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// maxSummaryBytes bounds a JSON summary body.
const maxSummaryBytes = 1 << 20

// FindingsHandler evaluates a summary without calling the analysis service.
type FindingsHandler struct {
	deps SummaryEvaluator
}

// NewFindingsHandler creates a new findings handler.
func NewFindingsHandler(deps SummaryEvaluator) *FindingsHandler {
	return &FindingsHandler{deps: deps}
}

// HandleFindings handles POST /api/findings requests with {"summary": "..."}.
// A missing or non-string summary is evaluated as empty.
func (h *FindingsHandler) HandleFindings(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_findings"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, nil)
		return
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSummaryBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, wrapKind(op, ErrBadRequest, err))
		return
	}
	if body == nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, wrapKind(op, ErrBadRequest, errors.New("body must be a JSON object")))
		return
	}

	var summary string
	if raw, ok := body["summary"]; ok {
		_ = json.Unmarshal(raw, &summary)
	}

	rep := h.deps.Evaluate(r.Context(), summary)
	writeJSON(w, http.StatusOK, newReportResponse(rep))
}
