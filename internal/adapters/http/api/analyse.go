package api

import (
	"net/http"
)

// AnalyseHandler handles document uploads.
type AnalyseHandler struct {
	deps     DocumentAnalyser
	maxBytes int64
}

// NewAnalyseHandler creates a new analyse handler.
func NewAnalyseHandler(deps DocumentAnalyser, maxBytes int64) *AnalyseHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &AnalyseHandler{deps: deps, maxBytes: maxBytes}
}

// HandleAnalyse handles POST /api/analyse requests.
func (h *AnalyseHandler) HandleAnalyse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, nil)
		return
	}

	up, err := ReadUpload(w, r, h.maxBytes)
	if err != nil {
		f := Classify(err)
		writeMessage(w, f.Status, f.Code, f.Message)
		return
	}

	rep, err := h.deps.AnalyseDocument(r.Context(), up.Filename, up.Reader())
	if err != nil {
		f := Classify(err)
		writeMessage(w, f.Status, f.Code, f.Message)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(rep))
}
