// Package site serves the server-rendered upload page.
package site

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/okian/rentura/internal/adapters/http/api"
	"github.com/okian/rentura/internal/domain/model"
	"github.com/okian/rentura/pkg/logger"
)

// Error constants
var (
	ErrRender = errors.New("site render failed")
)

// Title is the page heading.
const Title = "Rentura – Der Mietvertragscheck für Wohnraummieten"

// Lawyer is a referral shown next to results.
type Lawyer struct {
	Name string
	URL  string
}

// DefaultLawyers are the tenancy law firms linked from the result page.
var DefaultLawyers = []Lawyer{
	{Name: "Dr. Lang Rechtsanwalt", URL: "https://www.langrechtsanwalt.com/"},
	{Name: "Anwaltsbüro Schmid", URL: "https://schmid-mietrecht.de"},
	{Name: "Fachanwältin Dr. Berger", URL: "https://kanzlei-berger.com"},
}

// Analyser runs an uploaded lease through analysis.
type Analyser interface {
	AnalyseDocument(ctx context.Context, filename string, r io.Reader) (model.Report, error)
}

// pageData feeds templates/page.html.
type pageData struct {
	Title     string
	Report    *model.Report
	Error     string
	ErrorCode string
	Lawyers   []Lawyer
	MaxMB     int64
}

// RootHandler renders the upload page and its results.
type RootHandler struct {
	deps     Analyser
	maxBytes int64
	lawyers  []Lawyer
	log      logger.Logger
}

// Option configures a RootHandler.
type Option func(*RootHandler)

// WithMaxUploadBytes caps the accepted document size.
func WithMaxUploadBytes(n int64) Option {
	return func(h *RootHandler) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

// WithLawyers replaces the referral list.
func WithLawyers(l []Lawyer) Option {
	return func(h *RootHandler) { h.lawyers = l }
}

// WithLogger sets the logger used for render failures.
func WithLogger(l logger.Logger) Option {
	return func(h *RootHandler) { h.log = l }
}

// NewRootHandler creates a new root handler.
func NewRootHandler(deps Analyser, opts ...Option) *RootHandler {
	h := &RootHandler{
		deps:     deps,
		maxBytes: api.DefaultMaxUploadBytes,
		lawyers:  DefaultLawyers,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches the upload page and its assets to mux.
func Register(_ context.Context, mux *http.ServeMux, h *RootHandler) {
	if mux == nil {
		panic("mux is nil")
	}
	if h == nil {
		panic("root handler is nil")
	}

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
	mux.HandleFunc("/", api.MetricsMiddleware(h.HandleRoot, "site"))
}

// HandleRoot serves GET / with the empty form and POST / with the analysis result.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := pageData{
		Title:   Title,
		Lawyers: h.lawyers,
		MaxMB:   (h.maxBytes + (1 << 20) - 1) >> 20,
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, r, http.StatusOK, data)
	case http.MethodPost:
		status := http.StatusOK
		if rep, err := h.analyse(w, r); err != nil {
			f := api.Classify(err)
			status, data.Error, data.ErrorCode = f.Status, f.Message, f.Code
		} else {
			data.Report = &rep
		}
		h.render(w, r, status, data)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *RootHandler) analyse(w http.ResponseWriter, r *http.Request) (model.Report, error) {
	up, err := api.ReadUpload(w, r, h.maxBytes)
	if err != nil {
		return model.Report{}, err
	}
	return h.deps.AnalyseDocument(r.Context(), up.Filename, up.Reader())
}

func (h *RootHandler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		if h.log != nil {
			h.log.Error(r.Context(), "page render failed", logger.Error(errors.Join(ErrRender, err)))
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
