package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/rentura/internal/adapters/upstream"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnsupportedFile = errors.New("unsupported file")
	ErrTooLarge        = errors.New("upload too large")
	ErrMissingFile     = errors.New("missing file")
)

// User-facing messages.
const (
	MsgUnsupportedFile     = "Nur PDF-Dateien akzeptiert"
	MsgTooLarge            = "Die Datei ist zu groß"
	MsgMissingFile         = "Bitte wählen Sie eine PDF-Datei aus"
	MsgUpstreamTimeout     = "Die Analyse hat zu lange gedauert. Bitte versuchen Sie es später erneut."
	MsgUpstreamUnavailable = "Der Analysedienst ist derzeit nicht erreichbar."
)

// Error codes written in JSON error bodies.
const (
	CodeBadRequest          = "bad_request"
	CodeUnsupportedFile     = "unsupported_file"
	CodeTooLarge            = "payload_too_large"
	CodeUpstreamError       = "upstream_error"
	CodeUpstreamTimeout     = "upstream_timeout"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeMethodNotAllowed    = "method_not_allowed"
)

// wrapKind annotates err with the operation and the sentinel kind.
func wrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// newKind returns the sentinel kind annotated with the operation.
func newKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// Failure is an error translated for HTTP clients.
type Failure struct {
	Status  int
	Code    string
	Message string
}

// Classify maps upload and analysis errors onto a status, code and message.
func Classify(err error) Failure {
	var se *upstream.StatusError
	switch {
	case errors.Is(err, ErrUnsupportedFile):
		return Failure{http.StatusBadRequest, CodeUnsupportedFile, MsgUnsupportedFile}
	case errors.Is(err, ErrTooLarge):
		return Failure{http.StatusRequestEntityTooLarge, CodeTooLarge, MsgTooLarge}
	case errors.Is(err, ErrMissingFile):
		return Failure{http.StatusBadRequest, CodeBadRequest, MsgMissingFile}
	case errors.Is(err, ErrBadRequest):
		return Failure{http.StatusBadRequest, CodeBadRequest, err.Error()}
	case errors.As(err, &se):
		msg := strings.TrimSpace(se.Body)
		if msg == "" {
			msg = se.Error()
		}
		return Failure{http.StatusBadGateway, CodeUpstreamError, msg}
	case errors.Is(err, upstream.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return Failure{http.StatusGatewayTimeout, CodeUpstreamTimeout, MsgUpstreamTimeout}
	default:
		return Failure{http.StatusBadGateway, CodeUpstreamUnavailable, MsgUpstreamUnavailable}
	}
}
