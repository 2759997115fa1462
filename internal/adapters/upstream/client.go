// Package upstream talks to the document analysis service that turns an
// uploaded lease PDF into a free-text summary plus per-prompt checks.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/okian/rentura/internal/domain/model"
	"github.com/okian/rentura/pkg/logger"
	"github.com/okian/rentura/pkg/metrics"
)

const (
	// DefaultTimeout bounds one analysis call. Analysing a lease takes minutes.
	DefaultTimeout = 5 * time.Minute

	// FormField is the multipart field carrying the document.
	FormField = "file"

	maxResponseBytes = 16 << 20
)

// Error types reported to metrics.
const (
	errTypeStatus    = "status"
	errTypeTransport = "transport"
	errTypeDecode    = "decode"
	errTypeTimeout   = "timeout"
)

var (
	emptyChecks  = json.RawMessage("[]")
	quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
)

// Client posts documents to the analysis endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	log      logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds the whole call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for call diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a client for the given analysis endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{},
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured analysis URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Timeout returns the per-call bound.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Analyse uploads the document and decodes the analysis. The reader is
// consumed fully before the request is sent.
func (c *Client) Analyse(ctx context.Context, filename string, r io.Reader) (model.Analysis, error) {
	body, contentType, err := encodeDocument(filename, r)
	if err != nil {
		return model.Analysis{}, err
	}

	metrics.IncUpstreamInFlight()
	defer metrics.DecUpstreamInFlight()

	start := time.Now()
	t := timeout.New[model.Analysis](timeout.Config{DefaultTimeout: c.timeout})
	res, err := t.Execute(ctx, c.timeout, func(ctx context.Context) (model.Analysis, error) {
		return c.do(ctx, body, contentType)
	})
	elapsed := time.Since(start)
	metrics.RecordUpstreamLatency(float64(elapsed.Milliseconds()))

	if err != nil {
		err = c.classify(ctx, err, elapsed)
		c.debug(ctx, "analysis call failed",
			logger.String("file", filename),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
		return model.Analysis{}, err
	}

	c.debug(ctx, "analysis call finished",
		logger.String("file", filename),
		logger.Duration("elapsed", elapsed),
		logger.Int("summary_len", len(res.Summary)))
	return res, nil
}

func (c *Client) do(ctx context.Context, body []byte, contentType string) (model.Analysis, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return model.Analysis{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Analysis{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.Analysis{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Analysis{}, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(payload)),
		}
	}
	return Decode(payload)
}

// classify maps a failed call onto the package sentinels and records it.
func (c *Client) classify(ctx context.Context, err error, elapsed time.Duration) error {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		recordError(errTypeStatus)
		return err
	case errors.Is(err, ErrDecode):
		recordError(errTypeDecode)
		return err
	case ctx.Err() == nil && (errors.Is(err, context.DeadlineExceeded) || elapsed >= c.timeout):
		recordError(errTypeTimeout)
		return fmt.Errorf("%w after %s: %w", ErrTimeout, c.timeout, err)
	case errors.Is(err, ErrTransport):
		recordError(errTypeTransport)
		return err
	default:
		recordError(errTypeTransport)
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
}

func (c *Client) debug(ctx context.Context, msg string, fields ...logger.Field) {
	if c.log != nil {
		c.log.Debug(ctx, msg, fields...)
	}
}

// IsPDFName reports whether the filename carries a .pdf extension.
func IsPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(strings.TrimSpace(name)), ".pdf")
}

// Decode turns a success body into an Analysis. A missing, null or
// non-string summary becomes "". Checks are kept verbatim.
func Decode(payload []byte) (model.Analysis, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return model.Analysis{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if raw == nil {
		return model.Analysis{}, fmt.Errorf("%w: body is not a JSON object", ErrDecode)
	}

	var a model.Analysis
	if s, ok := raw["summary"]; ok {
		// Non-string summaries are tolerated and read as empty.
		_ = json.Unmarshal(s, &a.Summary)
	}

	a.Checks = emptyChecks
	if ch, ok := raw["checks"]; ok && len(ch) > 0 && string(ch) != "null" {
		a.Checks = ch
	}
	return a, nil
}

func encodeDocument(filename string, r io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FormField, quoteEscaper.Replace(filepath.Base(filename))))
	h.Set("Content-Type", "application/pdf")

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", fmt.Errorf("%w: read document: %w", ErrTransport, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func recordError(errType string) {
	metrics.RecordUpstreamError(errType)
	metrics.RecordErrorByComponent("upstream", errType)
}
