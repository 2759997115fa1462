// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the terminal tool.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/rentura/internal/domain/findings"
	"github.com/okian/rentura/internal/domain/model"
	"github.com/okian/rentura/internal/domain/presenter"
	"github.com/okian/rentura/pkg/logger"
	"github.com/okian/rentura/pkg/metrics"
)

// Analysis sources, used as metric labels.
const (
	SourceUpload  = "upload"
	SourceSummary = "summary"
)

// Analyser turns a document into an upstream analysis.
type Analyser interface {
	Analyse(ctx context.Context, filename string, r io.Reader) (model.Analysis, error)
}

// Service runs uploaded leases through the analysis service and the
// findings pipeline.
type Service struct {
	mu sync.RWMutex

	analyser  Analyser
	extractor *findings.Extractor
	presenter *presenter.Presenter

	started bool

	// Counters
	analyses    atomic.Int64
	failures    atomic.Int64
	emptyViews  atomic.Int64
	findings    atomic.Int64
	outOfRange  atomic.Int64
	lastLatency atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithExtractor replaces the findings extractor.
func WithExtractor(e *findings.Extractor) Option {
	return func(s *Service) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithMarkerPhrases builds the extractor from the given marker phrases.
func WithMarkerPhrases(phrases ...string) Option {
	return func(s *Service) {
		s.extractor = findings.NewExtractor(findings.WithMarkerPhrases(phrases...))
	}
}

// WithPresenter replaces the presenter.
func WithPresenter(p *presenter.Presenter) Option {
	return func(s *Service) {
		if p != nil {
			s.presenter = p
		}
	}
}

// New constructs a new Service. analyser may be nil when only Evaluate is used.
func New(analyser Analyser, opts ...Option) *Service {
	s := &Service{
		analyser:  analyser,
		extractor: findings.NewExtractor(),
		presenter: presenter.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// Start marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.started = true
	s.logger.Info(ctx, "lease check service started",
		logger.Any("markers", s.extractor.MarkerPhrases()),
	)
	return nil
}

// Stop marks the service stopped. In-flight calls finish on their own contexts.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "lease check service stopped")
}

// AnalyseDocument sends the document upstream and turns its summary into a report.
func (s *Service) AnalyseDocument(ctx context.Context, filename string, r io.Reader) (model.Report, error) {
	const op = "service.AnalyseDocument"

	if s.analyser == nil {
		return model.Report{}, fmt.Errorf("%s: %w", op, ErrNoAnalyser)
	}

	start := time.Now()
	analysis, err := s.analyser.Analyse(ctx, filename, r)
	s.lastLatency.Store(time.Since(start).Milliseconds())
	if err != nil {
		s.failures.Add(1)
		metrics.RecordAnalysis(SourceUpload, metrics.OutcomeFailed)
		s.logger.Warn(ctx, "document analysis failed",
			logger.String("file", filename),
			logger.Error(err),
		)
		return model.Report{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.report(ctx, SourceUpload, analysis.Summary, analysis.Checks), nil
}

// Evaluate runs a summary through the findings pipeline without calling upstream.
func (s *Service) Evaluate(ctx context.Context, summary string) model.Report {
	return s.report(ctx, SourceSummary, summary, nil)
}

func (s *Service) report(ctx context.Context, source, summary string, checks json.RawMessage) model.Report {
	start := time.Now()
	res := s.extractor.Extract(summary)
	metrics.RecordExtractionLatency(float64(time.Since(start).Microseconds()) / 1000)

	metrics.RecordSummaryLength(len(summary))
	if strings.TrimSpace(summary) == "" {
		metrics.RecordEmptySummary()
	}
	st := res.Stats
	metrics.RecordExtraction(st.Emitted, st.Discarded, st.Unpaired, st.OutOfRange)
	for _, f := range res.Findings {
		metrics.RecordFindingIntensity(strconv.Itoa(f.Intensity))
	}

	rep := model.Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Findings:  res.Findings,
		View:      s.presenter.Present(res.Findings),
		Checks:    checks,
		Stats:     st,
	}

	outcome := metrics.OutcomeFindings
	if rep.View.Empty {
		outcome = metrics.OutcomeEmpty
		s.emptyViews.Add(1)
	}
	metrics.RecordAnalysis(source, outcome)
	s.analyses.Add(1)
	s.findings.Add(int64(st.Emitted))

	log := s.logger.With(logger.String("report_id", rep.ID))
	log.Debug(ctx, "summary evaluated",
		logger.String("source", source),
		logger.Int("lines", st.Lines),
		logger.Int("pairs", st.Pairs),
		logger.Int("unpaired", st.Unpaired),
		logger.Int("discarded", st.Discarded),
		logger.Int("emitted", st.Emitted),
	)
	if st.OutOfRange > 0 {
		s.outOfRange.Add(int64(st.OutOfRange))
		log.Warn(ctx, "score above 10 clamped to maximum intensity",
			logger.Int("count", st.OutOfRange),
		)
	}
	return rep
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	return map[string]interface{}{
		"started":          started,
		"markerPhrases":    s.extractor.MarkerPhrases(),
		"analyses":         s.analyses.Load(),
		"failedAnalyses":   s.failures.Load(),
		"emptyResults":     s.emptyViews.Load(),
		"findingsEmitted":  s.findings.Load(),
		"scoresOutOfRange": s.outOfRange.Load(),
		"lastUpstreamMs":   s.lastLatency.Load(),
	}
}

// EmptyMessage is the text shown when nothing looks risky.
func (s *Service) EmptyMessage() string { return s.presenter.EmptyMessage() }

// defaultLogger is the global logger, or a no-op one when none was initialized.
func defaultLogger() logger.Logger {
	if logger.Initialized() {
		return logger.Get()
	}
	return nopLogger{}
}

// nopLogger keeps a Service usable without a global logger.
type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...logger.Field)  {}
func (nopLogger) Error(context.Context, string, ...logger.Field) {}
func (nopLogger) Debug(context.Context, string, ...logger.Field) {}
func (nopLogger) Warn(context.Context, string, ...logger.Field)  {}
func (nopLogger) Fatal(context.Context, string, ...logger.Field) {}
func (n nopLogger) Named(string) logger.Logger                   { return n }
func (n nopLogger) With(...logger.Field) logger.Logger           { return n }

