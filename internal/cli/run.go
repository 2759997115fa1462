package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/okian/rentura/internal/adapters/terminal"
	service "github.com/okian/rentura/internal/app"
	"github.com/okian/rentura/internal/config"
	"github.com/okian/rentura/internal/domain/findings"
	"github.com/okian/rentura/internal/domain/model"
	"github.com/okian/rentura/internal/domain/presenter"
	"github.com/okian/rentura/pkg/logger"
)

// jsonReport is the --json output shape.
type jsonReport struct {
	ID       string          `json:"id"`
	Findings findings.List   `json:"findings"`
	Empty    bool            `json:"empty"`
	Message  string          `json:"message,omitempty"`
	Checks   json.RawMessage `json:"checks,omitempty"`
	Stats    findings.Stats  `json:"stats"`
}

// newService builds the service from config plus the --marker flags.
func (o *options) newService(ctx context.Context, cfg *config.Config, analyser service.Analyser) (*service.Service, error) {
	ex := findings.NewExtractor(
		findings.WithMarkerPhrases(cfg.MarkerPhrases...),
		findings.WithAdditionalMarkerPhrases(o.markers...),
	)
	svc := service.New(analyser,
		service.WithExtractor(ex),
		service.WithPresenter(presenter.New(presenter.WithEmptyMessage(cfg.EmptyMessage))),
		service.WithLogger(logger.Named("report")),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

func (o *options) write(w io.Writer, rep model.Report) error {
	if o.json {
		list := rep.Findings
		if list == nil {
			list = findings.List{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(jsonReport{
			ID:       rep.ID,
			Findings: list,
			Empty:    rep.View.Empty,
			Message:  rep.View.Message,
			Checks:   rep.Checks,
			Stats:    rep.Stats,
		})
	}

	r, err := terminal.NewRenderer(terminal.WithStyle(o.style), terminal.WithWidth(o.width))
	if err != nil {
		return err
	}
	return r.Render(w, rep.View)
}
