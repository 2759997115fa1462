package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/rentura/internal/adapters/upstream"
	"github.com/okian/rentura/internal/config"
	"github.com/okian/rentura/pkg/logger"
)

// ErrNotPDF is returned for documents without a .pdf extension.
var ErrNotPDF = errors.New("Nur PDF-Dateien akzeptiert")

func newAnalyseCmd(o *options) *cobra.Command {
	var (
		endpoint string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "analyse <file.pdf>",
		Short: "Send a lease PDF to the analysis service and rank the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			if !upstream.IsPDFName(path) {
				return fmt.Errorf("%s: %w", path, ErrNotPDF)
			}

			cfg, err := config.LoadLocal(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("endpoint") {
				cfg.UpstreamURL = endpoint
			}
			if cmd.Flags().Changed("timeout") {
				cfg.UpstreamTimeout = timeout
			}
			if err := cfg.ValidateUpstream(); err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open document: %w", err)
			}
			defer func() { _ = f.Close() }()

			client := upstream.NewClient(cfg.UpstreamURL,
				upstream.WithTimeout(cfg.UpstreamTimeout),
				upstream.WithLogger(logger.Named("upstream")),
			)
			svc, err := o.newService(ctx, cfg, client)
			if err != nil {
				return err
			}
			defer svc.Stop()

			rep, err := svc.AnalyseDocument(ctx, path, f)
			if err != nil {
				return err
			}
			return o.write(cmd.OutOrStdout(), rep)
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "analysis endpoint (default from RENTURA_UPSTREAM_URL or config)")
	cmd.Flags().DurationVar(&timeout, "timeout", upstream.DefaultTimeout, "bound for the analysis call")
	return cmd
}
