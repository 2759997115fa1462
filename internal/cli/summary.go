package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/rentura/internal/config"
)

func newSummaryCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [file]",
		Short: "Rank the risky clauses of an analysis summary",
		Long: `Reads a summary from file, or from stdin when the file is omitted or "-",
and prints the clauses rated above 5/10 ordered by risk.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open summary: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}
			text, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read summary: %w", err)
			}

			cfg, err := config.LoadLocal(ctx)
			if err != nil {
				return err
			}
			svc, err := o.newService(ctx, cfg, nil)
			if err != nil {
				return err
			}
			defer svc.Stop()

			return o.write(cmd.OutOrStdout(), svc.Evaluate(ctx, string(text)))
		},
	}
}
