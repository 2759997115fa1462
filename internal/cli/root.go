// Package cli implements the rentura-report command line tool.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/okian/rentura/pkg/logger"
)

var (
	Version = "dev"
	Commit  = "none"
)

// options shared by all subcommands.
type options struct {
	json     bool
	markers  []string
	style    string
	width    int
	logLevel string
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:     "rentura-report",
		Version: Version + " (" + Commit + ")",
		Short:   "Find likely invalid clauses in a residential lease",
		Long: `rentura-report extracts the clauses an analysis summary rates as likely
invalid, ranks them by risk and prints them with a five-dot indicator.

Use "summary" for a summary you already have, or "analyse" to send a
lease PDF to the analysis service first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			return logger.SetLevelString(o.logLevel)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&o.json, "json", false, "print the report as JSON")
	pf.StringArrayVar(&o.markers, "marker", nil, "additional marker phrase for probability lines (repeatable)")
	pf.StringVar(&o.style, "style", "", "glamour style for clause text (dark, light, notty); auto when empty")
	pf.IntVar(&o.width, "width", 80, "wrap width")
	pf.StringVar(&o.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newSummaryCmd(o), newAnalyseCmd(o))
	return root
}

// Execute runs the tool with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
