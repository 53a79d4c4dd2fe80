package commands

import (
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/strata/internal/engine/manager"
)

func (c *CLI) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the project cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.app.Stats(cmd.Context(), c.project)
			if err != nil {
				return err
			}
			return c.render(cmd, s, func(w io.Writer) { printSummary(w, s) })
		},
	}
}

func printSummary(w io.Writer, s manager.Summary) {
	printf(w, "project:      %s\n", s.Root)
	printf(w, "backend:      %s\n", s.Fast.Backend)
	printf(w, "fast keys:    %d (%d expired)\n", s.Fast.Keys, s.Fast.Expired)
	printf(w, "hits/misses:  %d/%d\n", s.Fast.Hits, s.Fast.Misses)
	printf(w, "files:        %d (%d not analyzed)\n", s.Entries, s.Stale)
	printf(w, "dependencies: %d\n", s.Index.TotalDependencies)
	if len(s.Cycles) == 0 {
		return
	}
	printf(w, "cycles:\n")
	for _, cycle := range s.Cycles {
		printf(w, "  %s\n", cycle)
	}
}
