package commands

import (
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/engine/invalidation"
	"go.trai.ch/zerr"
)

func (c *CLI) newInvalidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invalidate <files...>",
		Short: "Atomically remove every cached trace of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			retries, _ := cmd.Flags().GetInt("retries")
			batch, err := c.app.Invalidate(cmd.Context(), c.project, args, retries)
			if err != nil {
				return err
			}
			if err := c.render(cmd, batch, func(w io.Writer) { printBatch(w, batch) }); err != nil {
				return err
			}
			if batch.Failed > 0 {
				return zerr.With(zerr.Wrap(domain.ErrOperationFailed, "some files could not be invalidated"), "failed", batch.Failed)
			}
			return nil
		},
	}
	cmd.Flags().IntP("retries", "r", 0, "Attempts per file (default from strata.yaml)")
	return cmd
}

func printBatch(w io.Writer, batch invalidation.BatchResult) {
	for _, r := range batch.Results {
		if r.Success {
			printf(w, "%s\tinvalidated in %s (%d operations, %d attempts)\n", r.FilePath, r.Duration, r.OperationsCompleted, r.Attempts)
			continue
		}
		state := "failed"
		if r.RolledBack {
			state = "rolled back"
		}
		printf(w, "%s\t%s: %s\n", r.FilePath, state, r.Error)
	}
	printf(w, "%d/%d invalidated\n", batch.Success, batch.Total)
}
