package commands

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
)

func (c *CLI) newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Drop cache state of files deleted from the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := c.app.Cleanup(cmd.Context(), c.project)
			out := struct {
				Removed int `json:"removed"`
			}{Removed: n}
			if rerr := c.render(cmd, out, func(w io.Writer) { printf(w, "removed %d deleted files\n", n) }); rerr != nil {
				return errors.Join(err, rerr)
			}
			return err
		},
	}
}
