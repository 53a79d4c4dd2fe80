package commands

import (
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/strata/internal/app"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <file>",
		Short: "Show where a file is cached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.app.Status(cmd.Context(), c.project, args[0])
			if err != nil {
				return err
			}
			return c.render(cmd, st, func(w io.Writer) { printStatus(w, st) })
		},
	}
}

func printStatus(w io.Writer, st app.FileStatus) {
	printf(w, "file:       %s\n", st.FilePath)
	printf(w, "fast tier:  %s\n", yesNo(st.InFastTier))
	printf(w, "index:      %s\n", yesNo(st.InIndex))
	if st.Entry == nil {
		return
	}
	printf(w, "version:    %d\n", st.Entry.Version)
	printf(w, "change:     %s\n", st.Entry.ChangeType)
	printf(w, "static:     %s\n", yesNo(st.Entry.StaticAnalyzed))
	printf(w, "llm:        %s\n", yesNo(st.Entry.LLMAnalyzed))
	if len(st.Entry.DependsOn) > 0 {
		printf(w, "depends on: %v\n", st.Entry.DependsOn)
	}
	if len(st.Entry.UsedBy) > 0 {
		printf(w, "used by:    %v\n", st.Entry.UsedBy)
	}
}
