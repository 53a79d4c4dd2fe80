package commands

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/strata/internal/app"
)

func (c *CLI) newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register [files...]",
		Short: "Register files and report which analyses must run",
		Long:  "Register files with the cache. Without arguments every source file of the project is registered.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			regs, err := c.app.Register(cmd.Context(), c.project, args)
			if rerr := c.render(cmd, regs, func(w io.Writer) { printRegistrations(w, regs) }); rerr != nil {
				return errors.Join(err, rerr)
			}
			return err
		},
	}
}

func printRegistrations(w io.Writer, regs []app.FileRegistration) {
	for _, r := range regs {
		var needs []string
		if r.NeedsStatic {
			needs = append(needs, "static")
		}
		if r.NeedsLLM {
			needs = append(needs, "llm")
		}
		line := r.Path + "\t" + string(r.ChangeType)
		if len(needs) > 0 {
			line += "\tneeds " + strings.Join(needs, "+")
		}
		if len(r.Cascaded) > 0 {
			line += "\tstale dependents: " + strings.Join(r.Cascaded, ", ")
		}
		printf(w, "%s\n", line)
	}
}
