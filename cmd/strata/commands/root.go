// Package commands implements the CLI commands for strata.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/strata/internal/app"
	"go.trai.ch/strata/internal/build"
	"go.trai.ch/strata/internal/engine/invalidation"
	"go.trai.ch/strata/internal/engine/manager"
)

// CLI represents the command line interface for strata.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	project string
	json    bool
}

// Application represents the application logic interface.
type Application interface {
	Register(ctx context.Context, project string, files []string) ([]app.FileRegistration, error)
	Invalidate(ctx context.Context, project string, files []string, retries int) (invalidation.BatchResult, error)
	Status(ctx context.Context, project, file string) (app.FileStatus, error)
	Stats(ctx context.Context, project string) (manager.Summary, error)
	Cleanup(ctx context.Context, project string) (int, error)
	Watch(ctx context.Context, project string) error
	Clean(ctx context.Context, project string) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "strata",
		Short:         "Incremental analysis cache with atomic invalidation",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentFlags().StringVarP(&c.project, "project", "C", "", "Run as if strata was started in this directory")
	rootCmd.PersistentFlags().BoolVar(&c.json, "json", false, "Print results as JSON")

	rootCmd.AddCommand(c.newRegisterCmd())
	rootCmd.AddCommand(c.newInvalidateCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newStatsCmd())
	rootCmd.AddCommand(c.newCleanupCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
