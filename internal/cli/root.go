package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linepart/pkg/buildinfo"
	"github.com/matzehuels/linepart/pkg/observability"
)

// SetVersion overrides the build information shown by --version and the
// version command. Empty values keep the ldflags defaults.
func SetVersion(v, c, d string) {
	if v != "" {
		buildinfo.Version = v
	}
	if c != "" {
		buildinfo.Commit = c
	}
	if d != "" {
		buildinfo.Date = d
	}
}

// Execute runs the linepart CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// Logging goes to stderr at info level. --verbose (-v) selects debug and
// --quiet (-q) selects warn; when both are given, verbose wins.
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	root, _ := newRoot()
	return root.ExecuteContext(ctx)
}

// newRoot builds the root command with the level flags wired to the logger.
func newRoot() (*cobra.Command, *CLI) {
	var verbose, quiet bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	preRun := root.PersistentPreRun
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		c.SetLogLevel(logLevel(verbose, quiet))
		if verbose {
			observability.NewLogHooks(c.Logger).Register()
		}
		if preRun != nil {
			preRun(cmd, args)
		}
	}
	return root, c
}
