// Command stardiff compares two ephemerides of the same body and reports
// their state-vector differences.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/star/stardiff/internal/config"
	"github.com/star/stardiff/internal/logging"
)

// app carries what every subcommand needs once the root pre-run has loaded
// the configuration.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	logCloser  io.Closer
}

func main() {
	if err := execute(newRootCmd()); err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree and releases the log file whether or not
// the command succeeded.
func execute(root *cobra.Command, a *app) error {
	defer a.close()
	return root.Execute()
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:          "stardiff",
		Short:        "Compare ephemerides state by state",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./stardiff.yaml if present)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "json", "log format: json or text")

	root.AddCommand(newCompareCmd(a), newServeCmd(a))
	return root, a
}

func (a *app) close() {
	if a.logCloser == nil {
		return
	}
	if err := a.logCloser.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "closing log: %v\n", err)
	}
	a.logCloser = nil
}

// load reads the configuration with the command's flags bound over it and
// builds the logger.
func (a *app) load(cmd *cobra.Command, bindings config.Bindings) error {
	if bindings == nil {
		bindings = config.Bindings{}
	}
	bindings["log.level"] = cmd.Flags().Lookup("log-level")
	bindings["log.format"] = cmd.Flags().Lookup("log-format")

	cfg, err := config.Load(a.configPath, bindings)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	a.cfg, a.logger, a.logCloser = cfg, logger, closer
	return nil
}
