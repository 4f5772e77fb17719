// Package cli implements the regexgen CLI commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/regexgen/internal/config"
	"github.com/rcliao/regexgen/internal/logging"
	"github.com/rcliao/regexgen/internal/patterns"
	"github.com/rcliao/regexgen/internal/store"
)

// app carries the persistent flags and the state built from them.
type app struct {
	configPath   string
	dbPath       string
	patternsFile string
	verbose      bool
	silent       bool

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd builds the command tree. The root command itself generates samples.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "regexgen",
		Short: "Generate sample strings from named regular expressions",
		Long: `Generate synthetic sample strings from a set of named regular expressions
and write them as JSON, XML, YAML or plain text files.

Patterns come from --patterns (YAML, JSON or TOML mapping of name to regex)
or the built-in set; list them with "regexgen patterns".`,
		Example: `  regexgen --selector digit --count 5 --format plain
  regexgen --index 2 --format JSON,XML --outputDir out
  regexgen --separateFiles --format yaml
  regexgen --selector email --oneSamplePerFile --count 3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.dbPath != "" {
				cfg.DBPath = a.dbPath
			}
			if a.patternsFile != "" {
				cfg.PatternsFile = a.patternsFile
			}
			a.cfg = cfg

			a.logger, err = logging.New(logging.Options{Verbose: a.verbose, Silent: a.silent})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (YAML)")
	root.PersistentFlags().StringVarP(&a.dbPath, "db", "d", "", "History database path (default: $REGEXGEN_DB or ~/.regexgen/history.db)")
	root.PersistentFlags().StringVarP(&a.patternsFile, "patterns", "p", "", "Pattern file: .yaml, .json or .toml (default: built-in set)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&a.silent, "silent", false, "Silence console output")

	addGenerateFlags(root, a)
	root.AddCommand(newPatternsCmd(a), newHistoryCmd(a), newStatsCmd(a), newConfigCmd(a))
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stdout, os.Stderr)
}

func run(cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		var rep *reportedError
		if !errors.As(err, &rep) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

// reportedError marks an error whose diagnostics were already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func cmdErr(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

func (a *app) loadPatterns() (*patterns.Set, error) {
	if a.cfg.PatternsFile == "" {
		return patterns.Default()
	}
	return patterns.Load(a.cfg.PatternsFile)
}

func (a *app) openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(a.cfg.DBPath)
}
