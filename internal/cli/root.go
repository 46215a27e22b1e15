package cli

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/critq/internal/config"
	"github.com/roach88/critq/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	LogLevel  string
	DBPath    string
	SchemaDir string // empty = permissive, no schema

	configErr error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the critq CLI.
// Flag defaults come from CRITQ_* environment variables.
func NewRootCommand() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	opts := &RootOptions{configErr: err}

	cmd := &cobra.Command{
		Use:   "critq",
		Short: "critq - criteria queries over SQLite",
		Long: `critq compiles declarative filter documents into queries.

A filter names an entity from a CUE schema and a tree of criteria over its
fields and relations. critq can explain the compiled predicate tree, print
the SQL it produces, run it against a SQLite database and seed that
database with rows, and run scenario files that pin those results down.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.configErr != nil {
				return WrapExitError(ExitCommandError, ErrCodeBadConfig, "invalid environment configuration", opts.configErr)
			}
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, err := logger.ParseLevel(opts.LogLevel); err != nil {
				return err
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (implies --log-level debug)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", cfg.LogLevel, "log level (debug|info|warn|error|disabled)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", cfg.DBPath, "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.SchemaDir, "schema", cfg.SchemaDir, `directory of CUE entity schemas ("" for none)`)

	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// formatter builds the output formatter for one command invocation.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// logger builds the diagnostic logger. It writes to stderr and follows the
// output format so JSON runs produce JSON logs.
func (o *RootOptions) logger(cmd *cobra.Command) (zerolog.Logger, error) {
	level := o.LogLevel
	if o.Verbose {
		level = "debug"
	}
	if o.Format == "json" {
		return logger.NewJSON(level, cmd.ErrOrStderr())
	}
	return logger.New(level, cmd.ErrOrStderr())
}
