package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/critq/internal/querysql"
)

// SQLResult is a compiled statement and its parameters.
type SQLResult struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// WriteText implements Texter.
func (r *SQLResult) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "%s;\n", r.SQL)
	for i, p := range r.Params {
		fmt.Fprintf(w, "-- $%d = %#v\n", i+1, p)
	}
	return nil
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql <filter.yaml>",
		Short: "Print the SQLite statement for a filter",
		Long: `Compile a filter document to a parameterized SQLite SELECT and print
the statement followed by its parameters.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSQL(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadFilter(opts.SchemaDir, path)
	if err != nil {
		return formatter.Fail(err)
	}

	query, params, err := querysql.NewSQLCompiler().Compile(loaded.Select)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, ErrCodeCompile, "compiling SQL", err))
	}
	if params == nil {
		params = []any{}
	}
	formatter.VerboseLog("Compiled %d parameter(s)", len(params))

	return formatter.Success(&SQLResult{SQL: query, Params: params})
}
