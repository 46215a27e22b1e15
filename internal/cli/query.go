package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/critq/internal/schema"
	"github.com/roach88/critq/internal/store"
)

// QueryResult holds the rows matched by a filter.
type QueryResult struct {
	Entity string      `json:"entity"`
	Count  int         `json:"count"`
	Rows   []store.Row `json:"rows"`
}

// WriteText implements Texter. Each row prints as sorted key=value pairs.
func (r *QueryResult) WriteText(w io.Writer) error {
	for _, row := range r.Rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%v", k, formatCell(row[k]))
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
	}
	_, err := fmt.Fprintf(w, "(%d %s row(s))\n", r.Count, r.Entity)
	return err
}

func formatCell(v any) any {
	if v == nil {
		return "NULL"
	}
	return v
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <filter.yaml>",
		Short: "Run a filter against the database",
		Long: `Compile a filter document and run it against the SQLite database,
printing the matching rows of the filter's entity ordered by primary key.

Example:
  critq query --db ./users.db --schema ./schema active-users.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runQuery(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadFilter(opts.SchemaDir, path)
	if err != nil {
		return formatter.Fail(err)
	}

	st, err := openStore(opts, cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	defer st.Close()

	var entity *schema.Entity
	if loaded.Schema != nil {
		entity, _ = loaded.Schema.Entity(loaded.Select.Entity)
	}
	rows, err := st.FindSelect(cmd.Context(), entity, loaded.Select)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, ErrCodeDatabase, "running query", err))
	}
	if rows == nil {
		rows = []store.Row{}
	}
	formatter.VerboseLog("Matched %d row(s) in %s", len(rows), opts.DBPath)

	return formatter.Success(&QueryResult{
		Entity: loaded.Select.Entity,
		Count:  len(rows),
		Rows:   rows,
	})
}

// openStore opens the database named by --db with the command's logger.
func openStore(opts *RootOptions, cmd *cobra.Command) (*store.Store, error) {
	log, err := opts.logger(cmd)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeGeneric, "configuring logger", err)
	}
	st, err := store.Open(opts.DBPath, store.WithLogger(log))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("opening database %s", opts.DBPath), err)
	}
	return st, nil
}
