package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/critq/internal/queryir"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Strict bool // fail when the query leaves the portable fragment
}

// ExplainResult describes a compiled filter.
type ExplainResult struct {
	Entity   string     `json:"entity"`
	Filter   string     `json:"filter"`
	Joins    []JoinInfo `json:"joins,omitempty"`
	Portable bool       `json:"portable"`
	Warnings []string   `json:"warnings,omitempty"`
}

// JoinInfo describes one join of a compiled filter.
type JoinInfo struct {
	Relation string `json:"relation"`
	Kind     string `json:"kind"`
	Entity   string `json:"entity"`
	Alias    string `json:"alias"`
}

// WriteText implements Texter.
func (r *ExplainResult) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Entity: %s\n", r.Entity)
	fmt.Fprintf(w, "Filter: %s\n", r.Filter)
	if len(r.Joins) > 0 {
		fmt.Fprintln(w, "Joins:")
		for _, j := range r.Joins {
			fmt.Fprintf(w, "  %s %s -> %s (%s)\n", j.Kind, j.Relation, j.Entity, j.Alias)
		}
	}
	if r.Portable {
		_, err := fmt.Fprintln(w, "✓ Portable")
		return err
	}
	fmt.Fprintf(w, "⚠ Not portable (%d warning(s)):\n", len(r.Warnings))
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  - %s\n", warning)
	}
	return nil
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <filter.yaml>",
		Short: "Show the compiled predicate tree of a filter",
		Long: `Compile a filter document and print its predicate tree, the joins it
uses and any features outside the portable fragment.

Example:
  critq explain --schema ./schema active-users.yaml
  critq explain --strict --format json active-users.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit with failure when the query is not portable")

	return cmd
}

func runExplain(opts *ExplainOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadFilter(opts.SchemaDir, path)
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("Compiled %s with %d join(s)", loaded.Select.Entity, len(loaded.Select.Joins))

	result := explain(loaded.Select)
	if err := formatter.Success(result); err != nil {
		return err
	}
	if opts.Strict && !result.Portable {
		return NewExitError(ExitFailure, ErrCodePortable, fmt.Sprintf("%d non-portable feature(s)", len(result.Warnings)))
	}
	return nil
}

func explain(sel *queryir.Select) *ExplainResult {
	validation := queryir.Validate(sel)
	result := &ExplainResult{
		Entity:   sel.Entity,
		Filter:   queryir.Format(sel.Filter),
		Portable: validation.IsPortable,
		Warnings: validation.Warnings,
	}
	for _, j := range sel.Joins {
		result.Joins = append(result.Joins, JoinInfo{
			Relation: j.Relation,
			Kind:     string(j.Kind),
			Entity:   j.Entity,
			Alias:    j.Alias,
		})
	}
	return result
}
