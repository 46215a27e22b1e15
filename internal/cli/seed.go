package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/critq/internal/store"
)

// SeedResult reports the rows inserted per batch.
type SeedResult struct {
	Inserted []SeedCount `json:"inserted"`
}

// SeedCount is the number of rows inserted for one entity.
type SeedCount struct {
	Entity string   `json:"entity"`
	IDs    []string `json:"ids"`
}

// WriteText implements Texter.
func (r *SeedResult) WriteText(w io.Writer) error {
	for _, c := range r.Inserted {
		fmt.Fprintf(w, "✓ %s: %d row(s)\n", c.Entity, len(c.IDs))
	}
	return nil
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <rows.yaml>",
		Short: "Create tables and insert rows",
		Long: `Create a table for every schema entity that does not have one yet, then
insert the rows of a seed file. A seed file is a YAML list of batches:

  - entity: Account
    rows:
      - {id: a1, email: a1@example.com, plan: pro, verified: true}
  - entity: User
    rows:
      - {status: ACTIVE, region: EU, age: 31, active: true, ownerId: a1}

Rows without an id get a generated UUIDv7. Batches run in file order, each
in its own transaction.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSeed(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.SchemaDir == "" {
		return formatter.Fail(NewExitError(ExitCommandError, ErrCodeSchema, "seed needs a schema directory (--schema)"))
	}
	sc, err := LoadSchema(opts.SchemaDir)
	if err != nil {
		return formatter.Fail(err)
	}

	batches, err := readSeedFile(path)
	if err != nil {
		return formatter.Fail(err)
	}

	st, err := openStore(opts, cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	defer st.Close()

	ids, err := st.Seed(cmd.Context(), sc, batches)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, ErrCodeRows, "seeding database", err))
	}

	result := &SeedResult{Inserted: make([]SeedCount, len(batches))}
	for i, batch := range batches {
		formatter.VerboseLog("Inserted %d %s row(s)", len(ids[i]), batch.Entity)
		result.Inserted[i] = SeedCount{Entity: batch.Entity, IDs: ids[i]}
	}

	return formatter.Success(result)
}

func readSeedFile(path string) ([]store.Batch, error) {
	if err := checkPath(path, "seed file"); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeRows, "reading seed file", err)
	}
	batches, err := store.DecodeBatches(data)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeRows, "reading seed file", err)
	}
	return batches, nil
}
