package harness

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/roach88/critq/internal/queryir"
	"github.com/roach88/critq/internal/querysql"
	"github.com/roach88/critq/internal/schema"
	"github.com/roach88/critq/internal/store"
)

// Harness runs the cases of one scenario against a seeded store.
type Harness struct {
	store    *store.Store
	schema   *schema.Schema // nil without a schema
	compiler *querysql.SQLCompiler
	log      zerolog.Logger
}

// Option configures a Run.
type Option func(*runConfig)

type runConfig struct {
	log zerolog.Logger
}

// WithLogger sets the logger handed to the store and used for case progress.
func WithLogger(l zerolog.Logger) Option {
	return func(c *runConfig) {
		c.log = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the CUE schema (if any)
// 2. Create fresh in-memory database and seed it
// 3. Run every case and evaluate its expectations
//
// The returned error covers setup only. Case failures, including compile
// errors a case did not expect, are reported in the Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	var sc *schema.Schema
	if scenario.Schema != "" {
		var err error
		if sc, err = schema.LoadDir(scenario.Schema); err != nil {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}
	}

	st, err := store.Open(":memory:", store.WithLogger(cfg.log))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:    st,
		schema:   sc,
		compiler: querysql.NewSQLCompiler(),
		log:      cfg.log,
	}
	if err := h.seed(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to seed: %w", err)
	}

	result := NewResult(scenario.Name)
	for i := range scenario.Cases {
		c := &scenario.Cases[i]
		cr := h.runCase(ctx, c)
		cr.Failures = EvaluateExpect(&cr, c.Expect)
		cr.Pass = len(cr.Failures) == 0
		h.log.Debug().Str("scenario", scenario.Name).Str("case", c.Name).Bool("pass", cr.Pass).Msg("case")
		result.Add(cr)
	}
	return result, nil
}

func (h *Harness) seed(ctx context.Context, scenario *Scenario) error {
	var batches []store.Batch
	if scenario.Seed != "" {
		data, err := os.ReadFile(scenario.Seed)
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}
		if batches, err = store.DecodeBatches(data); err != nil {
			return fmt.Errorf("seed file %s: %w", scenario.Seed, err)
		}
	}
	batches = append(batches, scenario.Rows...)

	if h.schema == nil {
		return nil
	}
	_, err := h.store.Seed(ctx, h.schema, batches)
	return err
}

// runCase compiles and runs one case. Errors end up in CaseResult.Error.
func (h *Harness) runCase(ctx context.Context, c *Case) CaseResult {
	cr := CaseResult{Name: c.Name}

	doc, err := c.Document()
	if err != nil {
		cr.Error = err.Error()
		return cr
	}
	b, err := doc.Builder()
	if err != nil {
		cr.Error = err.Error()
		return cr
	}
	sel, err := queryir.Build(h.schema, doc.Entity, b)
	if err != nil {
		cr.Error = err.Error()
		return cr
	}

	cr.Tree = queryir.Format(sel.Filter)
	validation := queryir.Validate(sel)
	cr.Portable = validation.IsPortable
	cr.Warnings = validation.Warnings

	cr.SQL, cr.Params, err = h.compiler.Compile(sel)
	if err != nil {
		cr.Error = err.Error()
		return cr
	}

	// Without a schema there are no tables to query.
	if h.schema == nil {
		return cr
	}
	entity, err := h.schema.Entity(sel.Entity)
	if err != nil {
		cr.Error = err.Error()
		return cr
	}
	rows, err := h.store.FindSelect(ctx, entity, sel)
	if err != nil {
		cr.Error = err.Error()
		return cr
	}
	cr.IDs = make([]string, len(rows))
	for i, row := range rows {
		cr.IDs[i] = fmt.Sprint(row[entity.PrimaryKey])
	}
	return cr
}
