package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/critq/internal/schema"
)

// Batch is one entity's rows in a seed document.
//
//	- entity: Account
//	  rows:
//	    - {id: a1, plan: pro}
type Batch struct {
	Entity string `yaml:"entity"`
	Rows   []Row  `yaml:"rows"`
}

// DecodeBatches parses a YAML list of batches. Unknown keys are rejected.
func DecodeBatches(data []byte) ([]Batch, error) {
	var batches []Batch
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&batches); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(batches) == 0 {
		return nil, errors.New("seed file has no batches")
	}
	for i, b := range batches {
		if b.Entity == "" {
			return nil, fmt.Errorf("batch %d: entity is required", i+1)
		}
	}
	return batches, nil
}

// Seed creates missing tables and inserts each batch in its own
// transaction, in order. It returns the inserted ids per batch. A failing
// batch stops the run; earlier batches stay committed.
func (s *Store) Seed(ctx context.Context, sc *schema.Schema, batches []Batch) ([][]string, error) {
	if err := s.EnsureSchema(ctx, sc); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	out := make([][]string, 0, len(batches))
	for i, b := range batches {
		ids, err := s.InsertAll(ctx, sc, b.Entity, b.Rows)
		if err != nil {
			return nil, fmt.Errorf("batch %d (%s): %w", i+1, b.Entity, err)
		}
		s.log.Debug().Str("entity", b.Entity).Int("rows", len(ids)).Msg("seed")
		out = append(out, ids)
	}
	return out, nil
}
