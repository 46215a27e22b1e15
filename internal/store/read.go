package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/critq/internal/filter"
	"github.com/roach88/critq/internal/queryir"
	"github.com/roach88/critq/internal/schema"
)

// Find returns the rows of entity matching b, ordered by primary key. A
// nil sc compiles permissively (see queryir).
//
// Rows are keyed by field name. Text comes back as string, integers as
// int64 and bool fields as bool. Columns the schema does not know keep
// their column name.
func (s *Store) Find(ctx context.Context, sc *schema.Schema, entity string, b *filter.Builder) ([]Row, error) {
	sel, err := queryir.Build(sc, entity, b)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", entity, err)
	}
	var e *schema.Entity
	if sc != nil {
		e, _ = sc.Entity(sel.Entity)
	}
	return s.FindSelect(ctx, e, sel)
}

// FindSelect runs an already built Select. e maps columns back to field
// names; with a nil e rows stay keyed by column.
func (s *Store) FindSelect(ctx context.Context, e *schema.Entity, sel *queryir.Select) ([]Row, error) {
	query, params, err := s.compiler.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", sel.Entity, err)
	}

	rows, err := s.Query(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", sel.Entity, err)
	}
	defer rows.Close()

	out, err := scanRows(rows, e)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", sel.Entity, err)
	}
	s.log.Debug().Str("entity", sel.Entity).Int("rows", len(out)).Msg("find")
	return out, nil
}

func scanRows(rows *sql.Rows, e *schema.Entity) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fields := make([]schema.Field, len(cols))
	for i, col := range cols {
		fields[i] = schema.Field{Name: col, Column: col}
		if e == nil {
			continue
		}
		for _, f := range e.Fields {
			if f.Column == col {
				fields[i] = f
				break
			}
		}
	}

	out := []Row{}
	for rows.Next() {
		raw := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, f := range fields {
			row[f.Name] = fromColumn(f, raw[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func fromColumn(f schema.Field, v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case int64:
		if f.Type == schema.TypeBool {
			return val != 0
		}
	}
	return v
}
