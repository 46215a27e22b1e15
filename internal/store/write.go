package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/critq/internal/querysql"
	"github.com/roach88/critq/internal/schema"
)

// Row is one entity row keyed by field name.
type Row map[string]any

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Insert writes row into the table of entity and returns its id.
//
// A missing or empty primary key gets a generated id. A missing
// discriminator defaults to the entity name. Unknown fields are rejected
// with a *schema.LookupError. The caller's row is not modified.
func (s *Store) Insert(ctx context.Context, sc *schema.Schema, entity string, row Row) (string, error) {
	e, err := sc.Entity(entity)
	if err != nil {
		return "", fmt.Errorf("insert: %w", err)
	}
	id, err := s.insert(ctx, s.db, e, row)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", entity, err)
	}
	return id, nil
}

// InsertAll writes rows in one transaction. Either every row is written
// or none is.
func (s *Store) InsertAll(ctx context.Context, sc *schema.Schema, entity string, rows []Row) ([]string, error) {
	e, err := sc.Entity(entity)
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", entity, err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(rows))
	for i, row := range rows {
		id, err := s.insert(ctx, tx, e, row)
		if err != nil {
			return nil, fmt.Errorf("insert %s row %d: %w", entity, i, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert %s: %w", entity, err)
	}
	return ids, nil
}

func (s *Store) insert(ctx context.Context, db execer, e *schema.Entity, row Row) (string, error) {
	values := make(Row, len(row)+2)
	for name, v := range row {
		if _, err := e.Field(name); err != nil {
			return "", err
		}
		values[name] = v
	}

	if v, ok := values[e.PrimaryKey]; !ok || v == nil || v == "" {
		values[e.PrimaryKey] = s.ids.Generate()
	}
	if e.Discriminator != "" {
		if _, ok := values[e.Discriminator]; !ok {
			values[e.Discriminator] = e.Name
		}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		cols[i] = e.Fields[name].Column
		if err := querysql.CheckIdentifier(cols[i]); err != nil {
			return "", err
		}
		arg, err := querysql.BindValue(values[name])
		if err != nil {
			return "", fmt.Errorf("field %s: %w", name, err)
		}
		args[i] = arg
	}
	if err := querysql.CheckIdentifier(e.Table); err != nil {
		return "", err
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		e.Table,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	s.log.Debug().Str("sql", query).Interface("params", args).Msg("insert")
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return "", err
	}
	return fmt.Sprint(values[e.PrimaryKey]), nil
}
