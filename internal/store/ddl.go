package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/critq/internal/querysql"
	"github.com/roach88/critq/internal/schema"
)

// EnsureSchema creates a table for every entity of s that does not exist
// yet. Existing tables are left untouched.
func (s *Store) EnsureSchema(ctx context.Context, sc *schema.Schema) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	defer tx.Rollback()

	for _, name := range sc.Names() {
		e, _ := sc.Entity(name)
		ddl, err := CreateTableSQL(sc, e)
		if err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		s.log.Debug().Str("entity", name).Str("sql", ddl).Msg("create table")
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: create %s: %w", e.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// CreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for e.
//
// Columns follow e.FieldNames with the primary key first. Relations whose
// foreign key is the target's primary key become REFERENCES clauses.
func CreateTableSQL(sc *schema.Schema, e *schema.Entity) (string, error) {
	pk := e.Fields[e.PrimaryKey]
	for _, ident := range []string{e.Table, pk.Column} {
		if err := querysql.CheckIdentifier(ident); err != nil {
			return "", fmt.Errorf("entity %s: %w", e.Name, err)
		}
	}

	refs := make(map[string]string)
	for _, rel := range e.Relations {
		target, err := sc.Entity(rel.Target)
		if err != nil {
			return "", err
		}
		if rel.ForeignKey != target.PrimaryKey {
			continue
		}
		refs[rel.LocalKey] = fmt.Sprintf("%s(%s)", target.Table, target.Fields[target.PrimaryKey].Column)
	}

	cols := []string{pk.Column + " TEXT PRIMARY KEY"}
	for _, name := range e.FieldNames() {
		if name == e.PrimaryKey {
			continue
		}
		f := e.Fields[name]
		if err := querysql.CheckIdentifier(f.Column); err != nil {
			return "", fmt.Errorf("entity %s: %w", e.Name, err)
		}

		col := f.Column + " " + sqlType(f.Type)
		if !f.Nullable {
			col += " NOT NULL"
		}
		if ref, ok := refs[name]; ok {
			col += " REFERENCES " + ref
		}
		cols = append(cols, col)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", e.Table, strings.Join(cols, ", ")), nil
}

func sqlType(t schema.FieldType) string {
	switch t {
	case schema.TypeInt, schema.TypeBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}
