package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/critq/internal/filterdoc"
	"github.com/roach88/critq/internal/queryir"
	"github.com/roach88/critq/internal/schema"
)

// LoadResult is a filter document ready to run.
type LoadResult struct {
	Schema   *schema.Schema // nil when running without a schema
	Document *filterdoc.Document
	Select   *queryir.Select
}

// LoadSchema loads the CUE schemas in dir. An empty dir means no schema:
// entities and joins are then taken as table names.
func LoadSchema(dir string) (*schema.Schema, error) {
	if dir == "" {
		return nil, nil
	}
	if err := checkPath(dir, "schema directory"); err != nil {
		return nil, err
	}
	sc, err := schema.LoadDir(dir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeSchema, "loading schema", err)
	}
	return sc, nil
}

// LoadFilter reads a filter document and compiles it against the schema
// in schemaDir.
func LoadFilter(schemaDir, path string) (*LoadResult, error) {
	sc, err := LoadSchema(schemaDir)
	if err != nil {
		return nil, err
	}

	if err := checkPath(path, "filter file"); err != nil {
		return nil, err
	}
	doc, err := filterdoc.DecodeFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeFilter, "reading filter", err)
	}

	b, err := doc.Builder()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeFilter, "reading filter", err)
	}
	sel, err := queryir.Build(sc, doc.Entity, b)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeCompile, fmt.Sprintf("compiling filter for %s", doc.Entity), err)
	}

	return &LoadResult{Schema: sc, Document: doc, Select: sel}, nil
}

func checkPath(path, what string) error {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewExitError(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("%s not found: %s", what, path))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("accessing %s", what), err)
	}
	return nil
}
