package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/critq/internal/filterdoc"
	"github.com/roach88/critq/internal/store"
)

// Scenario is a set of filter cases over one seeded database.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Schema is the CUE schema directory. Empty runs without a schema, with
	// entities and joins taken as table names.
	Schema string `yaml:"schema,omitempty"`

	// Seed is a seed file loaded before Rows.
	Seed string `yaml:"seed,omitempty"`

	// Rows are inline batches inserted after Seed.
	Rows []store.Batch `yaml:"rows,omitempty"`

	// Cases run in order against the seeded database.
	Cases []Case `yaml:"cases"`
}

// Case is one filter and the outcome it must produce.
type Case struct {
	Name string `yaml:"name"`

	// File is a filter document path. Exactly one of File and Query is set.
	File string `yaml:"file,omitempty"`

	// Query is an inline filter document.
	Query yaml.Node `yaml:"query,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect lists the checks of a case. Unset fields are not checked.
type Expect struct {
	// IDs are the matched primary keys in key order. "ids: []" expects no
	// rows; leaving ids out skips the check.
	IDs []string `yaml:"ids,omitempty"`

	// Tree is the echo tree of the compiled filter.
	Tree string `yaml:"tree,omitempty"`

	// SQL is the compiled statement text.
	SQL string `yaml:"sql,omitempty"`

	// Portable is the expected portability verdict.
	Portable *bool `yaml:"portable,omitempty"`

	// Warnings are substrings; each must appear in some warning.
	Warnings []string `yaml:"warnings,omitempty"`

	// Error is a substring of the expected compile error. A case that
	// expects an error checks nothing else.
	Error string `yaml:"error,omitempty"`
}

func (e Expect) empty() bool {
	return e.IDs == nil && e.Tree == "" && e.SQL == "" && e.Portable == nil &&
		len(e.Warnings) == 0 && e.Error == ""
}

// Document returns the case's filter document.
func (c *Case) Document() (*filterdoc.Document, error) {
	if c.File != "" {
		return filterdoc.DecodeFile(c.File)
	}
	data, err := yaml.Marshal(&c.Query)
	if err != nil {
		return nil, fmt.Errorf("encode inline query: %w", err)
	}
	return filterdoc.DecodeBytes(data)
}

// LoadScenario reads and parses a scenario YAML file.
// Relative schema, seed and case file paths are resolved against the
// scenario's directory. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict fields catch typos like "case:" vs "cases:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	scenario.Schema = resolve(base, scenario.Schema)
	scenario.Seed = resolve(base, scenario.Seed)
	for i := range scenario.Cases {
		scenario.Cases[i].File = resolve(base, scenario.Cases[i].File)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	if s.Schema == "" && (s.Seed != "" || len(s.Rows) > 0) {
		return fmt.Errorf("seed and rows need a schema")
	}
	if s.Schema != "" {
		if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
			return fmt.Errorf("schema directory not found: %s", s.Schema)
		}
	}
	if s.Seed != "" {
		if _, err := os.Stat(s.Seed); os.IsNotExist(err) {
			return fmt.Errorf("seed file not found: %s", s.Seed)
		}
	}
	for i, b := range s.Rows {
		if b.Entity == "" {
			return fmt.Errorf("rows[%d]: entity is required", i)
		}
	}

	names := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if err := validateCase(i, &c); err != nil {
			return err
		}
		if s.Schema == "" && c.Expect.IDs != nil {
			return fmt.Errorf("cases[%d]: ids need a schema", i)
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		names[c.Name] = true
	}
	return nil
}

func validateCase(index int, c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("cases[%d]: name is required", index)
	}
	hasQuery := c.Query.Kind != 0
	if (c.File == "") == !hasQuery {
		return fmt.Errorf("cases[%d]: exactly one of file and query is required", index)
	}
	if c.File != "" {
		if _, err := os.Stat(c.File); os.IsNotExist(err) {
			return fmt.Errorf("cases[%d]: filter file not found: %s", index, c.File)
		}
	}
	if c.Expect.empty() {
		return fmt.Errorf("cases[%d]: expect has no checks", index)
	}
	if c.Expect.Error != "" {
		e := c.Expect
		e.Error = ""
		if !e.empty() {
			return fmt.Errorf("cases[%d]: expect.error cannot be combined with other checks", index)
		}
	}
	return nil
}
