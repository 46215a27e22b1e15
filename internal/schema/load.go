package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// CompileError reports an invalid schema definition.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadDir loads every CUE file in dir as one instance and compiles the
// "entity" struct it defines.
func LoadDir(dir string) (*Schema, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("schema directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, fmt.Errorf("scan schema directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	if err := instances[0].Err; err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", err)
	}

	value := ctx.BuildInstance(instances[0])
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(value)
}

// CompileString compiles a schema from CUE source.
func CompileString(src string) (*Schema, error) {
	v := cuecontext.New().CompileString(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(v)
}

// Compile converts a CUE value holding an "entity" struct into a Schema.
func Compile(v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	entitiesVal := v.LookupPath(cue.ParsePath("entity"))
	if !entitiesVal.Exists() {
		return nil, &CompileError{Field: "entity", Message: "at least one entity is required", Pos: v.Pos()}
	}

	iter, err := entitiesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	s := &Schema{Entities: make(map[string]*Entity)}
	for iter.Next() {
		e, err := compileEntity(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		s.Entities[e.Name] = e
	}
	if len(s.Entities) == 0 {
		return nil, &CompileError{Field: "entity", Message: "at least one entity is required", Pos: entitiesVal.Pos()}
	}

	if err := resolveRelations(s); err != nil {
		return nil, err
	}
	return s, nil
}

func compileEntity(name string, v cue.Value) (*Entity, error) {
	e := &Entity{
		Name:      name,
		Fields:    make(map[string]Field),
		Relations: make(map[string]Relation),
	}

	var err error
	if e.Table, err = optString(v, "table", name); err != nil {
		return nil, err
	}
	if e.PrimaryKey, err = optString(v, "primary_key", "id"); err != nil {
		return nil, err
	}
	if e.Discriminator, err = optString(v, "discriminator", ""); err != nil {
		return nil, err
	}

	if fieldsVal := v.LookupPath(cue.ParsePath("field")); fieldsVal.Exists() {
		iter, err := fieldsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			f, err := compileField(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			e.Fields[f.Name] = f
		}
	}

	// The primary key and discriminator are always queryable.
	for _, implicit := range []string{e.PrimaryKey, e.Discriminator} {
		if _, ok := e.Fields[implicit]; implicit != "" && !ok {
			e.Fields[implicit] = Field{Name: implicit, Column: implicit, Type: TypeString}
		}
	}

	if relsVal := v.LookupPath(cue.ParsePath("relation")); relsVal.Exists() {
		iter, err := relsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			r, err := compileRelation(e, iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			e.Relations[r.Name] = r
		}
	}

	return e, nil
}

func compileField(name string, v cue.Value) (Field, error) {
	f := Field{Name: name}

	var err error
	if f.Column, err = optString(v, "column", name); err != nil {
		return f, err
	}
	typ, err := optString(v, "type", string(TypeString))
	if err != nil {
		return f, err
	}
	switch FieldType(typ) {
	case TypeString, TypeInt, TypeBool:
		f.Type = FieldType(typ)
	default:
		return f, &CompileError{
			Field:   "field." + name + ".type",
			Message: fmt.Sprintf("unsupported type %q (want string, int or bool)", typ),
			Pos:     v.Pos(),
		}
	}

	if nv := v.LookupPath(cue.ParsePath("nullable")); nv.Exists() {
		if f.Nullable, err = nv.Bool(); err != nil {
			return f, formatCUEError(err)
		}
	}
	return f, nil
}

func compileRelation(e *Entity, name string, v cue.Value) (Relation, error) {
	r := Relation{Name: name}

	targetVal := v.LookupPath(cue.ParsePath("target"))
	if !targetVal.Exists() {
		return r, &CompileError{Field: "relation." + name, Message: "target is required", Pos: v.Pos()}
	}
	target, err := targetVal.String()
	if err != nil {
		return r, formatCUEError(err)
	}
	r.Target = target

	if r.LocalKey, err = optString(v, "local_key", name+"_id"); err != nil {
		return r, err
	}
	if r.ForeignKey, err = optString(v, "foreign_key", ""); err != nil {
		return r, err
	}
	if _, ok := e.Fields[r.LocalKey]; !ok {
		return r, &CompileError{
			Field:   "relation." + name + ".local_key",
			Message: fmt.Sprintf("field %q is not defined on %s", r.LocalKey, e.Name),
			Pos:     v.Pos(),
		}
	}
	return r, nil
}

// resolveRelations checks relation targets and defaults foreign keys to
// the target's primary key.
func resolveRelations(s *Schema) error {
	for _, name := range s.Names() {
		e := s.Entities[name]
		for relName, r := range e.Relations {
			target, ok := s.Entities[r.Target]
			if !ok {
				return &CompileError{
					Field:   "entity." + name + ".relation." + relName,
					Message: fmt.Sprintf("unknown target entity %q", r.Target),
				}
			}
			if r.ForeignKey == "" {
				r.ForeignKey = target.PrimaryKey
			}
			if _, ok := target.Fields[r.ForeignKey]; !ok {
				return &CompileError{
					Field:   "entity." + name + ".relation." + relName + ".foreign_key",
					Message: fmt.Sprintf("field %q is not defined on %s", r.ForeignKey, target.Name),
				}
			}
			e.Relations[relName] = r
		}
	}
	return nil
}

// optString reads a string field, returning def when it is absent.
func optString(v cue.Value, key, def string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(key))
	if !fv.Exists() {
		return def, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
