package querysql

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/critq/internal/filter"
	"github.com/roach88/critq/internal/queryir"
)

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// All values are parameterized, never interpolated. Every query ends with
// ORDER BY on the root key so results are deterministic.
//
// SQLCompiler is stateless and safe for concurrent use.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Compile converts a QueryIR query to parameterized SQL.
// Returns (sql, params, error) tuple.
//
//	SELECT t0.* FROM users AS t0
//	INNER JOIN accounts AS t1 ON t1.id = t0.owner_id
//	WHERE t0.status = ? AND t1.plan = ?
//	ORDER BY t0.id ASC COLLATE BINARY
//
// (emitted on one line).
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		if query == nil {
			return "", nil, fmt.Errorf("cannot compile nil query")
		}
		return c.compileSelect(*query)
	case nil:
		return "", nil, fmt.Errorf("cannot compile nil query")
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	if err := checkIdents(q.Table, q.Alias); err != nil {
		return "", nil, err
	}
	key := q.Key
	if key == "" {
		key = "id"
	}
	if err := checkIdents(key); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s.* FROM %s AS %s", q.Alias, q.Table, q.Alias)

	for _, j := range q.Joins {
		joinSQL, err := compileJoin(j)
		if err != nil {
			return "", nil, fmt.Errorf("compile join %s: %w", j.Relation, err)
		}
		sb.WriteString(" ")
		sb.WriteString(joinSQL)
	}

	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(filterSQL)
		params = filterParams
	}

	// COLLATE BINARY keeps text ordering identical across SQLite builds.
	fmt.Fprintf(&sb, " ORDER BY %s.%s ASC COLLATE BINARY", q.Alias, key)

	return sb.String(), params, nil
}

func compileJoin(j queryir.Join) (string, error) {
	if err := checkIdents(j.Table, j.Alias, j.Parent, j.LocalKey, j.ForeignKey); err != nil {
		return "", err
	}
	var kind string
	switch j.Kind {
	case "", filter.JoinInner:
		kind = "INNER JOIN"
	case filter.JoinLeft:
		kind = "LEFT JOIN"
	case filter.JoinRight:
		// Requires SQLite 3.39+.
		kind = "RIGHT JOIN"
	default:
		return "", fmt.Errorf("unsupported join kind %q", j.Kind)
	}
	return fmt.Sprintf("%s %s AS %s ON %s.%s = %s.%s",
		kind, j.Table, j.Alias, j.Alias, j.ForeignKey, j.Parent, j.LocalKey), nil
}

// compilePredicate compiles a predicate to a WHERE clause fragment.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := queryir.Deref(p).(type) {
	case queryir.IsNull:
		return c.compileNullCheck(pred.Ref, "IS NULL")
	case queryir.IsNotNull:
		return c.compileNullCheck(pred.Ref, "IS NOT NULL")
	case queryir.Equals:
		if pred.Value == nil {
			return c.compileNullCheck(pred.Ref, "IS NULL")
		}
		return c.compileComparison(pred.Ref, "=", pred.Value)
	case queryir.NotEquals:
		if pred.Value == nil {
			return c.compileNullCheck(pred.Ref, "IS NOT NULL")
		}
		return c.compileComparison(pred.Ref, "<>", pred.Value)
	case queryir.In:
		return c.compileIn(pred)
	case queryir.TypeEquals:
		return c.compileComparison(pred.Ref, "=", string(pred.Type))
	case queryir.TypeNotEquals:
		return c.compileComparison(pred.Ref, "<>", string(pred.Type))
	case queryir.And:
		// Vacuous truth.
		return c.compileGroup(pred.Predicates, " AND ", "1 = 1")
	case queryir.Or:
		return c.compileGroup(pred.Predicates, " OR ", "1 = 0")
	case queryir.Not:
		inner, params, err := c.compilePredicate(pred.Predicate)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + inner + ")", params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileNullCheck(ref queryir.FieldRef, check string) (string, []any, error) {
	col, err := column(ref)
	if err != nil {
		return "", nil, err
	}
	return col + " " + check, nil, nil
}

func (c *SQLCompiler) compileComparison(ref queryir.FieldRef, op string, value any) (string, []any, error) {
	col, err := column(ref)
	if err != nil {
		return "", nil, err
	}
	param, err := BindValue(value)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", col, err)
	}
	return fmt.Sprintf("%s %s ?", col, op), []any{param}, nil
}

func (c *SQLCompiler) compileIn(in queryir.In) (string, []any, error) {
	col, err := column(in.Ref)
	if err != nil {
		return "", nil, err
	}
	if len(in.Values) == 0 {
		return "1 = 0", nil, nil
	}

	params := make([]any, len(in.Values))
	for i, v := range in.Values {
		if params[i], err = BindValue(v); err != nil {
			return "", nil, fmt.Errorf("%s[%d]: %w", col, i, err)
		}
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")
	return fmt.Sprintf("%s IN (%s)", col, marks), params, nil
}

func (c *SQLCompiler) compileGroup(preds []queryir.Predicate, sep, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}

	parts := make([]string, 0, len(preds))
	var params []any
	for _, p := range preds {
		sql, ps, err := c.compilePredicate(p)
		if err != nil {
			return "", nil, err
		}
		if len(preds) > 1 && isCompound(p) {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	return strings.Join(parts, sep), params, nil
}

// isCompound reports whether p compiles to a multi-term AND/OR. A
// single-child group compiles to its child's SQL, so it is looked through.
func isCompound(p queryir.Predicate) bool {
	var children []queryir.Predicate
	switch v := queryir.Deref(p).(type) {
	case queryir.And:
		children = v.Predicates
	case queryir.Or:
		children = v.Predicates
	default:
		return false
	}
	if len(children) == 1 {
		return isCompound(children[0])
	}
	return len(children) > 1
}

func column(ref queryir.FieldRef) (string, error) {
	if err := checkIdents(ref.Source, ref.Column); err != nil {
		return "", err
	}
	return ref.Source + "." + ref.Column, nil
}

// CheckIdentifier reports an error unless name is a plain SQL identifier.
// Table and column names are spliced into statements, never bound.
func CheckIdentifier(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid SQL identifier %q", name)
	}
	return nil
}

func checkIdents(names ...string) error {
	for _, name := range names {
		if err := CheckIdentifier(name); err != nil {
			return err
		}
	}
	return nil
}

// BindValue converts a Go value to a go-sqlite3 parameter. Integers widen
// to int64 and floats to float64. String kinds are NFC-normalized so equal
// text compares equal byte-wise.
func BindValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return norm.NFC.String(val), nil
	case bool, int64, float64, []byte, time.Time:
		return val, nil
	case fmt.Stringer:
		return norm.NFC.String(val.String()), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return norm.NFC.String(rv.String()), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("value %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
