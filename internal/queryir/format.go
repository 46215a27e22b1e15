package queryir

import (
	"fmt"
	"strings"
)

// Format renders a predicate as a tagged tree, e.g.
//
//	AND(EQ(status,ACTIVE), IN(region,[EU,US]), NOT(ISNULL(ownerId)))
//
// Joined fields render as join.field. A reference to a whole source (type
// checks, or null checks on a join) renders as the join name, or "root".
// A nil predicate renders as "TRUE".
func Format(p Predicate) string {
	var sb strings.Builder
	writePredicate(&sb, p)
	return sb.String()
}

func writePredicate(sb *strings.Builder, p Predicate) {
	if p == nil {
		sb.WriteString("TRUE")
		return
	}

	switch v := Deref(p).(type) {
	case IsNull:
		fmt.Fprintf(sb, "ISNULL(%s)", refLabel(v.Ref))
	case IsNotNull:
		fmt.Fprintf(sb, "NOTNULL(%s)", refLabel(v.Ref))
	case Equals:
		fmt.Fprintf(sb, "EQ(%s,%s)", refLabel(v.Ref), valueLabel(v.Value))
	case NotEquals:
		fmt.Fprintf(sb, "NE(%s,%s)", refLabel(v.Ref), valueLabel(v.Value))
	case In:
		labels := make([]string, len(v.Values))
		for i, val := range v.Values {
			labels[i] = valueLabel(val)
		}
		fmt.Fprintf(sb, "IN(%s,[%s])", refLabel(v.Ref), strings.Join(labels, ","))
	case TypeEquals:
		fmt.Fprintf(sb, "TYPE(%s,%s)", sourceLabel(v.Ref), v.Type)
	case TypeNotEquals:
		fmt.Fprintf(sb, "NOTTYPE(%s,%s)", sourceLabel(v.Ref), v.Type)
	case And:
		writeGroup(sb, "AND", v.Predicates)
	case Or:
		writeGroup(sb, "OR", v.Predicates)
	case Not:
		sb.WriteString("NOT(")
		writePredicate(sb, v.Predicate)
		sb.WriteString(")")
	default:
		fmt.Fprintf(sb, "?%T", p)
	}
}

func writeGroup(sb *strings.Builder, tag string, preds []Predicate) {
	sb.WriteString(tag)
	sb.WriteString("(")
	for i, p := range preds {
		if i > 0 {
			sb.WriteString(", ")
		}
		writePredicate(sb, p)
	}
	sb.WriteString(")")
}

func refLabel(ref FieldRef) string {
	if ref.Field == "" {
		return sourceLabel(ref)
	}
	if ref.Join == "" {
		return ref.Field
	}
	return ref.Join + "." + ref.Field
}

func sourceLabel(ref FieldRef) string {
	if ref.Join == "" {
		return "root"
	}
	return ref.Join
}

func valueLabel(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprint(v)
}
