package query

import (
	"strconv"
	"strings"
)

// Node is a filter tree node. The implementations below form a closed
// set; the evaluator dispatches over them with a type switch. Trees are
// built strictly bottom-up by the parser and never mutated.
type Node interface {
	isNode()
}

// And is a boolean conjunction of two nodes
type And struct {
	Left  Node
	Right Node
}

func (And) isNode() {}

// Or is a boolean disjunction of two nodes
type Or struct {
	Left  Node
	Right Node
}

func (Or) isNode() {}

// Not negates a node
type Not struct {
	Inner Node
}

func (Not) isNode() {}

// Equals compares a field against a single value. A null value tests for
// an absent field rather than comparing anything.
type Equals struct {
	Field *Field
	Value Value
}

func (Equals) isNode() {}

// In matches when any of the listed values equality-matches the field.
// Values is non-empty and ordered as written.
type In struct {
	Field  *Field
	Values []Value
}

func (In) isNode() {}

// Range matches a field value within [Min, Max], both ends inclusive.
type Range struct {
	Field *Field
	Min   Value
	Max   Value
}

func (Range) isNode() {}

// Contains is a substring match. A nil Field means every field flagged
// as free-text searchable.
type Contains struct {
	Field         *Field
	Text          string
	CaseSensitive bool
}

func (Contains) isNode() {}

// Has is the membership predicate for list-valued fields; on a scalar
// field it falls back to the Equals rule.
type Has struct {
	Field *Field
	Value Value
}

func (Has) isNode() {}

// Direction is a sort direction
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// SortDirective orders results by one field
type SortDirective struct {
	Field *Field
	Dir   Direction
}

// Query is a parsed query: an optional filter tree plus ordered sort
// directives. The zero value matches everything and applies no ordering;
// it is what a blank input parses to.
type Query struct {
	Filter Node
	Sort   []SortDirective
}

// IsEmpty reports whether the query has neither a filter nor sort
// directives.
func (q Query) IsEmpty() bool {
	return q.Filter == nil && len(q.Sort) == 0
}

// String renders a canonical spelling of the query. It is diagnostic
// output, not guaranteed to re-lex to the same token stream.
func (q Query) String() string {
	var parts []string
	if q.Filter != nil {
		parts = append(parts, formatNode(q.Filter))
	}
	if len(q.Sort) > 0 {
		ds := make([]string, len(q.Sort))
		for i, d := range q.Sort {
			ds[i] = d.Field.Name + " " + d.Dir.String()
		}
		parts = append(parts, "sort by: "+strings.Join(ds, ", "))
	}
	return strings.Join(parts, " ")
}

func formatNode(n Node) string {
	switch n := n.(type) {
	case And:
		return "(" + formatNode(n.Left) + " AND " + formatNode(n.Right) + ")"
	case Or:
		return "(" + formatNode(n.Left) + " OR " + formatNode(n.Right) + ")"
	case Not:
		return "NOT " + formatNode(n.Inner)
	case Equals:
		return n.Field.Name + ":" + formatValue(n.Value)
	case In:
		vs := make([]string, len(n.Values))
		for i, v := range n.Values {
			vs[i] = formatValue(v)
		}
		return n.Field.Name + ":" + strings.Join(vs, ",")
	case Range:
		return n.Field.Name + ":" + formatValue(n.Min) + ".." + formatValue(n.Max)
	case Contains:
		if n.Field == nil {
			return strconv.Quote(n.Text)
		}
		return n.Field.Name + ":" + strconv.Quote(n.Text)
	case Has:
		return n.Field.Name + ":" + formatValue(n.Value)
	default:
		return "?"
	}
}

func formatValue(v Value) string {
	switch v.Kind {
	case ValueNull:
		return "null"
	case ValueInt:
		return strconv.FormatInt(v.Num, 10)
	case ValueTime, ValueRel, ValueString:
		if strings.ContainsAny(v.Str, " \t(),:") || v.Str == "" {
			return strconv.Quote(v.Str)
		}
		return v.Str
	default:
		return "?"
	}
}
