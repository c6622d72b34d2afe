// Package eval tests work-item records against a parsed filter tree and
// orders record collections by sort directives. Evaluation is pure: it
// performs no I/O, never mutates records, and is safe to call
// concurrently. Relative dates resolve against the caller-supplied
// "now", so results are deterministic for a fixed clock.
package eval

import (
	"strconv"
	"strings"
	"time"

	"github.com/worklens/worklens/worklens/query"
)

// Kind is the runtime type of a record attribute value
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindTime
	KindList
)

// FieldValue is a typed attribute value supplied by a record. Enum-like
// attributes report as strings.
type FieldValue struct {
	Kind Kind
	Str  string
	Int  int64
	Time time.Time
	List []string
}

func StringValue(s string) FieldValue  { return FieldValue{Kind: KindString, Str: s} }
func IntValue(n int64) FieldValue      { return FieldValue{Kind: KindInt, Int: n} }
func TimeValue(t time.Time) FieldValue { return FieldValue{Kind: KindTime, Time: t} }
func ListValue(xs []string) FieldValue { return FieldValue{Kind: KindList, List: xs} }

// Record supplies typed attribute values by canonical field name.
// Returning ok=false reports the attribute absent. Implementations must
// be read-only from the evaluator's point of view.
type Record interface {
	Field(name string) (FieldValue, bool)
}

// Matches reports whether rec satisfies the filter node. A stored value
// that cannot satisfy a comparison (type drift) evaluates to no-match
// rather than failing, keeping filtering total over heterogeneous data.
func Matches(node query.Node, rec Record, now time.Time) bool {
	switch n := node.(type) {
	case query.And:
		return Matches(n.Left, rec, now) && Matches(n.Right, rec, now)
	case query.Or:
		return Matches(n.Left, rec, now) || Matches(n.Right, rec, now)
	case query.Not:
		return !Matches(n.Inner, rec, now)
	case query.Equals:
		return matchEquals(n.Field, n.Value, rec, now)
	case query.In:
		for _, v := range n.Values {
			if matchEquals(n.Field, v, rec, now) {
				return true
			}
		}
		return false
	case query.Range:
		return matchRange(n, rec, now)
	case query.Contains:
		return matchContains(n, rec)
	case query.Has:
		return matchEquals(n.Field, n.Value, rec, now)
	default:
		return false
	}
}

// matchEquals applies the per-value matching rule shared by Equals, In,
// and Has: null tests absence, a list-valued field tests membership of
// the value, and scalars compare under the per-kind equality rules. In
// on a list field is therefore the union of memberships, so
// "label:a,b" matches any record carrying either label.
func matchEquals(f *query.Field, v query.Value, rec Record, now time.Time) bool {
	fv, ok := rec.Field(f.Name)
	if v.Kind == query.ValueNull {
		// null tests absence, whatever the field would have held
		return !ok
	}
	if !ok {
		return false
	}
	if fv.Kind == KindList {
		for _, el := range fv.List {
			if strings.EqualFold(el, v.Str) {
				return true
			}
		}
		return false
	}
	return valueEquals(fv, v, now)
}

func matchRange(n query.Range, rec Record, now time.Time) bool {
	fv, ok := rec.Field(n.Field.Name)
	if !ok {
		return false
	}
	lo, ok := compareValue(fv, n.Min, now)
	if !ok || lo < 0 {
		return false
	}
	hi, ok := compareValue(fv, n.Max, now)
	return ok && hi <= 0
}

func matchContains(n query.Contains, rec Record) bool {
	if n.Field != nil {
		fv, ok := rec.Field(n.Field.Name)
		return ok && containsText(fv, n.Text, n.CaseSensitive)
	}
	for _, f := range query.FreeTextFields() {
		if fv, ok := rec.Field(f.Name); ok && containsText(fv, n.Text, n.CaseSensitive) {
			return true
		}
	}
	return false
}

// valueEquals compares a present field value against a non-null query
// value under the per-kind equality rules.
func valueEquals(fv FieldValue, v query.Value, now time.Time) bool {
	switch v.Kind {
	case query.ValueString:
		return fv.Kind == KindString && strings.EqualFold(fv.Str, v.Str)
	case query.ValueInt:
		switch fv.Kind {
		case KindInt:
			return fv.Int == v.Num
		case KindString:
			n, err := strconv.ParseInt(strings.TrimSpace(fv.Str), 10, 64)
			return err == nil && n == v.Num
		}
		return false
	case query.ValueTime:
		return fv.Kind == KindTime && fv.Time.Equal(v.Time)
	case query.ValueRel:
		// relative-date equality means same calendar day in now's location
		if fv.Kind != KindTime {
			return false
		}
		return sameDay(fv.Time.In(now.Location()), v.Rel.Resolve(now))
	default:
		return false
	}
}

// compareValue orders a present field value against a query value,
// returning ok=false when the pair has no ordering (strings are
// equality-only, mismatched kinds cannot compare).
func compareValue(fv FieldValue, v query.Value, now time.Time) (int, bool) {
	switch v.Kind {
	case query.ValueInt:
		switch fv.Kind {
		case KindInt:
			return cmpInt64(fv.Int, v.Num), true
		case KindString:
			n, err := strconv.ParseInt(strings.TrimSpace(fv.Str), 10, 64)
			if err != nil {
				return 0, false
			}
			return cmpInt64(n, v.Num), true
		}
	case query.ValueTime:
		if fv.Kind == KindTime {
			return fv.Time.Compare(v.Time), true
		}
	case query.ValueRel:
		// bounds compare raw instants against the resolved start of day
		if fv.Kind == KindTime {
			return fv.Time.Compare(v.Rel.Resolve(now)), true
		}
	}
	return 0, false
}

func containsText(fv FieldValue, text string, caseSensitive bool) bool {
	// only string values can satisfy a substring predicate
	if fv.Kind != KindString {
		return false
	}
	if caseSensitive {
		return strings.Contains(fv.Str, text)
	}
	return strings.Contains(strings.ToLower(fv.Str), strings.ToLower(text))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
