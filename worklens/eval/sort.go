package eval

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/worklens/worklens/worklens/query"
)

// Apply filters recs by the query's filter tree and stable-sorts the
// survivors by its directives. The input slice is left untouched.
func Apply[R Record](q query.Query, recs []R, now time.Time) []R {
	out := make([]R, 0, len(recs))
	for _, r := range recs {
		if q.Filter == nil || Matches(q.Filter, r, now) {
			out = append(out, r)
		}
	}
	Sort(out, q.Sort)
	return out
}

// Sort orders recs in place. Directives apply in listed order, later
// ones breaking ties from earlier ones; the underlying sort is stable so
// fully tied records keep their input order.
func Sort[R Record](recs []R, dirs []query.SortDirective) {
	if len(dirs) == 0 {
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		for _, d := range dirs {
			if c := compareByDirective(recs[i], recs[j], d); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func compareByDirective[R Record](a, b R, d query.SortDirective) int {
	av, aok := a.Field(d.Field.Name)
	bv, bok := b.Field(d.Field.Name)

	// missing values sort last, independent of direction
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}

	c := compareFieldValues(d.Field, av, bv)
	if d.Dir == query.Desc {
		c = -c
	}
	return c
}

// compareFieldValues orders two present values by the field's natural
// ordering: exact ints, instants, enum ordinals (falling back to
// lexicographic for open enums and unknown values), element count for
// lists, case-insensitive lexicographic for strings, and the string form
// as a last resort.
func compareFieldValues(f *query.Field, a, b FieldValue) int {
	switch f.Kind {
	case query.KindInt:
		if a.Kind == KindInt && b.Kind == KindInt {
			return cmpInt64(a.Int, b.Int)
		}
	case query.KindTime:
		if a.Kind == KindTime && b.Kind == KindTime {
			return a.Time.Compare(b.Time)
		}
	case query.KindEnum:
		if a.Kind == KindString && b.Kind == KindString {
			return compareEnum(f.Enum, a.Str, b.Str)
		}
	case query.KindList:
		if a.Kind == KindList && b.Kind == KindList {
			return cmpInt64(int64(len(a.List)), int64(len(b.List)))
		}
	case query.KindString:
		if a.Kind == KindString && b.Kind == KindString {
			return foldCompare(a.Str, b.Str)
		}
	}
	return strings.Compare(stringForm(a), stringForm(b))
}

func compareEnum(enum []string, a, b string) int {
	ao, aok := ordinal(enum, a)
	bo, bok := ordinal(enum, b)
	switch {
	case aok && bok:
		if ao != bo {
			return cmpInt64(int64(ao), int64(bo))
		}
		return 0
	case aok:
		return -1 // known values order before stragglers
	case bok:
		return 1
	default:
		return foldCompare(a, b)
	}
}

func ordinal(enum []string, v string) (int, bool) {
	for i, e := range enum {
		if strings.EqualFold(e, v) {
			return i, true
		}
	}
	return 0, false
}

func foldCompare(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func stringForm(fv FieldValue) string {
	switch fv.Kind {
	case KindString:
		return fv.Str
	case KindInt:
		return strconv.FormatInt(fv.Int, 10)
	case KindTime:
		return fv.Time.Format(time.RFC3339Nano)
	case KindList:
		return strings.Join(fv.List, ",")
	default:
		return ""
	}
}
