package query

import (
	"sort"
	"strings"
)

// FieldKind specifies the declared value kind of a field
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindTime
	KindEnum
	KindList
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindTime:
		return "timestamp"
	case KindEnum:
		return "enum"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Field describes one queryable work-item attribute. FreeText marks the
// field as part of the default free-text search set. Enum, when present,
// fixes the ordinal order used for sorting; an enum field without one
// sorts lexicographically.
type Field struct {
	Name     string
	Aliases  []string
	Kind     FieldKind
	FreeText bool
	Enum     []string
}

var fields = []*Field{
	{Name: "id", Kind: KindString},
	{Name: "title", Kind: KindString, FreeText: true},
	{Name: "description", Kind: KindString, FreeText: true},
	{Name: "status", Kind: KindEnum, Enum: []string{"open", "in_progress", "blocked", "closed", "tombstone", "hooked"}},
	{Name: "priority", Aliases: []string{"pri"}, Kind: KindInt},
	{Name: "issue_type", Aliases: []string{"type"}, Kind: KindEnum},
	{Name: "assignee", Kind: KindString},
	{Name: "estimated_minutes", Kind: KindInt},
	{Name: "external_ref", Kind: KindString},
	{Name: "source_repo", Kind: KindString},
	{Name: "created_at", Aliases: []string{"created"}, Kind: KindTime},
	{Name: "created_by", Kind: KindString},
	{Name: "updated_at", Aliases: []string{"updated"}, Kind: KindTime},
	{Name: "due_date", Aliases: []string{"due"}, Kind: KindTime},
	{Name: "closed_at", Aliases: []string{"closed"}, Kind: KindTime},
	{Name: "labels", Aliases: []string{"label"}, Kind: KindList},
	{Name: "design", Kind: KindString, FreeText: true},
	{Name: "acceptance_criteria", Kind: KindString, FreeText: true},
	{Name: "notes", Kind: KindString, FreeText: true},
}

var fieldIndex = buildFieldIndex()

func buildFieldIndex() map[string]*Field {
	m := make(map[string]*Field, len(fields)*2)
	for _, f := range fields {
		m[f.Name] = f
		for _, a := range f.Aliases {
			m[strings.ToLower(a)] = f
		}
	}
	return m
}

// LookupField resolves a field by canonical name or alias,
// case-insensitively.
func LookupField(name string) (*Field, bool) {
	f, ok := fieldIndex[strings.ToLower(name)]
	return f, ok
}

// Fields returns the schema in declaration order.
func Fields() []*Field {
	out := make([]*Field, len(fields))
	copy(out, fields)
	return out
}

// FreeTextFields returns the fields included in default free-text search.
func FreeTextFields() []*Field {
	var out []*Field
	for _, f := range fields {
		if f.FreeText {
			out = append(out, f)
		}
	}
	return out
}

// SuggestFields returns up to limit canonical field names judged closest
// to name: ranked by Levenshtein distance over lowercased names, with a
// longer shared prefix breaking ties, then declaration-independent
// alphabetical order.
func SuggestFields(name string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	needle := strings.ToLower(name)

	type scored struct {
		name   string
		dist   int
		prefix int
	}
	ranked := make([]scored, 0, len(fields))
	for _, f := range fields {
		d := levenshtein(needle, f.Name)
		for _, a := range f.Aliases {
			if ad := levenshtein(needle, strings.ToLower(a)); ad < d {
				d = ad
			}
		}
		ranked = append(ranked, scored{name: f.Name, dist: d, prefix: commonPrefixLen(needle, f.Name)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].dist != ranked[j].dist {
			return ranked[i].dist < ranked[j].dist
		}
		if ranked[i].prefix != ranked[j].prefix {
			return ranked[i].prefix > ranked[j].prefix
		}
		return ranked[i].name < ranked[j].name
	})

	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]string, 0, limit)
	for _, s := range ranked[:limit] {
		out = append(out, s.name)
	}
	return out
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// levenshtein computes the edit distance between two strings using two
// rolling rows.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
