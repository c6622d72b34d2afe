package eval

import (
	"testing"
	"time"

	"github.com/worklens/worklens/worklens/query"
)

func directives(t *testing.T, input string) []query.SortDirective {
	t.Helper()
	q, err := query.Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return q.Sort
}

func ids(recs []testRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		v, _ := r.Field("id")
		out[i] = v.Str
	}
	return out
}

func assertOrder(t *testing.T, recs []testRecord, want ...string) {
	t.Helper()
	got := ids(recs)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSortByIntAscending(t *testing.T) {
	recs := []testRecord{
		{"id": StringValue("a"), "priority": IntValue(2)},
		{"id": StringValue("b"), "priority": IntValue(0)},
		{"id": StringValue("c"), "priority": IntValue(1)},
	}
	Sort(recs, directives(t, "sort by: priority"))
	assertOrder(t, recs, "b", "c", "a")
}

func TestSortMissingValuesLastBothDirections(t *testing.T) {
	build := func() []testRecord {
		return []testRecord{
			{"id": StringValue("a")},
			{"id": StringValue("b"), "priority": IntValue(1)},
			{"id": StringValue("c"), "priority": IntValue(0)},
		}
	}

	recs := build()
	Sort(recs, directives(t, "sort by: priority asc"))
	assertOrder(t, recs, "c", "b", "a")

	recs = build()
	Sort(recs, directives(t, "sort by: priority desc"))
	assertOrder(t, recs, "b", "c", "a")
}

func TestSortMultiKey(t *testing.T) {
	day := func(d int) FieldValue {
		return TimeValue(time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC))
	}
	recs := []testRecord{
		{"id": StringValue("a"), "priority": IntValue(1), "updated_at": day(10)},
		{"id": StringValue("b"), "priority": IntValue(0), "updated_at": day(12)},
		{"id": StringValue("c"), "priority": IntValue(1), "updated_at": day(14)},
	}
	Sort(recs, directives(t, "sort by: priority asc, updated desc"))
	assertOrder(t, recs, "b", "c", "a")
}

func TestSortEnumOrdinal(t *testing.T) {
	recs := []testRecord{
		{"id": StringValue("a"), "status": StringValue("closed")},
		{"id": StringValue("b"), "status": StringValue("open")},
		{"id": StringValue("c"), "status": StringValue("blocked")},
		{"id": StringValue("d"), "status": StringValue("weird")},
	}
	Sort(recs, directives(t, "sort by: status"))
	// declared order open < blocked < closed; unknown values trail
	assertOrder(t, recs, "b", "c", "a", "d")
}

func TestSortOpenEnumLexicographic(t *testing.T) {
	recs := []testRecord{
		{"id": StringValue("a"), "issue_type": StringValue("Task")},
		{"id": StringValue("b"), "issue_type": StringValue("bug")},
		{"id": StringValue("c"), "issue_type": StringValue("epic")},
	}
	Sort(recs, directives(t, "sort by: issue_type"))
	assertOrder(t, recs, "b", "c", "a")
}

func TestSortListByCount(t *testing.T) {
	recs := []testRecord{
		{"id": StringValue("a"), "labels": ListValue([]string{"x", "y"})},
		{"id": StringValue("b"), "labels": ListValue(nil)},
		{"id": StringValue("c"), "labels": ListValue([]string{"x"})},
	}
	Sort(recs, directives(t, "sort by: labels desc"))
	assertOrder(t, recs, "a", "c", "b")
}

func TestSortStringFoldsCase(t *testing.T) {
	recs := []testRecord{
		{"id": StringValue("a"), "assignee": StringValue("Carol")},
		{"id": StringValue("b"), "assignee": StringValue("alice")},
		{"id": StringValue("c"), "assignee": StringValue("Bob")},
	}
	Sort(recs, directives(t, "sort by: assignee"))
	assertOrder(t, recs, "b", "c", "a")
}

func TestSortStableOnTies(t *testing.T) {
	recs := []testRecord{
		{"id": StringValue("a"), "priority": IntValue(1)},
		{"id": StringValue("b"), "priority": IntValue(1)},
		{"id": StringValue("c"), "priority": IntValue(1)},
	}
	Sort(recs, directives(t, "sort by: priority"))
	assertOrder(t, recs, "a", "b", "c")
}

func TestSortNoDirectivesPreservesOrder(t *testing.T) {
	recs := []testRecord{
		{"id": StringValue("b")},
		{"id": StringValue("a")},
	}
	Sort(recs, nil)
	assertOrder(t, recs, "b", "a")
}

func TestApplyFiltersAndSorts(t *testing.T) {
	q, err := query.Parse("status:open sort by: priority desc")
	if err != nil {
		t.Fatal(err)
	}
	recs := []testRecord{
		{"id": StringValue("a"), "status": StringValue("open"), "priority": IntValue(0)},
		{"id": StringValue("b"), "status": StringValue("closed"), "priority": IntValue(9)},
		{"id": StringValue("c"), "status": StringValue("open"), "priority": IntValue(2)},
	}
	got := Apply(q, recs, testNow)
	assertOrder(t, got, "c", "a")

	// input order must survive Apply
	assertOrder(t, recs, "a", "b", "c")
}

func TestApplyEmptyQueryReturnsAll(t *testing.T) {
	recs := []testRecord{
		{"id": StringValue("a")},
		{"id": StringValue("b")},
	}
	got := Apply(query.Query{}, recs, testNow)
	assertOrder(t, got, "a", "b")
}
