package query

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func mustParse(t *testing.T, input string) Query {
	t.Helper()
	q, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return q
}

func TestParseEmpty(t *testing.T) {
	q := mustParse(t, "")
	if !q.IsEmpty() {
		t.Fatalf("expected empty query, got %+v", q)
	}

	q = mustParse(t, "   ")
	if !q.IsEmpty() {
		t.Fatalf("expected empty query for blank input, got %+v", q)
	}
}

func TestParseSimpleEquals(t *testing.T) {
	q := mustParse(t, "status:open")
	eq, ok := q.Filter.(Equals)
	if !ok {
		t.Fatalf("expected Equals, got %T", q.Filter)
	}
	if eq.Field.Name != "status" || eq.Value.Str != "open" {
		t.Errorf("unexpected node: %+v", eq)
	}
}

func TestParseImplicitAnd(t *testing.T) {
	implicit := mustParse(t, "status:open priority:0")
	explicit := mustParse(t, "status:open AND priority:0")
	if !reflect.DeepEqual(implicit, explicit) {
		t.Fatalf("implicit and explicit AND differ:\n%+v\n%+v", implicit, explicit)
	}
	if _, ok := implicit.Filter.(And); !ok {
		t.Fatalf("expected And, got %T", implicit.Filter)
	}
}

func TestParseNotBindsTighterThanAnd(t *testing.T) {
	q := mustParse(t, "NOT status:closed AND priority:0")
	and, ok := q.Filter.(And)
	if !ok {
		t.Fatalf("expected And at the root, got %T", q.Filter)
	}
	not, ok := and.Left.(Not)
	if !ok {
		t.Fatalf("expected Not on the left, got %T", and.Left)
	}
	if _, ok := not.Inner.(Equals); !ok {
		t.Fatalf("expected Equals under Not, got %T", not.Inner)
	}
	if _, ok := and.Right.(Equals); !ok {
		t.Fatalf("expected Equals on the right, got %T", and.Right)
	}
}

func TestParseAndBindsTighterThanOr(t *testing.T) {
	q := mustParse(t, "priority:0 OR priority:1 AND priority:2")
	or, ok := q.Filter.(Or)
	if !ok {
		t.Fatalf("expected Or at the root, got %T", q.Filter)
	}
	if _, ok := or.Left.(Equals); !ok {
		t.Errorf("expected Equals on the left, got %T", or.Left)
	}
	if _, ok := or.Right.(And); !ok {
		t.Errorf("expected And on the right, got %T", or.Right)
	}
}

func TestParseGrouping(t *testing.T) {
	q := mustParse(t, "(priority:0 OR priority:1) AND status:open")
	and, ok := q.Filter.(And)
	if !ok {
		t.Fatalf("expected And at the root, got %T", q.Filter)
	}
	if _, ok := and.Left.(Or); !ok {
		t.Errorf("expected Or inside the group, got %T", and.Left)
	}
}

func TestParseDoubleNot(t *testing.T) {
	q := mustParse(t, "not not status:open")
	outer, ok := q.Filter.(Not)
	if !ok {
		t.Fatalf("expected Not, got %T", q.Filter)
	}
	if _, ok := outer.Inner.(Not); !ok {
		t.Fatalf("expected nested Not, got %T", outer.Inner)
	}
}

func TestParseRange(t *testing.T) {
	q := mustParse(t, "priority:0..2")
	r, ok := q.Filter.(Range)
	if !ok {
		t.Fatalf("expected Range, got %T", q.Filter)
	}
	if r.Min.Kind != ValueInt || r.Min.Num != 0 || r.Max.Num != 2 {
		t.Errorf("unexpected bounds: %+v", r)
	}
}

func TestParseIn(t *testing.T) {
	q := mustParse(t, "priority:0,1,2")
	in, ok := q.Filter.(In)
	if !ok {
		t.Fatalf("expected In, got %T", q.Filter)
	}
	if len(in.Values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(in.Values))
	}
	for i, want := range []int64{0, 1, 2} {
		if in.Values[i].Num != want {
			t.Errorf("value %d: expected %d, got %d", i, want, in.Values[i].Num)
		}
	}
}

func TestParseListFieldSingleValueIsHas(t *testing.T) {
	q := mustParse(t, "label:frontend")
	has, ok := q.Filter.(Has)
	if !ok {
		t.Fatalf("expected Has for list-valued field, got %T", q.Filter)
	}
	if has.Field.Name != "labels" || has.Value.Str != "frontend" {
		t.Errorf("unexpected node: %+v", has)
	}
}

func TestParseBareTermIsFreeText(t *testing.T) {
	q := mustParse(t, "darkmode")
	c, ok := q.Filter.(Contains)
	if !ok {
		t.Fatalf("expected Contains, got %T", q.Filter)
	}
	if c.Field != nil || c.Text != "darkmode" || c.CaseSensitive {
		t.Errorf("unexpected node: %+v", c)
	}
}

func TestParseQuotedFreeText(t *testing.T) {
	q := mustParse(t, `"dark mode"`)
	c, ok := q.Filter.(Contains)
	if !ok {
		t.Fatalf("expected Contains, got %T", q.Filter)
	}
	if c.Text != "dark mode" {
		t.Errorf("expected interior text, got %q", c.Text)
	}
}

func TestParseQuotedFieldName(t *testing.T) {
	q := mustParse(t, `"status":open`)
	eq, ok := q.Filter.(Equals)
	if !ok {
		t.Fatalf("expected Equals, got %T", q.Filter)
	}
	if eq.Field.Name != "status" {
		t.Errorf("expected status field, got %q", eq.Field.Name)
	}
}

func TestParseNullSentinels(t *testing.T) {
	for _, word := range []string{"null", "unassigned", "NONE"} {
		q := mustParse(t, "assignee:"+word)
		eq, ok := q.Filter.(Equals)
		if !ok {
			t.Fatalf("%s: expected Equals, got %T", word, q.Filter)
		}
		if eq.Value.Kind != ValueNull {
			t.Errorf("%s: expected null value, got %v", word, eq.Value.Kind)
		}
	}
}

func TestParseNullSentinelOnStringFieldStaysNull(t *testing.T) {
	// null sentinels survive coercion against any field kind
	q := mustParse(t, "priority:none")
	eq := q.Filter.(Equals)
	if eq.Value.Kind != ValueNull {
		t.Fatalf("expected null value, got %v", eq.Value.Kind)
	}
}

func TestParseRelativeDateKeyword(t *testing.T) {
	q := mustParse(t, "due:today")
	eq, ok := q.Filter.(Equals)
	if !ok {
		t.Fatalf("expected Equals, got %T", q.Filter)
	}
	if eq.Field.Name != "due_date" {
		t.Errorf("expected due_date via alias, got %q", eq.Field.Name)
	}
	if eq.Value.Kind != ValueRel || eq.Value.Rel != RelToday {
		t.Errorf("expected relative-date value, got %+v", eq.Value)
	}
}

func TestParseRelativeDateRange(t *testing.T) {
	q := mustParse(t, "updated:last-week..today")
	r, ok := q.Filter.(Range)
	if !ok {
		t.Fatalf("expected Range, got %T", q.Filter)
	}
	if r.Min.Rel != RelLastWeek || r.Max.Rel != RelToday {
		t.Errorf("unexpected bounds: %+v", r)
	}
}

func TestParseAbsoluteDate(t *testing.T) {
	q := mustParse(t, `due:"2025-06-01"`)
	eq := q.Filter.(Equals)
	if eq.Value.Kind != ValueTime {
		t.Fatalf("expected timestamp value, got %v", eq.Value.Kind)
	}
	want := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.Local)
	if !eq.Value.Time.Equal(want) {
		t.Errorf("expected %v, got %v", want, eq.Value.Time)
	}
}

func TestParseRelDateKeywordOnStringFieldIsPlainString(t *testing.T) {
	q := mustParse(t, "title:today")
	eq := q.Filter.(Equals)
	if eq.Value.Kind != ValueString || eq.Value.Str != "today" {
		t.Fatalf("expected plain string, got %+v", eq.Value)
	}
}

func TestParseIntLiteralOnStringField(t *testing.T) {
	q := mustParse(t, "title:42")
	eq := q.Filter.(Equals)
	if eq.Value.Kind != ValueString || eq.Value.Str != "42" {
		t.Fatalf("expected string \"42\", got %+v", eq.Value)
	}
}

func TestParseUnknownField(t *testing.T) {
	_, err := Parse("foo:bar")
	if !IsKind(err, ErrUnknownField) {
		t.Fatalf("expected unknown_field, got %v", err)
	}
	var qerr *Error
	if !asError(err, &qerr) {
		t.Fatalf("expected *query.Error, got %T", err)
	}
	if !strings.Contains(qerr.Message, "foo") {
		t.Errorf("message should mention the field name: %q", qerr.Message)
	}
	if len(qerr.Suggestions) == 0 || len(qerr.Suggestions) > 3 {
		t.Errorf("expected 1..3 suggestions, got %v", qerr.Suggestions)
	}
}

func TestParseTypeMismatch(t *testing.T) {
	_, err := Parse("priority:high")
	if !IsKind(err, ErrTypeMismatch) {
		t.Fatalf("expected type_mismatch, got %v", err)
	}
	var qerr *Error
	if !asError(err, &qerr) {
		t.Fatalf("expected *query.Error, got %T", err)
	}
	if qerr.Field != "priority" {
		t.Errorf("expected field priority, got %q", qerr.Field)
	}
	if !strings.Contains(qerr.Message, "high") {
		t.Errorf("message should name the literal: %q", qerr.Message)
	}
}

func TestParseExpectedValue(t *testing.T) {
	_, err := Parse("status:")
	if !IsKind(err, ErrExpectedValue) {
		t.Fatalf("expected expected_value, got %v", err)
	}
}

func TestParseMissingCloseParen(t *testing.T) {
	_, err := Parse("(status:open")
	if !IsKind(err, ErrExpectedToken) {
		t.Fatalf("expected expected_token, got %v", err)
	}
}

func TestParseTrailingToken(t *testing.T) {
	_, err := Parse("status:open )")
	if !IsKind(err, ErrUnexpectedToken) {
		t.Fatalf("expected unexpected_token, got %v", err)
	}
}

func TestParseBareNumberRejected(t *testing.T) {
	// a number can continue an implicit AND run but cannot start a term
	_, err := Parse("status:open 5")
	if !IsKind(err, ErrUnexpectedToken) {
		t.Fatalf("expected unexpected_token, got %v", err)
	}
}

func TestParseSortClause(t *testing.T) {
	q := mustParse(t, "status:open sort by: priority asc, updated desc")
	if q.Filter == nil {
		t.Fatal("expected a filter")
	}
	if len(q.Sort) != 2 {
		t.Fatalf("expected 2 sort directives, got %d", len(q.Sort))
	}
	if q.Sort[0].Field.Name != "priority" || q.Sort[0].Dir != Asc {
		t.Errorf("unexpected first directive: %+v", q.Sort[0])
	}
	if q.Sort[1].Field.Name != "updated_at" || q.Sort[1].Dir != Desc {
		t.Errorf("unexpected second directive: %+v", q.Sort[1])
	}
}

func TestParseSortOnly(t *testing.T) {
	q := mustParse(t, "sort by: due_date")
	if q.Filter != nil {
		t.Fatalf("expected no filter, got %T", q.Filter)
	}
	if len(q.Sort) != 1 || q.Sort[0].Dir != Asc {
		t.Fatalf("expected one ascending directive, got %+v", q.Sort)
	}
}

func TestParseSortMissingColon(t *testing.T) {
	_, err := Parse("sort by priority")
	if !IsKind(err, ErrExpectedToken) {
		t.Fatalf("expected expected_token, got %v", err)
	}
}

func TestParseSortUnknownField(t *testing.T) {
	_, err := Parse("sort by: velocity")
	if !IsKind(err, ErrUnknownField) {
		t.Fatalf("expected unknown_field, got %v", err)
	}
}

func TestParseIdempotent(t *testing.T) {
	const input = "status:open,in_progress priority:0..2 NOT label:wontfix sort by: priority asc, updated desc"
	a := mustParse(t, input)
	b := mustParse(t, input)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("re-parsing the same input differs:\n%+v\n%+v", a, b)
	}
}

func TestParseLexErrorPropagates(t *testing.T) {
	_, err := Parse(`status:"open`)
	if !IsKind(err, ErrUnterminatedString) {
		t.Fatalf("expected unterminated_string, got %v", err)
	}
}

func TestQueryString(t *testing.T) {
	q := mustParse(t, "status:open priority:0..2 sort by: priority desc")
	s := q.String()
	for _, want := range []string{"status:open", "priority:0..2", "sort by: priority desc"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
