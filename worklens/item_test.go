package worklens

import (
	"testing"
	"time"

	"github.com/worklens/worklens/worklens/eval"
)

func TestItemFieldRequiredStrings(t *testing.T) {
	it := &Item{ID: "wl-1", Title: "Fix login", Status: StatusOpen}

	v, ok := it.Field("title")
	if !ok || v.Str != "Fix login" {
		t.Errorf("title: got %+v, %v", v, ok)
	}
	if _, ok := it.Field("description"); ok {
		t.Error("empty description should report absent")
	}
	v, ok = it.Field("status")
	if !ok || v.Str != "open" {
		t.Errorf("status: got %+v, %v", v, ok)
	}
}

func TestItemFieldPointerNullability(t *testing.T) {
	it := &Item{ID: "wl-1"}
	if _, ok := it.Field("assignee"); ok {
		t.Error("nil assignee should report absent")
	}

	empty := ""
	it.Assignee = &empty
	v, ok := it.Field("assignee")
	if !ok {
		t.Fatal("a present empty assignee is a value, not null")
	}
	if v.Str != "" {
		t.Errorf("got %q", v.Str)
	}

	if _, ok := it.Field("priority"); ok {
		t.Error("nil priority should report absent")
	}
	p := int64(0)
	it.Priority = &p
	v, ok = it.Field("priority")
	if !ok || v.Int != 0 {
		t.Errorf("priority 0 should be present: got %+v, %v", v, ok)
	}
}

func TestItemFieldTimestamps(t *testing.T) {
	it := &Item{ID: "wl-1"}
	if _, ok := it.Field("created_at"); ok {
		t.Error("zero created_at should report absent")
	}

	stamp := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
	it.CreatedAt = stamp
	v, ok := it.Field("created_at")
	if !ok || !v.Time.Equal(stamp) {
		t.Errorf("created_at: got %+v, %v", v, ok)
	}

	if _, ok := it.Field("due_date"); ok {
		t.Error("nil due_date should report absent")
	}
	it.DueDate = &stamp
	if v, ok := it.Field("due_date"); !ok || !v.Time.Equal(stamp) {
		t.Errorf("due_date: got %+v, %v", v, ok)
	}
	zero := time.Time{}
	it.ClosedAt = &zero
	if _, ok := it.Field("closed_at"); ok {
		t.Error("a zero closed_at should report absent even when set")
	}
}

func TestItemFieldLabels(t *testing.T) {
	it := &Item{ID: "wl-1"}
	if _, ok := it.Field("labels"); ok {
		t.Error("no labels should report absent")
	}
	it.Labels = []string{"bug", "frontend"}
	v, ok := it.Field("labels")
	if !ok || v.Kind != eval.KindList || len(v.List) != 2 {
		t.Errorf("labels: got %+v, %v", v, ok)
	}
}

func TestItemFieldUnknownName(t *testing.T) {
	it := &Item{ID: "wl-1"}
	if _, ok := it.Field("velocity"); ok {
		t.Error("unknown field name should report absent")
	}
}
