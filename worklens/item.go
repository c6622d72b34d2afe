package worklens

import (
	"time"

	"github.com/worklens/worklens/worklens/eval"
)

// Status enumerates the work-item lifecycle states, in lifecycle order.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusClosed     Status = "closed"
	StatusTombstone  Status = "tombstone"
	StatusHooked     Status = "hooked"
)

// Item is one work-item record. Optional attributes are pointers: nil
// means absent, and a present empty string is a value in its own right,
// so assignee:null never matches an item whose assignee is "". Required
// text attributes report absent when empty; timestamps report absent
// when zero.
type Item struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Status             Status     `json:"status"`
	Priority           *int64     `json:"priority,omitempty"`
	IssueType          string     `json:"issue_type,omitempty"`
	Assignee           *string    `json:"assignee,omitempty"`
	EstimatedMinutes   *int64     `json:"estimated_minutes,omitempty"`
	ExternalRef        *string    `json:"external_ref,omitempty"`
	SourceRepo         *string    `json:"source_repo,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	CreatedBy          string     `json:"created_by,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	ClosedAt           *time.Time `json:"closed_at,omitempty"`
	Design             string     `json:"design,omitempty"`
	AcceptanceCriteria string     `json:"acceptance_criteria,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	Labels             []string   `json:"labels,omitempty"`
}

// Field implements eval.Record over the canonical field names of the
// query schema.
func (it *Item) Field(name string) (eval.FieldValue, bool) {
	switch name {
	case "id":
		return stringField(it.ID)
	case "title":
		return stringField(it.Title)
	case "description":
		return stringField(it.Description)
	case "status":
		return stringField(string(it.Status))
	case "priority":
		return intPtrField(it.Priority)
	case "issue_type":
		return stringField(it.IssueType)
	case "assignee":
		return stringPtrField(it.Assignee)
	case "estimated_minutes":
		return intPtrField(it.EstimatedMinutes)
	case "external_ref":
		return stringPtrField(it.ExternalRef)
	case "source_repo":
		return stringPtrField(it.SourceRepo)
	case "created_at":
		return timeField(it.CreatedAt)
	case "created_by":
		return stringField(it.CreatedBy)
	case "updated_at":
		return timeField(it.UpdatedAt)
	case "due_date":
		return timePtrField(it.DueDate)
	case "closed_at":
		return timePtrField(it.ClosedAt)
	case "design":
		return stringField(it.Design)
	case "acceptance_criteria":
		return stringField(it.AcceptanceCriteria)
	case "notes":
		return stringField(it.Notes)
	case "labels":
		if len(it.Labels) == 0 {
			return eval.FieldValue{}, false
		}
		return eval.ListValue(it.Labels), true
	default:
		return eval.FieldValue{}, false
	}
}

func stringField(s string) (eval.FieldValue, bool) {
	if s == "" {
		return eval.FieldValue{}, false
	}
	return eval.StringValue(s), true
}

func stringPtrField(p *string) (eval.FieldValue, bool) {
	if p == nil {
		return eval.FieldValue{}, false
	}
	return eval.StringValue(*p), true
}

func intPtrField(p *int64) (eval.FieldValue, bool) {
	if p == nil {
		return eval.FieldValue{}, false
	}
	return eval.IntValue(*p), true
}

func timeField(t time.Time) (eval.FieldValue, bool) {
	if t.IsZero() {
		return eval.FieldValue{}, false
	}
	return eval.TimeValue(t), true
}

func timePtrField(p *time.Time) (eval.FieldValue, bool) {
	if p == nil || p.IsZero() {
		return eval.FieldValue{}, false
	}
	return eval.TimeValue(*p), true
}
