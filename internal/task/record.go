package task

import (
	"fmt"
	"strings"
)

// Record is the persisted form of a task.
//
// Pointer fields distinguish a missing key from a zero value so that
// FromRecord can reject records without a description, completion flag, or
// priority. Field order matches the on-disk key order.
type Record struct {
	Description    *string `json:"description"`
	Completed      *bool   `json:"completed"`
	DueDate        *string `json:"due_date"`
	Priority       *int    `json:"priority"`
	AdditionalInfo *string `json:"additional_info"`
	CreatedDate    *string `json:"created_date"`
	Deleted        *bool   `json:"deleted,omitempty"`
}

// Record returns the persisted form of t. Absent dates and notes become null.
func (t *Task) Record() Record {
	desc := t.description
	completed := t.completed
	priority := int(t.priority)
	created := FormatDate(t.createdDate)
	deleted := t.deleted

	r := Record{
		Description: &desc,
		Completed:   &completed,
		Priority:    &priority,
		CreatedDate: &created,
		Deleted:     &deleted,
	}
	if t.hasDueDate {
		due := FormatDate(t.dueDate)
		r.DueDate = &due
	}
	if t.additionalInfo != "" {
		info := t.additionalInfo
		r.AdditionalInfo = &info
	}
	return r
}

// FromRecord rebuilds a task from its persisted form.
//
// description, completed, and priority are required. A missing deleted flag
// means false and a missing created date means today (per WithClock). Any
// failure is returned as a *FieldError.
func FromRecord(r Record, opts ...Option) (*Task, error) {
	if r.Description == nil {
		return nil, &FieldError{Field: "description", Err: ErrMissingField}
	}
	if r.Completed == nil {
		return nil, &FieldError{Field: "completed", Err: ErrMissingField}
	}
	if r.Priority == nil {
		return nil, &FieldError{Field: "priority", Err: ErrMissingField}
	}

	build := make([]Option, 0, len(opts)+5)
	build = append(build, opts...)
	build = append(build, WithPriority(Priority(*r.Priority)))

	if r.DueDate != nil && strings.TrimSpace(*r.DueDate) != "" {
		due, err := ParseDate(*r.DueDate)
		if err != nil {
			return nil, &FieldError{Field: "due_date", Err: err}
		}
		build = append(build, WithDueDate(due))
	}
	if r.CreatedDate != nil && strings.TrimSpace(*r.CreatedDate) != "" {
		created, err := ParseDate(*r.CreatedDate)
		if err != nil {
			return nil, &FieldError{Field: "created_date", Err: err}
		}
		build = append(build, WithCreatedDate(created))
	}
	if r.AdditionalInfo != nil {
		build = append(build, WithAdditionalInfo(*r.AdditionalInfo))
	}
	deleted := r.Deleted != nil && *r.Deleted
	build = append(build, withState(*r.Completed, deleted))

	t, err := New(*r.Description, build...)
	if err != nil {
		field := "description"
		if !Priority(*r.Priority).Valid() {
			field = "priority"
		}
		return nil, &FieldError{Field: field, Err: err}
	}
	return t, nil
}

// Render returns the fixed-width display line used by listings and exports:
//
//	description(30) | status(10) | due(10) | priority(10) | Created: DD/MM/YY
//
// Columns are padded by character count and never truncated.
func (t *Task) Render(names PriorityNames) string {
	status := "Incomplete"
	if t.completed {
		status = "Completed"
	}
	due := "No due date"
	if t.hasDueDate {
		due = FormatDate(t.dueDate)
	}
	return fmt.Sprintf("%s | %s | %s | %s | Created: %s",
		padRight(t.description, 30),
		padRight(status, 10),
		padRight(due, 10),
		padRight(names.Name(t.priority), 10),
		FormatDate(t.createdDate),
	)
}

// String renders t with the default priority names.
func (t *Task) String() string {
	return t.Render(nil)
}

func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
