package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors returned by task mutations.
var (
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrInvalidDate      = errors.New("invalid date format, use DD/MM/YY")
	ErrInvalidPriority  = errors.New("invalid priority level, choose 1 (Low), 2 (Normal), or 3 (High)")
	ErrAlreadyCompleted = errors.New("task is already completed")
	ErrNotCompleted     = errors.New("task is not completed")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidRecord    = errors.New("invalid task record")
)

// FieldError reports a problem with one field of a persisted record.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Task is a single to-do item.
//
// Fields are unexported so that every change goes through a validating
// method. The zero value is not usable; build tasks with New or FromRecord.
type Task struct {
	description    string
	completed      bool
	dueDate        time.Time
	hasDueDate     bool
	priority       Priority
	additionalInfo string
	createdDate    time.Time
	deleted        bool
}

// Option configures a task at construction.
type Option func(*options)

type options struct {
	dueDate     *time.Time
	priority    Priority
	info        string
	createdDate *time.Time
	completed   bool
	deleted     bool
	now         func() time.Time
}

// WithDueDate sets the due date.
func WithDueDate(d time.Time) Option {
	return func(o *options) {
		o.dueDate = &d
	}
}

// WithPriority sets the priority.
func WithPriority(p Priority) Option {
	return func(o *options) {
		o.priority = p
	}
}

// WithAdditionalInfo sets the free-text note. Blank text means no note.
func WithAdditionalInfo(info string) Option {
	return func(o *options) {
		o.info = info
	}
}

// WithCreatedDate overrides the creation date, e.g. when rebuilding from storage.
func WithCreatedDate(d time.Time) Option {
	return func(o *options) {
		o.createdDate = &d
	}
}

// WithClock sets the clock used to stamp the creation date.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func withState(completed, deleted bool) Option {
	return func(o *options) {
		o.completed = completed
		o.deleted = deleted
	}
}

// New creates a task. The description must not be blank and the priority,
// if given, must be 1-3. The description is kept verbatim, surrounding
// whitespace included.
func New(description string, opts ...Option) (*Task, error) {
	o := options{
		priority: DefaultPriority,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}
	if !o.priority.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPriority, o.priority)
	}

	t := &Task{
		description:    description,
		completed:      o.completed,
		priority:       o.priority,
		additionalInfo: normalizeInfo(o.info),
		deleted:        o.deleted,
	}
	if o.dueDate != nil {
		t.dueDate = DateOf(*o.dueDate)
		t.hasDueDate = true
	}
	if o.createdDate != nil {
		t.createdDate = DateOf(*o.createdDate)
	} else {
		t.createdDate = DateOf(o.now())
	}
	return t, nil
}

// Description returns the task description.
func (t *Task) Description() string { return t.description }

// Completed reports whether the task is done.
func (t *Task) Completed() bool { return t.completed }

// DueDate returns the due date and whether one is set.
func (t *Task) DueDate() (time.Time, bool) { return t.dueDate, t.hasDueDate }

// Priority returns the priority level.
func (t *Task) Priority() Priority { return t.priority }

// AdditionalInfo returns the note, or "" when there is none.
func (t *Task) AdditionalInfo() string { return t.additionalInfo }

// CreatedDate returns the creation date.
func (t *Task) CreatedDate() time.Time { return t.createdDate }

// Deleted reports whether the task is soft-deleted.
func (t *Task) Deleted() bool { return t.deleted }

// MarkCompleted marks the task done. A task that is already done is left
// alone and ErrAlreadyCompleted is returned.
func (t *Task) MarkCompleted() error {
	if t.completed {
		return ErrAlreadyCompleted
	}
	t.completed = true
	return nil
}

// Reopen marks a completed task as ongoing again.
func (t *Task) Reopen() error {
	if !t.completed {
		return ErrNotCompleted
	}
	t.completed = false
	return nil
}

// Reschedule parses text as DD/MM/YY and replaces the due date. On a parse
// failure the due date is unchanged.
func (t *Task) Reschedule(text string) error {
	d, err := ParseDate(text)
	if err != nil {
		return err
	}
	t.dueDate = d
	t.hasDueDate = true
	return nil
}

// ClearDueDate removes the due date.
func (t *Task) ClearDueDate() {
	t.dueDate = time.Time{}
	t.hasDueDate = false
}

// UpdatePriority sets the priority if p is 1-3.
func (t *Task) UpdatePriority(p Priority) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, p)
	}
	t.priority = p
	return nil
}

// UpdateDescription replaces the description unless text is blank. The
// text is stored as given.
func (t *Task) UpdateDescription(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyDescription
	}
	t.description = text
	return nil
}

// UpdateAdditionalInfo replaces the note. Blank text removes it.
func (t *Task) UpdateAdditionalInfo(text string) {
	t.additionalInfo = normalizeInfo(text)
}

// MarkDeleted sets the soft-delete flag.
func (t *Task) MarkDeleted() {
	t.deleted = true
}

// Restore clears the soft-delete flag.
func (t *Task) Restore() {
	t.deleted = false
}

// Equal reports whether both tasks hold the same values in every field.
func (t *Task) Equal(other *Task) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.description == other.description &&
		t.completed == other.completed &&
		t.hasDueDate == other.hasDueDate &&
		t.dueDate.Equal(other.dueDate) &&
		t.priority == other.priority &&
		t.additionalInfo == other.additionalInfo &&
		t.createdDate.Equal(other.createdDate) &&
		t.deleted == other.deleted
}

func normalizeInfo(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}
