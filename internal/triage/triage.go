// Package triage classifies tasks by urgency and orders them for display.
package triage

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nibzard/taskpad-go/internal/task"
)

// Category is a task's display classification.
type Category int

// Categories in display order, most urgent first.
const (
	Overdue Category = iota
	DueSoon
	DueLater
	NoDueDate
	Completed
)

// DefaultDueSoonWindow is how far ahead a due date still counts as soon.
const DefaultDueSoonWindow = 30 * 24 * time.Hour

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Overdue:
		return "overdue"
	case DueSoon:
		return "due soon"
	case DueLater:
		return "due later"
	case NoDueDate:
		return "no due date"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Color returns the palette name associated with the category.
func (c Category) Color() string {
	switch c {
	case Overdue:
		return "red"
	case DueSoon:
		return "orange"
	case DueLater:
		return "blue"
	case NoDueDate:
		return "white"
	case Completed:
		return "green"
	default:
		return ""
	}
}

// Rank is the primary sort key for c; lower sorts first.
func (c Category) Rank() int {
	return int(c)
}

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{Overdue, DueSoon, DueLater, NoDueDate, Completed}
}

// Classifier assigns categories using a configurable due-soon window.
type Classifier struct {
	// DueSoon is the inclusive window after the reference time in which a
	// due date counts as DueSoon. Zero means DefaultDueSoonWindow.
	DueSoon time.Duration
}

// NewClassifier returns a classifier with the window given in days.
// Non-positive values use the default window.
func NewClassifier(days int) Classifier {
	if days <= 0 {
		return Classifier{DueSoon: DefaultDueSoonWindow}
	}
	return Classifier{DueSoon: time.Duration(days) * 24 * time.Hour}
}

func (c Classifier) window() time.Duration {
	if c.DueSoon <= 0 {
		return DefaultDueSoonWindow
	}
	return c.DueSoon
}

// Classify returns the category of t relative to ref.
// Completion wins over any date state.
func (c Classifier) Classify(t *task.Task, ref time.Time) Category {
	if t.Completed() {
		return Completed
	}
	due, ok := t.DueDate()
	if !ok {
		return NoDueDate
	}
	due, ref = wallClock(due), wallClock(ref)
	if due.Before(ref) {
		return Overdue
	}
	if due.Sub(ref) <= c.window() {
		return DueSoon
	}
	return DueLater
}

// wallClock reinterprets t's clock reading in UTC so that differences count
// calendar days of 24 hours even across a daylight saving change.
func wallClock(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
}

// Order returns a new slice sorted by category rank, then priority
// (high first). Ties keep their input order. Every task is classified once
// against the same ref.
func (c Classifier) Order(tasks []*task.Task, ref time.Time) []*task.Task {
	type entry struct {
		t    *task.Task
		rank int
	}
	entries := make([]entry, len(tasks))
	for i, t := range tasks {
		entries[i] = entry{t: t, rank: c.Classify(t, ref).Rank()}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].rank != entries[j].rank {
			return entries[i].rank < entries[j].rank
		}
		return entries[i].t.Priority() > entries[j].t.Priority()
	})

	ordered := make([]*task.Task, len(entries))
	for i, e := range entries {
		ordered[i] = e.t
	}
	return ordered
}

// Classify uses the default window.
func Classify(t *task.Task, ref time.Time) Category {
	return Classifier{}.Classify(t, ref)
}

// Order uses the default window.
func Order(tasks []*task.Task, ref time.Time) []*task.Task {
	return Classifier{}.Order(tasks, ref)
}

// FilterOptions narrows a task list for display.
type FilterOptions struct {
	// HideCompleted drops completed tasks.
	HideCompleted bool
	// Search keeps tasks whose description contains it, ignoring case.
	Search string
}

// Filter returns the tasks matching opts, preserving order.
func Filter(tasks []*task.Task, opts FilterOptions) []*task.Task {
	query := strings.ToLower(strings.TrimSpace(opts.Search))
	out := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if opts.HideCompleted && t.Completed() {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Description()), query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// LegendEntry labels one category for display.
type LegendEntry struct {
	Category Category
	Label    string
}

// Legend describes each category's color, using the classifier's window.
func (c Classifier) Legend() []LegendEntry {
	days := int(c.window() / (24 * time.Hour))
	return []LegendEntry{
		{Overdue, "Red = Overdue"},
		{DueSoon, fmt.Sprintf("Orange = Due in %d days", days)},
		{DueLater, fmt.Sprintf("Blue = Due in >%d days", days)},
		{NoDueDate, "White = No due date"},
		{Completed, "Green = Completed"},
	}
}
