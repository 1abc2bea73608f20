// Package task defines the task record and its validated mutations.
//
// A task is created interactively with New or rebuilt from a persisted
// record with FromRecord. Every mutation validates its input first: invalid
// input leaves the task unchanged and returns one of the sentinel errors
// below, which callers match with errors.Is.
//
//   - ErrEmptyDescription: description is blank after trimming
//   - ErrInvalidDate: date text does not match DD/MM/YY
//   - ErrInvalidPriority: priority is not 1, 2, or 3
//   - ErrAlreadyCompleted: MarkCompleted on a completed task (informational)
//   - ErrNotCompleted: Reopen on an open task (informational)
//
// # Dates
//
// Due and created dates are calendar dates. They are stored as time.Time
// values at local midnight and exchanged as DD/MM/YY text (Go layout
// "02/01/06"). Two-digit years 69-99 map to 1969-1999 and 00-68 to
// 2000-2068.
//
// # Priorities
//
//   - 1: Low
//   - 2: Normal (default)
//   - 3: High
//
// Display names come from a PriorityNames table so callers can inject their
// own labels.
package task
