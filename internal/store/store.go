// Package store owns the in-memory task collection and its backing file.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskpad-go/internal/logging"
	"github.com/nibzard/taskpad-go/internal/task"
	"github.com/nibzard/taskpad-go/internal/taskfile"
	"github.com/nibzard/taskpad-go/internal/triage"
	"github.com/nibzard/taskpad-go/internal/utils"
)

// ErrTaskNotFound is returned when a task is not part of the collection.
var ErrTaskNotFound = errors.New("task not found")

// Options configures a Store.
type Options struct {
	// Path is the task file.
	Path string
	// SchemaPath optionally replaces the bundled record schema.
	SchemaPath string
	// Classifier orders tasks for Ordered.
	Classifier triage.Classifier
	// Logger receives load problems and saves. Nil discards.
	Logger *log.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Store holds the task collection. It is not safe for concurrent use.
type Store struct {
	path       string
	codec      *taskfile.Codec
	classifier triage.Classifier
	logger     *log.Logger
	clock      func() time.Time

	tasks   []*task.Task
	dirty   bool
	damaged bool
}

// New returns an empty store for opts.Path. Call Load to read the file.
func New(opts Options) *Store {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		path:       opts.Path,
		codec:      taskfile.NewCodec(taskfile.Options{SchemaPath: opts.SchemaPath, Clock: clock}),
		classifier: opts.Classifier,
		logger:     logging.OrDiscard(opts.Logger),
		clock:      clock,
		tasks:      []*task.Task{},
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the collection with the contents of the task file.
//
// Load never fails. Problems are logged and returned in the result. When
// the file holds data that could not be decoded, the next Save first copies
// it to <path>.corrupt-<timestamp>.
func (s *Store) Load() *taskfile.Result {
	res := s.codec.Load(s.path)

	for _, w := range res.Warnings {
		s.logger.Warn(w)
	}
	switch {
	case res.Missing:
		s.logger.Debug("task file not found, starting empty", "path", s.path)
	case errors.Is(res.Problem, taskfile.ErrEmptyDocument):
		s.logger.Debug("task file is empty", "path", s.path)
	case res.Problem != nil:
		s.logger.Warn("could not read task file, starting empty", "path", s.path, "err", res.Problem)
	}
	for _, sk := range res.Skipped {
		s.logger.Warn("skipped invalid task record", "index", sk.Index, "err", sk.Err)
	}

	s.damaged = res.Lossy() || (res.Problem != nil && !errors.Is(res.Problem, taskfile.ErrEmptyDocument))

	s.tasks = res.Tasks
	s.dirty = false
	s.logger.Debug("loaded tasks", "path", s.path, "count", len(s.tasks), "skipped", len(res.Skipped))
	return res
}

func (s *Store) backup() (string, error) {
	name := fmt.Sprintf("%s.corrupt-%s", s.path, s.clock().Format("20060102-150405"))
	if err := utils.CopyFile(s.path, name, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// Save writes the full collection, deleted tasks included. If the loaded
// file was damaged it is backed up first, and Save fails without writing
// when the backup cannot be made.
func (s *Store) Save() error {
	if s.damaged {
		backup, err := s.backup()
		if err != nil {
			return fmt.Errorf("back up damaged task file: %w", err)
		}
		s.logger.Warn("damaged task file backed up", "backup", backup)
		s.damaged = false
	}
	if err := taskfile.Save(s.path, s.tasks); err != nil {
		return err
	}
	s.dirty = false
	s.logger.Debug("saved tasks", "path", s.path, "count", len(s.tasks))
	return nil
}

// Dirty reports whether the collection changed since the last Load or Save.
// Changes made directly on a *task.Task are recorded with Touch.
func (s *Store) Dirty() bool {
	return s.dirty
}

// Touch marks the collection as changed.
func (s *Store) Touch() {
	s.dirty = true
}

// Append adds t to the end of the collection.
func (s *Store) Append(t *task.Task) {
	s.tasks = append(s.tasks, t)
	s.dirty = true
}

// Remove soft-deletes t. A task that is not in the collection yields
// ErrTaskNotFound.
func (s *Store) Remove(t *task.Task) error {
	if s.indexOf(t) < 0 {
		return ErrTaskNotFound
	}
	t.MarkDeleted()
	s.dirty = true
	return nil
}

// Restore undoes a soft delete.
func (s *Store) Restore(t *task.Task) error {
	if s.indexOf(t) < 0 {
		return ErrTaskNotFound
	}
	t.Restore()
	s.dirty = true
	return nil
}

// Purge physically removes every soft-deleted task and returns how many
// were removed.
func (s *Store) Purge() int {
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.Deleted() {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept
	if removed > 0 {
		s.dirty = true
	}
	return removed
}

// FindByDescription reports whether a non-deleted task has the given
// description, ignoring case and surrounding space.
func (s *Store) FindByDescription(text string) bool {
	want := strings.TrimSpace(text)
	for _, t := range s.tasks {
		if !t.Deleted() && strings.EqualFold(strings.TrimSpace(t.Description()), want) {
			return true
		}
	}
	return false
}

// Tasks returns every task in file order, deleted ones included.
func (s *Store) Tasks() []*task.Task {
	out := make([]*task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Active returns the non-deleted tasks in file order.
func (s *Store) Active() []*task.Task {
	return s.filter(func(t *task.Task) bool { return !t.Deleted() })
}

// Deleted returns the soft-deleted tasks in file order.
func (s *Store) Deleted() []*task.Task {
	return s.filter(func(t *task.Task) bool { return t.Deleted() })
}

// Ordered returns the active tasks in display order relative to ref.
func (s *Store) Ordered(ref time.Time) []*task.Task {
	return s.classifier.Order(s.Active(), ref)
}

// Classifier returns the classifier used by Ordered.
func (s *Store) Classifier() triage.Classifier {
	return s.classifier
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.clock()
}

// NewTask builds a task stamped with the store clock.
func (s *Store) NewTask(description string, opts ...task.Option) (*task.Task, error) {
	opts = append([]task.Option{task.WithClock(s.clock)}, opts...)
	return task.New(description, opts...)
}

func (s *Store) filter(keep func(*task.Task) bool) []*task.Task {
	out := make([]*task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) indexOf(t *task.Task) int {
	for i, candidate := range s.tasks {
		if candidate == t {
			return i
		}
	}
	return -1
}
