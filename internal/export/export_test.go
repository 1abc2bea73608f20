package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/taskpad-go/internal/task"
)

func clock() time.Time {
	return time.Date(2025, time.March, 14, 8, 0, 0, 0, time.Local)
}

func newTask(t *testing.T, desc string, opts ...task.Option) *task.Task {
	t.Helper()
	opts = append([]task.Option{task.WithClock(clock)}, opts...)
	tk, err := task.New(desc, opts...)
	require.NoError(t, err)
	return tk
}

func fixture(t *testing.T) []*task.Task {
	t.Helper()
	due := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.Local)

	milk := newTask(t, "Buy milk", task.WithDueDate(due), task.WithPriority(task.High), task.WithAdditionalInfo("semi-skimmed"))
	plain := newTask(t, "Read book")
	done := newTask(t, "Done already")
	require.NoError(t, done.MarkCompleted())
	gone := newTask(t, "Deleted one")
	gone.MarkDeleted()

	return []*task.Task{milk, done, plain, gone}
}

func TestLines(t *testing.T) {
	got := Lines(fixture(t), nil)
	want := []string{
		"Buy milk                       | Incomplete | 01/04/25   | High       | Created: 14/03/25 | Info: semi-skimmed",
		"Read book                      | Incomplete | No due date | Normal     | Created: 14/03/25 | Info: No additional info",
	}
	assert.Equal(t, want, got)
}

func TestLinesUsesPriorityNames(t *testing.T) {
	tasks := []*task.Task{newTask(t, "Errand", task.WithPriority(task.Low))}
	names := task.PriorityNames{task.Low: "Someday", task.Normal: "Soon", task.High: "Now"}

	got := Lines(tasks, names)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "| Someday    |")
}

func TestLinesEmpty(t *testing.T) {
	assert.Empty(t, Lines(nil, nil))
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)

	n, err := Write(path, fixture(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "Buy milk                       | Incomplete | 01/04/25   | High       | Created: 14/03/25 | Info: semi-skimmed\n" +
		"Read book                      | Incomplete | No due date | Normal     | Created: 14/03/25 | Info: No additional info\n"
	assert.Equal(t, want, string(data))
}

func TestWriteReplacesPreviousExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("stale\nstale\nstale\n"), 0o644))

	n, err := Write(path, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
