// Package export writes the plain-text summary of outstanding tasks.
package export

import (
	"fmt"
	"strings"

	"github.com/nibzard/taskpad-go/internal/task"
	"github.com/nibzard/taskpad-go/internal/utils"
)

// DefaultFile is the export file name used when none is configured.
const DefaultFile = "tasks_export.txt"

const noInfo = "No additional info"

// Lines returns one line per task that is neither deleted nor completed, in
// the order given:
//
//	<rendered task> | Info: <additional info or "No additional info">
func Lines(tasks []*task.Task, names task.PriorityNames) []string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t.Deleted() || t.Completed() {
			continue
		}
		info := t.AdditionalInfo()
		if info == "" {
			info = noInfo
		}
		lines = append(lines, t.Render(names)+" | Info: "+info)
	}
	return lines
}

// Write atomically replaces path with the export of tasks and returns the
// number of lines written.
func Write(path string, tasks []*task.Task, names task.PriorityNames) (int, error) {
	lines := Lines(tasks, names)
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := utils.WriteFileAtomic(path, []byte(b.String()), 0o644); err != nil {
		return 0, fmt.Errorf("write export file: %w", err)
	}
	return len(lines), nil
}
