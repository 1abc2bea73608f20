package cmd

import (
	"flag"
	"fmt"
	"strings"

	"github.com/nibzard/taskpad-go/internal/export"
	"github.com/nibzard/taskpad-go/internal/task"
	"github.com/nibzard/taskpad-go/internal/triage"
	"github.com/nibzard/taskpad-go/internal/ui"
)

// lsCommand lists tasks in triage order with their task numbers.
func (a *app) lsCommand(args []string) error {
	fs := flag.NewFlagSet("taskpad ls", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	all := fs.Bool("all", false, "Also list deleted tasks")
	completed := fs.Bool("completed", true, "Include completed tasks")
	search := fs.String("search", "", "Only tasks whose description contains this text")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		if *search != "" {
			return fmt.Errorf("unexpected arguments: %v", fs.Args())
		}
		*search = strings.Join(fs.Args(), " ")
	}

	s := a.openStore()
	now := s.Now()
	classifier := s.Classifier()
	ordered := s.Ordered(now)
	palette := ui.NewPalette(a.out, a.cfg.Color && !*noColor)

	// Numbers come from the full order so that filtering never renumbers.
	numbers := make(map[*task.Task]int, len(ordered))
	for i, t := range ordered {
		numbers[t] = i + 1
	}
	shown := triage.Filter(ordered, triage.FilterOptions{
		HideCompleted: !*completed,
		Search:        *search,
	})

	if len(shown) == 0 {
		fmt.Fprintln(a.out, "No tasks found.")
	}
	for _, t := range shown {
		line := fmt.Sprintf("%3d. %s", numbers[t], t.Render(a.names))
		fmt.Fprintln(a.out, palette.Render(classifier.Classify(t, now), line))
	}

	if *all {
		deleted := triage.Filter(s.Deleted(), triage.FilterOptions{Search: *search})
		fmt.Fprintln(a.out)
		fmt.Fprintf(a.out, "Deleted (%d):\n", len(deleted))
		for i, t := range s.Deleted() {
			if !containsTask(deleted, t) {
				continue
			}
			fmt.Fprintf(a.out, "%3d. %s\n", i+1, t.Render(a.names))
		}
	}

	if palette.Enabled() && len(shown) > 0 {
		fmt.Fprintln(a.out)
		entries := classifier.Legend()
		labels := make([]string, 0, len(entries))
		for _, e := range entries {
			labels = append(labels, palette.Render(e.Category, e.Label))
		}
		fmt.Fprintln(a.out, strings.Join(labels, "  "))
	}
	return nil
}

func containsTask(list []*task.Task, t *task.Task) bool {
	for _, candidate := range list {
		if candidate == t {
			return true
		}
	}
	return false
}

// showCommand prints every field of one task.
func (a *app) showCommand(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("show: expected a task number")
	}
	s := a.openStore()
	now := s.Now()
	t, n, err := pick(s.Ordered(now), args[0])
	if err != nil {
		return err
	}

	status := "Incomplete"
	if t.Completed() {
		status = "Completed"
	}
	due := "No due date"
	if d, ok := t.DueDate(); ok {
		due = task.FormatDate(d)
	}
	info := t.AdditionalInfo()
	if info == "" {
		info = "-"
	}

	fmt.Fprintf(a.out, "Task %d\n", n)
	fmt.Fprintf(a.out, "  Description: %s\n", t.Description())
	fmt.Fprintf(a.out, "  Status:      %s\n", status)
	fmt.Fprintf(a.out, "  Due:         %s\n", due)
	fmt.Fprintf(a.out, "  Priority:    %s (%d)\n", a.names.Name(t.Priority()), t.Priority())
	fmt.Fprintf(a.out, "  Created:     %s\n", task.FormatDate(t.CreatedDate()))
	fmt.Fprintf(a.out, "  Category:    %s\n", s.Classifier().Classify(t, now))
	fmt.Fprintf(a.out, "  Info:        %s\n", info)
	return nil
}

// exportCommand writes the outstanding tasks to a text file.
func (a *app) exportCommand(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	path := a.cfg.ExportFile
	if len(args) == 1 {
		path = args[0]
	}

	n, err := export.Write(path, a.ordered(), a.names)
	if err != nil {
		return err
	}
	a.logger.Info("exported tasks", "path", path, "count", n)
	fmt.Fprintf(a.out, "Exported %d task(s) to %s\n", n, path)
	return nil
}
