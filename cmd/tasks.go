package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/nibzard/taskpad-go/internal/task"
)

// addCommand creates a task from the remaining arguments.
func (a *app) addCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskpad add", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	due := fs.String("due", "", "Due date (DD/MM/YY)")
	priority := fs.String("priority", "", "Priority (1-3 or a name)")
	info := fs.String("info", "", "Additional info")
	yes := fs.Bool("yes", false, "Add even if the description already exists")

	if err := fs.Parse(args); err != nil {
		return err
	}

	description := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if description == "" {
		return task.ErrEmptyDescription
	}

	var opts []task.Option
	if strings.TrimSpace(*due) != "" {
		d, err := task.ParseDate(*due)
		if err != nil {
			return err
		}
		opts = append(opts, task.WithDueDate(d))
	}
	if strings.TrimSpace(*priority) != "" {
		p, err := task.ParsePriority(*priority, a.names)
		if err != nil {
			return err
		}
		opts = append(opts, task.WithPriority(p))
	}
	if *info != "" {
		opts = append(opts, task.WithAdditionalInfo(*info))
	}

	s := a.openStore()
	t, err := s.NewTask(description, opts...)
	if err != nil {
		return err
	}
	if s.FindByDescription(description) && !*yes {
		if !a.confirm(fmt.Sprintf("A task named %q already exists. Add it anyway?", description)) {
			fmt.Fprintln(a.out, "Not added.")
			return nil
		}
	}

	s.Append(t)
	if err := a.save(ctx, "add"); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added: %s\n", t.Render(a.names))
	return nil
}

// doneCommand marks a task completed.
func (a *app) doneCommand(ctx context.Context, args []string) error {
	return a.mutate(ctx, "done", args, 1, 1, func(t *task.Task, _ []string) error {
		return t.MarkCompleted()
	})
}

// reopenCommand marks a completed task ongoing again.
func (a *app) reopenCommand(ctx context.Context, args []string) error {
	return a.mutate(ctx, "reopen", args, 1, 1, func(t *task.Task, _ []string) error {
		return t.Reopen()
	})
}

// dueCommand sets or clears the due date.
func (a *app) dueCommand(ctx context.Context, args []string) error {
	return a.mutate(ctx, "due", args, 2, 2, func(t *task.Task, rest []string) error {
		text := strings.TrimSpace(rest[0])
		switch strings.ToLower(text) {
		case "none", "clear", "-":
			t.ClearDueDate()
			return nil
		}
		return t.Reschedule(text)
	})
}

// priorityCommand sets the priority.
func (a *app) priorityCommand(ctx context.Context, args []string) error {
	return a.mutate(ctx, "priority", args, 2, 2, func(t *task.Task, rest []string) error {
		p, err := task.ParsePriority(rest[0], a.names)
		if err != nil {
			return err
		}
		return t.UpdatePriority(p)
	})
}

// describeCommand replaces the description.
func (a *app) describeCommand(ctx context.Context, args []string) error {
	return a.mutate(ctx, "describe", args, 2, -1, func(t *task.Task, rest []string) error {
		return t.UpdateDescription(strings.Join(rest, " "))
	})
}

// infoCommand replaces the additional info. No text clears it.
func (a *app) infoCommand(ctx context.Context, args []string) error {
	return a.mutate(ctx, "info", args, 1, -1, func(t *task.Task, rest []string) error {
		t.UpdateAdditionalInfo(strings.Join(rest, " "))
		return nil
	})
}

// mutate picks the task named by args[0], applies fn to it with the
// remaining arguments, then saves. Argument counts include the task
// number; maxArgs < 0 means no upper bound.
func (a *app) mutate(ctx context.Context, action string, args []string, minArgs, maxArgs int, fn func(*task.Task, []string) error) error {
	if len(args) < minArgs {
		return fmt.Errorf("%s: expected %d argument(s), got %d", action, minArgs, len(args))
	}
	if maxArgs >= 0 && len(args) > maxArgs {
		return fmt.Errorf("unexpected arguments: %v", args[maxArgs:])
	}

	t, n, err := pick(a.ordered(), args[0])
	if err != nil {
		return err
	}
	if err := fn(t, args[1:]); err != nil {
		return fmt.Errorf("task %d: %w", n, err)
	}

	s := a.openStore()
	s.Touch()
	if err := a.save(ctx, action); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated: %s\n", t.Render(a.names))
	return nil
}

// rmCommand soft-deletes a task after confirmation.
func (a *app) rmCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskpad rm", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) != 1 {
		return fmt.Errorf("rm: expected a task number")
	}

	t, _, err := pick(a.ordered(), remaining[0])
	if err != nil {
		return err
	}
	if !*yes && !a.confirm(fmt.Sprintf("Delete %q?", t.Description())) {
		fmt.Fprintln(a.out, "Not deleted.")
		return nil
	}

	if err := a.openStore().Remove(t); err != nil {
		return err
	}
	if err := a.save(ctx, "delete"); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted: %s\n", t.Description())
	return nil
}

// restoreCommand undoes a soft delete. Numbers refer to the deleted list.
func (a *app) restoreCommand(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("restore: expected a deleted task number")
	}
	s := a.openStore()
	t, _, err := pick(s.Deleted(), args[0])
	if err != nil {
		return err
	}
	if err := s.Restore(t); err != nil {
		return err
	}
	if err := a.save(ctx, "restore"); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Restored: %s\n", t.Description())
	return nil
}

// purgeCommand physically removes soft-deleted tasks.
func (a *app) purgeCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskpad purge", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	s := a.openStore()
	pending := len(s.Deleted())
	if pending == 0 {
		fmt.Fprintln(a.out, "No deleted tasks.")
		return nil
	}
	if !*yes && !a.confirm(fmt.Sprintf("Permanently remove %d deleted task(s)?", pending)) {
		fmt.Fprintln(a.out, "Nothing purged.")
		return nil
	}

	removed := s.Purge()
	if err := a.save(ctx, "purge"); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Purged %d task(s).\n", removed)
	return nil
}
