package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nibzard/taskpad-go/internal/config"
	"github.com/nibzard/taskpad-go/internal/logging"
	"github.com/nibzard/taskpad-go/internal/taskfile"
	"github.com/nibzard/taskpad-go/internal/triage"
	"github.com/nibzard/taskpad-go/internal/ui"
	"github.com/nibzard/taskpad-go/internal/utils"
)

// doctorCommand reports the effective config and checks the task file.
func (a *app) doctorCommand(args []string) error {
	fs := flag.NewFlagSet("taskpad doctor", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := a.out
	fmt.Fprintln(w, "taskpad doctor")
	fmt.Fprintln(w, "==============")
	fmt.Fprintln(w)

	allOK := true

	// Config files and values
	fmt.Fprintln(w, "Config:")
	if len(a.sources.Files) == 0 {
		fmt.Fprintln(w, "  (no config files, using defaults)")
	}
	for _, f := range a.sources.Files {
		fmt.Fprintf(w, "  file: %s\n", f)
	}
	for _, field := range config.Fields() {
		value := a.cfg.Value(field)
		if value == "" {
			value = "(unset)"
		}
		fmt.Fprintf(w, "  %-15s %s [%s]\n", field, value, a.sources.Sources[field])
	}
	fmt.Fprintln(w)

	// Task file
	s := a.openStore()
	res := a.loaded
	fmt.Fprintf(w, "Task file: %s\n", s.Path())
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	switch {
	case res.Missing:
		fmt.Fprintln(w, "  ⚠️  Not found (will be created on first save)")
	case errors.Is(res.Problem, taskfile.ErrEmptyDocument):
		fmt.Fprintln(w, "  ⚠️  Empty")
	case res.Problem != nil:
		fmt.Fprintf(w, "  ❌ %v\n", res.Problem)
		allOK = false
	default:
		fmt.Fprintln(w, "  ✅ OK")
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(w, "  ❌ %d record(s) failed validation:\n", len(res.Skipped))
		for _, sk := range res.Skipped {
			fmt.Fprintf(w, "     - record %d: %v\n", sk.Index, sk.Err)
		}
		allOK = false
	}
	if res.Lossy() {
		fmt.Fprintln(w, "  ⚠️  The next save will back up the current file first")
	}

	active, deleted := len(s.Active()), len(s.Deleted())
	fmt.Fprintf(w, "  Tasks: %d (%d deleted)\n", active+deleted, deleted)
	if *verbose {
		now := s.Now()
		counts := make(map[triage.Category]int)
		for _, t := range s.Active() {
			counts[s.Classifier().Classify(t, now)]++
		}
		for _, c := range triage.Categories() {
			fmt.Fprintf(w, "    %-12s %d\n", c.String()+":", counts[c])
		}
	}
	fmt.Fprintln(w)

	// Post-save hook
	if fields := strings.Fields(a.cfg.HookCommand); len(fields) > 0 {
		fmt.Fprintf(w, "Hook: %s\n", a.cfg.HookCommand)
		if path, err := utils.ResolveExecutable(fields[0]); err != nil {
			fmt.Fprintf(w, "  ❌ %v\n", err)
			allOK = false
		} else {
			fmt.Fprintf(w, "  ✅ OK (%s)\n", path)
		}
		fmt.Fprintln(w)
	}

	// Log file
	if a.cfg.LogFile != "" {
		fmt.Fprintf(w, "Log file: %s\n", a.cfg.LogFile)
		if info, err := os.Stat(a.cfg.LogFile); err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(w, "  ⚠️  Not found (will be created on first write)")
			} else {
				fmt.Fprintf(w, "  ❌ Error: %v\n", err)
				allOK = false
			}
		} else if info.IsDir() {
			fmt.Fprintln(w, "  ❌ Error: path is a directory")
			allOK = false
		} else {
			fmt.Fprintln(w, "  ✅ OK")
		}
		fmt.Fprintln(w)
	}

	// Overall status
	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// initConfigCommand writes the example config file.
func (a *app) initConfigCommand(args []string) error {
	fs := flag.NewFlagSet("taskpad init-config", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	force := fs.Bool("force", false, "Overwrite an existing file")
	project := fs.Bool("project", false, "Write taskpad.toml in the current directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}

	path := config.UserConfigPath()
	if *project {
		path = filepath.Join(a.cfg.WorkDir, config.ProjectConfigNames[0])
	}
	if fs.NArg() == 1 {
		path = fs.Arg(0)
	}
	if path == "" {
		return fmt.Errorf("cannot determine user config path; pass a path")
	}

	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	if err := utils.WriteFileAtomic(path, []byte(config.ExampleConfig()), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(a.out, "Wrote %s\n", path)
	return nil
}

// tuiCommand launches the terminal UI.
// quietForScreen keeps hook output and console log lines off the
// full-screen view. A configured log file still receives logs.
func (a *app) quietForScreen() {
	a.hookOut = io.Discard
	if strings.TrimSpace(a.cfg.LogFile) == "" {
		a.logger = logging.Discard()
	}
}

func (a *app) tuiCommand(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	a.quietForScreen()
	s := a.openStore()
	return ui.RunTUI(ctx, s, ui.Options{
		Names:      a.names,
		Color:      a.cfg.Color,
		ExportPath: a.cfg.ExportFile,
		Logger:     a.logger,
		AfterSave: func(action string) {
			a.runHook(ctx, action, len(s.Tasks()))
		},
	})
}
