// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/nibzard/taskpad-go/internal/config"
	"github.com/nibzard/taskpad-go/internal/logging"
	"github.com/nibzard/taskpad-go/internal/store"
	"github.com/nibzard/taskpad-go/internal/task"
	"github.com/nibzard/taskpad-go/internal/taskfile"
)

// setup isolates config lookup and moves into an empty working directory.
func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "TASKPAD_") || key == "NO_COLOR" {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
	dir := t.TempDir()
	testChdir(t, dir)
	return dir
}

// runCmd runs the CLI with stdin and returns stdout and stderr.
func runCmd(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), err
}

// mustRun runs the CLI and fails the test on error.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := runCmd(t, "", args...)
	if err != nil {
		t.Fatalf("taskpad %v: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

// savedTasks reads the task file in dir.
func savedTasks(t *testing.T, dir string) []*task.Task {
	t.Helper()
	res := taskfile.Load(filepath.Join(dir, "tasks.json"))
	if res.Problem != nil || res.Missing {
		t.Fatalf("task file: problem=%v missing=%v", res.Problem, res.Missing)
	}
	return res.Tasks
}

// TestRun tests the main Run function.
func TestRun(t *testing.T) {
	t.Run("shows help with --help flag", func(t *testing.T) {
		setup(t)
		out := mustRun(t, "--help")
		if !strings.Contains(out, "Usage:") {
			t.Errorf("expected usage, got %q", out)
		}
	})

	t.Run("shows help with help command", func(t *testing.T) {
		setup(t)
		out := mustRun(t, "help")
		if !strings.Contains(out, "Commands:") {
			t.Errorf("expected command list, got %q", out)
		}
	})

	t.Run("shows version with -v flag", func(t *testing.T) {
		setup(t)
		out := mustRun(t, "-v")
		if !strings.Contains(out, "taskpad version "+Version) {
			t.Errorf("expected version, got %q", out)
		}
	})

	t.Run("shows version with version command", func(t *testing.T) {
		setup(t)
		if out := mustRun(t, "version"); !strings.HasPrefix(out, "taskpad version") {
			t.Errorf("expected version, got %q", out)
		}
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		setup(t)
		_, _, err := runCmd(t, "", "frobnicate")
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
	})

	t.Run("bad global flag returns error", func(t *testing.T) {
		setup(t)
		if _, _, err := runCmd(t, "", "-due-soon", "0"); err == nil {
			t.Error("expected config error")
		}
	})

	t.Run("bare invocation lists tasks", func(t *testing.T) {
		setup(t)
		if out := mustRun(t); !strings.Contains(out, "No tasks found.") {
			t.Errorf("expected empty listing, got %q", out)
		}
	})
}

func TestAddAndList(t *testing.T) {
	dir := setup(t)

	out := mustRun(t, "add", "-due", "01/01/68", "-priority", "high", "-info", "ask Sam", "Buy", "milk")
	if !strings.HasPrefix(out, "Added: Buy milk") {
		t.Errorf("add output: %q", out)
	}

	saved := savedTasks(t, dir)
	if len(saved) != 1 {
		t.Fatalf("saved %d tasks, want 1", len(saved))
	}
	got := saved[0]
	if got.Description() != "Buy milk" || got.Priority() != task.High || got.AdditionalInfo() != "ask Sam" {
		t.Errorf("saved task: %s info=%q", got, got.AdditionalInfo())
	}
	if due, ok := got.DueDate(); !ok || task.FormatDate(due) != "01/01/68" {
		t.Errorf("due: %v %v", due, ok)
	}

	out = mustRun(t, "ls")
	if !strings.Contains(out, "  1. Buy milk") || !strings.Contains(out, "High") {
		t.Errorf("ls output: %q", out)
	}

	out = mustRun(t, "show", "1")
	for _, want := range []string{"Description: Buy milk", "Priority:    High (3)", "Info:        ask Sam", "Category:    due later"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"empty description", []string{"add", "  "}, task.ErrEmptyDescription},
		{"bad date", []string{"add", "-due", "2024-01-01", "x"}, task.ErrInvalidDate},
		{"bad priority", []string{"add", "-priority", "9", "x"}, task.ErrInvalidPriority},
		{"unknown priority name", []string{"add", "-priority", "urgent", "x"}, task.ErrInvalidPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setup(t)
			_, _, err := runCmd(t, "", tt.args...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if _, statErr := os.Stat(filepath.Join(dir, "tasks.json")); !os.IsNotExist(statErr) {
				t.Error("a rejected add must not write the task file")
			}
		})
	}
}

func TestAddDuplicateConfirmation(t *testing.T) {
	dir := setup(t)
	mustRun(t, "add", "Water plants")

	out, _, err := runCmd(t, "n\n", "add", "water PLANTS")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "already exists") || !strings.Contains(out, "Not added.") {
		t.Errorf("declined duplicate output: %q", out)
	}
	if n := len(savedTasks(t, dir)); n != 1 {
		t.Fatalf("tasks after declining: %d", n)
	}

	if _, _, err := runCmd(t, "y\n", "add", "water plants"); err != nil {
		t.Fatal(err)
	}
	mustRun(t, "add", "-yes", "Water plants")
	if n := len(savedTasks(t, dir)); n != 3 {
		t.Errorf("tasks after confirming: %d, want 3", n)
	}
}

func TestNumbersFollowTriageOrder(t *testing.T) {
	dir := setup(t)
	mustRun(t, "add", "-due", "01/01/68", "later")
	mustRun(t, "add", "-due", "01/01/20", "overdue")
	mustRun(t, "add", "undated")

	out := mustRun(t, "ls")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 ||
		!strings.HasPrefix(strings.TrimSpace(lines[0]), "1. overdue") ||
		!strings.HasPrefix(strings.TrimSpace(lines[1]), "2. later") ||
		!strings.HasPrefix(strings.TrimSpace(lines[2]), "3. undated") {
		t.Fatalf("ls order:\n%s", out)
	}

	mustRun(t, "done", "1")
	for _, tk := range savedTasks(t, dir) {
		if tk.Description() == "overdue" && !tk.Completed() {
			t.Error("done 1 should complete the overdue task")
		}
	}

	// The completed task now sorts last, so the numbers shift.
	out = mustRun(t, "ls")
	if !strings.Contains(out, "1. later") || !strings.Contains(out, "3. overdue") {
		t.Errorf("ls after done:\n%s", out)
	}

	out = mustRun(t, "ls", "-completed=false")
	if strings.Contains(out, "overdue") {
		t.Errorf("completed task should be hidden:\n%s", out)
	}
	out = mustRun(t, "ls", "-search", "UNDATED")
	if !strings.Contains(out, "2. undated") || strings.Contains(out, "later") {
		t.Errorf("search keeps full-order numbers:\n%s", out)
	}
}

func TestMutations(t *testing.T) {
	dir := setup(t)
	mustRun(t, "add", "task")

	only := func(t *testing.T) *task.Task {
		t.Helper()
		saved := savedTasks(t, dir)
		if len(saved) != 1 {
			t.Fatalf("saved %d tasks", len(saved))
		}
		return saved[0]
	}

	t.Run("done and reopen", func(t *testing.T) {
		mustRun(t, "done", "1")
		if !only(t).Completed() {
			t.Fatal("not completed")
		}
		if _, _, err := runCmd(t, "", "done", "1"); !errors.Is(err, task.ErrAlreadyCompleted) {
			t.Errorf("second done: %v", err)
		}
		mustRun(t, "reopen", "1")
		if only(t).Completed() {
			t.Fatal("not reopened")
		}
		if _, _, err := runCmd(t, "", "reopen", "1"); !errors.Is(err, task.ErrNotCompleted) {
			t.Errorf("reopen of open task: %v", err)
		}
	})

	t.Run("due", func(t *testing.T) {
		mustRun(t, "due", "1", "5/6/30")
		if due, ok := only(t).DueDate(); !ok || task.FormatDate(due) != "05/06/30" {
			t.Errorf("due: %v %v", due, ok)
		}
		if _, _, err := runCmd(t, "", "due", "1", "31/02/30"); !errors.Is(err, task.ErrInvalidDate) {
			t.Errorf("invalid date: %v", err)
		}
		if due, _ := only(t).DueDate(); task.FormatDate(due) != "05/06/30" {
			t.Error("failed reschedule changed the date")
		}
		mustRun(t, "due", "1", "none")
		if _, ok := only(t).DueDate(); ok {
			t.Error("due none should clear the date")
		}
	})

	t.Run("priority", func(t *testing.T) {
		mustRun(t, "priority", "1", "low")
		if only(t).Priority() != task.Low {
			t.Error("priority by name")
		}
		mustRun(t, "priority", "1", "3")
		if only(t).Priority() != task.High {
			t.Error("priority by number")
		}
		if _, _, err := runCmd(t, "", "priority", "1", "0"); !errors.Is(err, task.ErrInvalidPriority) {
			t.Errorf("invalid priority: %v", err)
		}
		if only(t).Priority() != task.High {
			t.Error("rejected priority changed the task")
		}
	})

	t.Run("describe", func(t *testing.T) {
		mustRun(t, "describe", "1", "renamed", "task")
		if only(t).Description() != "renamed task" {
			t.Errorf("description: %q", only(t).Description())
		}
		if _, _, err := runCmd(t, "", "describe", "1", " "); !errors.Is(err, task.ErrEmptyDescription) {
			t.Errorf("blank description: %v", err)
		}
	})

	t.Run("info", func(t *testing.T) {
		mustRun(t, "info", "1", "some", "notes")
		if only(t).AdditionalInfo() != "some notes" {
			t.Errorf("info: %q", only(t).AdditionalInfo())
		}
		mustRun(t, "info", "1")
		if only(t).AdditionalInfo() != "" {
			t.Error("info without text should clear")
		}
	})

	t.Run("bad numbers", func(t *testing.T) {
		for _, arg := range []string{"0", "2", "x"} {
			if _, _, err := runCmd(t, "", "done", arg); !errors.Is(err, errInvalidIndex) {
				t.Errorf("done %s: %v", arg, err)
			}
		}
		if _, _, err := runCmd(t, "", "due", "1"); err == nil {
			t.Error("due without a date should fail")
		}
		if _, _, err := runCmd(t, "", "done", "1", "2"); err == nil {
			t.Error("extra arguments should fail")
		}
	})
}

func TestDeleteRestorePurge(t *testing.T) {
	dir := setup(t)
	mustRun(t, "add", "keep")
	mustRun(t, "add", "drop")

	out, _, err := runCmd(t, "no\n", "rm", "2")
	if err != nil || !strings.Contains(out, "Not deleted.") {
		t.Fatalf("declined rm: %v %q", err, out)
	}

	if _, _, err := runCmd(t, "y\n", "rm", "2"); err != nil {
		t.Fatal(err)
	}
	saved := savedTasks(t, dir)
	if len(saved) != 2 || !saved[1].Deleted() {
		t.Fatal("rm should soft-delete and keep the record")
	}

	out = mustRun(t, "ls")
	if strings.Contains(out, "drop") {
		t.Errorf("deleted task listed:\n%s", out)
	}
	out = mustRun(t, "ls", "-all")
	if !strings.Contains(out, "Deleted (1):") || !strings.Contains(out, "1. drop") {
		t.Errorf("ls -all:\n%s", out)
	}

	mustRun(t, "restore", "1")
	if savedTasks(t, dir)[1].Deleted() {
		t.Fatal("restore should clear the flag")
	}

	mustRun(t, "rm", "-yes", "2")
	if out := mustRun(t, "purge", "-yes"); !strings.Contains(out, "Purged 1") {
		t.Errorf("purge output: %q", out)
	}
	saved = savedTasks(t, dir)
	if len(saved) != 1 || saved[0].Description() != "keep" {
		t.Errorf("after purge: %v", saved)
	}
	if out := mustRun(t, "purge"); !strings.Contains(out, "No deleted tasks.") {
		t.Errorf("empty purge: %q", out)
	}
}

func TestExport(t *testing.T) {
	dir := setup(t)
	mustRun(t, "add", "-info", "bring cable", "open one")
	mustRun(t, "add", "finished")
	mustRun(t, "done", "2")

	out := mustRun(t, "export")
	if !strings.Contains(out, "Exported 1 task(s)") {
		t.Errorf("export output: %q", out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "tasks_export.txt"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "open one") || !strings.HasSuffix(lines[0], " | Info: bring cable") {
		t.Errorf("export file: %q", string(data))
	}

	custom := filepath.Join(dir, "out", "list.txt")
	mustRun(t, "export", custom)
	if _, err := os.Stat(custom); err != nil {
		t.Errorf("export to custom path: %v", err)
	}
}

func TestHookRunsAfterSave(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook script is POSIX shell")
	}
	dir := setup(t)
	logPath := filepath.Join(dir, "hook.log")
	hook := filepath.Join(dir, "hook.sh")
	script := "#!/bin/sh\necho \"$2 $3\" >> " + logPath + "\n"
	if err := os.WriteFile(hook, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	mustRun(t, "-hook", hook, "add", "one")
	mustRun(t, "-hook", hook, "done", "1")
	mustRun(t, "-hook", hook, "ls")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "add 1\ndone 1\n" {
		t.Errorf("hook log: %q", got)
	}
}

func TestFailingHookDoesNotFailCommand(t *testing.T) {
	dir := setup(t)
	_, errOut, err := runCmd(t, "", "-hook", filepath.Join(dir, "missing-hook"), "add", "one")
	if err != nil {
		t.Fatalf("add with broken hook: %v", err)
	}
	if !strings.Contains(errOut, "post-save hook failed") {
		t.Errorf("expected hook warning on stderr, got %q", errOut)
	}
}

func TestProjectConfig(t *testing.T) {
	dir := setup(t)
	config := `tasks_file = "data/mine.json"
due_soon_days = 7

[priority_names]
3 = "Urgent"
`
	if err := os.WriteFile(filepath.Join(dir, "taskpad.toml"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	mustRun(t, "add", "-priority", "urgent", "configured")
	res := taskfile.Load(filepath.Join(dir, "data", "mine.json"))
	if len(res.Tasks) != 1 || res.Tasks[0].Priority() != task.High {
		t.Fatalf("configured task file: %+v", res)
	}
	if out := mustRun(t, "ls"); !strings.Contains(out, "Urgent") {
		t.Errorf("custom priority name not shown:\n%s", out)
	}
}

func TestCorruptFileIsBackedUp(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCmd(t, "", "doctor")
	if err == nil {
		t.Error("doctor should fail on a corrupt file")
	}
	if !strings.Contains(out, "❌") {
		t.Errorf("doctor output:\n%s", out)
	}

	mustRun(t, "add", "fresh")
	backups, err := filepath.Glob(path + ".corrupt-*")
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("backups: %v", backups)
	}
	data, err := os.ReadFile(backups[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{not json" {
		t.Errorf("backup content: %q", data)
	}
	if n := len(savedTasks(t, dir)); n != 1 {
		t.Errorf("tasks after recovery: %d", n)
	}
}

func TestDoctor(t *testing.T) {
	t.Run("missing file passes", func(t *testing.T) {
		setup(t)
		out := mustRun(t, "doctor", "-v")
		for _, want := range []string{"Not found", "tasks_file", "[default]", "All checks passed"} {
			if !strings.Contains(out, want) {
				t.Errorf("doctor output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("missing hook fails", func(t *testing.T) {
		dir := setup(t)
		out, _, err := runCmd(t, "", "-hook", filepath.Join(dir, "nope.sh"), "doctor")
		if err == nil {
			t.Fatal("expected doctor failure for a missing hook")
		}
		if !strings.Contains(out, "Hook:") {
			t.Errorf("doctor output:\n%s", out)
		}
	})

	t.Run("skipped records fail", func(t *testing.T) {
		dir := setup(t)
		doc := `[
  {"description": "ok", "completed": false, "priority": 2},
  {"description": "bad", "completed": false, "priority": 5}
]`
		if err := os.WriteFile(filepath.Join(dir, "tasks.json"), []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
		out, _, err := runCmd(t, "", "doctor")
		if err == nil {
			t.Fatal("expected doctor failure")
		}
		if !strings.Contains(out, "1 record(s) failed validation") {
			t.Errorf("doctor output:\n%s", out)
		}
	})
}

func TestInitConfig(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "conf", "taskpad.toml")

	mustRun(t, "init-config", path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "due_soon_days = 30") {
		t.Errorf("example config: %q", data)
	}

	if _, _, err := runCmd(t, "", "init-config", path); err == nil {
		t.Error("existing file should not be overwritten")
	}
	mustRun(t, "init-config", "-force", path)

	mustRun(t, "init-config", "-project")
	if _, err := os.Stat(filepath.Join(dir, "taskpad.toml")); err != nil {
		t.Errorf("project config: %v", err)
	}
	// The written project config must load cleanly.
	mustRun(t, "ls")
}

func TestTUIRequiresTTY(t *testing.T) {
	setup(t)
	if runtime.GOOS == "windows" {
		t.Skip("stdout detection differs on windows")
	}
	// Under go test stdout is not a terminal.
	if _, _, err := runCmd(t, "", "tui"); err == nil || !strings.Contains(err.Error(), "TTY") {
		t.Errorf("expected TTY error, got %v", err)
	}
}

func TestQuietForScreen(t *testing.T) {
	var console bytes.Buffer
	newApp := func(logFile string) *app {
		return &app{
			cfg: &config.Config{
				HookCommand: filepath.Join(t.TempDir(), "missing-hook"),
				TasksFile:   "tasks.json",
				LogFile:     logFile,
			},
			logger:  logging.New(&console, logging.DefaultOptions()),
			hookOut: &console,
		}
	}

	a := newApp("")
	a.runHook(context.Background(), "add", 1)
	if !strings.Contains(console.String(), "post-save hook failed") {
		t.Fatalf("console should get the hook warning before the screen takes over, got %q", console.String())
	}

	console.Reset()
	a.quietForScreen()
	a.runHook(context.Background(), "add", 1)
	a.logger.Error("save failed")
	if console.Len() != 0 {
		t.Errorf("nothing should reach the console while the screen is up, got %q", console.String())
	}

	withFile := newApp(filepath.Join(t.TempDir(), "taskpad.log"))
	logger := withFile.logger
	withFile.quietForScreen()
	if withFile.logger != logger {
		t.Error("a configured log file should keep its logger")
	}
	if withFile.hookOut != io.Discard {
		t.Error("hook output should be discarded")
	}
}

func TestPick(t *testing.T) {
	s := store.New(store.Options{})
	a, _ := s.NewTask("a")
	b, _ := s.NewTask("b")
	list := []*task.Task{a, b}

	got, n, err := pick(list, " 2 ")
	if err != nil || got != b || n != 2 {
		t.Errorf("pick 2: %v %d %v", got, n, err)
	}
	if _, _, err := pick(nil, "1"); !errors.Is(err, errInvalidIndex) {
		t.Errorf("pick from empty list: %v", err)
	}
}

// testChdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
