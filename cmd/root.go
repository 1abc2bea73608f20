// Package cmd implements the CLI command structure for taskpad.
package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskpad-go/internal/config"
	"github.com/nibzard/taskpad-go/internal/hooks"
	"github.com/nibzard/taskpad-go/internal/logging"
	"github.com/nibzard/taskpad-go/internal/store"
	"github.com/nibzard/taskpad-go/internal/task"
	"github.com/nibzard/taskpad-go/internal/taskfile"
	"github.com/nibzard/taskpad-go/internal/triage"
)

// Version is set via ldflags at build time.
var Version = "dev"

// errInvalidIndex is returned for a task number outside the listing.
var errInvalidIndex = errors.New("invalid task number")

// Run executes the taskpad CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

// app carries the state shared by every subcommand.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	logger  *log.Logger
	names   task.PriorityNames

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	// hookOut receives hook output; the TUI silences it.
	hookOut io.Writer

	store  *store.Store
	loaded *taskfile.Result
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("taskpad", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	cfg := cws.Config
	logger, closer, err := logging.Open(logging.FromConfig(cfg.LogSettings()), stderr)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closer.Close()

	a := &app{
		cfg:     cfg,
		sources: cws,
		logger:  logger,
		names:   cfg.Priorities(),
		in:      bufio.NewReader(stdin),
		out:     stdout,
		errOut:  stderr,
		hookOut: stdout,
	}

	// Determine the subcommand; a bare invocation lists tasks.
	subcommand := "ls"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	// Execute the subcommand
	switch subcommand {
	case "ls", "list":
		return a.lsCommand(remainingArgs)
	case "add":
		return a.addCommand(ctx, remainingArgs)
	case "done":
		return a.doneCommand(ctx, remainingArgs)
	case "reopen":
		return a.reopenCommand(ctx, remainingArgs)
	case "due":
		return a.dueCommand(ctx, remainingArgs)
	case "priority":
		return a.priorityCommand(ctx, remainingArgs)
	case "describe":
		return a.describeCommand(ctx, remainingArgs)
	case "info":
		return a.infoCommand(ctx, remainingArgs)
	case "show":
		return a.showCommand(remainingArgs)
	case "rm", "delete":
		return a.rmCommand(ctx, remainingArgs)
	case "restore":
		return a.restoreCommand(ctx, remainingArgs)
	case "purge":
		return a.purgeCommand(ctx, remainingArgs)
	case "export":
		return a.exportCommand(remainingArgs)
	case "doctor":
		return a.doctorCommand(remainingArgs)
	case "init-config":
		return a.initConfigCommand(remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand(stdout)
	case "help", "--help", "-h":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openStore loads the task file once per invocation.
func (a *app) openStore() *store.Store {
	if a.store != nil {
		return a.store
	}
	a.store = store.New(store.Options{
		Path:       a.cfg.TasksFile,
		SchemaPath: a.cfg.SchemaFile,
		Classifier: triage.NewClassifier(a.cfg.DueSoonDays),
		Logger:     a.logger,
	})
	a.loaded = a.store.Load()
	return a.store
}

// save writes the task file and runs the post-save hook. A failing hook is
// logged and does not fail the command.
func (a *app) save(ctx context.Context, action string) error {
	s := a.openStore()
	if err := s.Save(); err != nil {
		return err
	}
	a.runHook(ctx, action, len(s.Tasks()))
	return nil
}

func (a *app) runHook(ctx context.Context, action string, count int) {
	result, err := hooks.Invoke(ctx, hooks.Options{
		Command:   a.cfg.HookCommand,
		TasksFile: a.cfg.TasksFile,
		Action:    action,
		Count:     count,
		WorkDir:   a.cfg.WorkDir,
		Stdout:    a.hookOut,
		Stderr:    a.hookOut,
	})
	if err != nil {
		a.logger.Warn("post-save hook failed", "action", action, "exit", result.ExitCode, "err", err)
		return
	}
	if result.Ran {
		a.logger.Debug("post-save hook ran", "action", action, "command", result.Command)
	}
}

// ordered returns the active tasks in listing order as of now.
func (a *app) ordered() []*task.Task {
	s := a.openStore()
	return s.Ordered(s.Now())
}

// pick resolves a 1-based task number against list.
func pick(list []*task.Task, arg string) (*task.Task, int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %q", errInvalidIndex, arg)
	}
	if n < 1 || n > len(list) {
		if len(list) == 0 {
			return nil, 0, fmt.Errorf("%w: %d (no tasks)", errInvalidIndex, n)
		}
		return nil, 0, fmt.Errorf("%w: %d (expected 1-%d)", errInvalidIndex, n, len(list))
	}
	return list[n-1], n, nil
}

// confirm asks a yes/no question. Anything but y or yes means no.
func (a *app) confirm(question string) bool {
	fmt.Fprintf(a.out, "%s [y/N]: ", question)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(a.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "taskpad version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "taskpad - a personal task list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskpad [global options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  ls                      List tasks (default command)")
	fmt.Fprintln(w, "  add <description>       Add a task")
	fmt.Fprintln(w, "  done <n>                Mark task n completed")
	fmt.Fprintln(w, "  reopen <n>              Mark task n ongoing again")
	fmt.Fprintln(w, "  due <n> <DD/MM/YY|none> Set or clear the due date")
	fmt.Fprintln(w, "  priority <n> <level>    Set the priority (1-3 or a name)")
	fmt.Fprintln(w, "  describe <n> <text>     Replace the description")
	fmt.Fprintln(w, "  info <n> [text]         Set additional info (blank clears)")
	fmt.Fprintln(w, "  show <n>                Show every field of a task")
	fmt.Fprintln(w, "  rm <n>                  Delete a task (it can be restored)")
	fmt.Fprintln(w, "  restore <n>             Restore deleted task n (see ls -all)")
	fmt.Fprintln(w, "  purge                   Permanently remove deleted tasks")
	fmt.Fprintln(w, "  export [path]           Write outstanding tasks to a text file")
	fmt.Fprintln(w, "  doctor                  Check config and task file health")
	fmt.Fprintln(w, "  init-config [path]      Write an example config file")
	fmt.Fprintln(w, "  tui                     Launch terminal UI")
	fmt.Fprintln(w, "  version                 Show version information")
	fmt.Fprintln(w, "  help                    Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Task numbers are positions in the current ls order.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options (use with 'ls' command):")
	fmt.Fprintln(w, "  -all         Also list deleted tasks")
	fmt.Fprintln(w, "  -completed   Include completed tasks (default true)")
	fmt.Fprintln(w, "  -search text Only tasks whose description contains text")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options (use with 'add' command):")
	fmt.Fprintln(w, "  -due DD/MM/YY   Due date")
	fmt.Fprintln(w, "  -priority level Priority, 1-3 or a name (default 2)")
	fmt.Fprintln(w, "  -info text      Additional info")
	fmt.Fprintln(w, "  -yes            Add even if a task with the same description exists")
}
