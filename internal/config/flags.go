package config

import (
	"flag"
)

// parseFlags defines the global flags on fs, parses args, and applies the
// flags that were explicitly set. Remaining arguments stay in fs.Args().
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("taskpad", flag.ContinueOnError)
	}

	var (
		tasksFile, exportFile, schemaFile, hook string
		dueSoon                                 int
		color, noColor                          bool
		logLevel, logFormat, logFile            string
		logTimestamps, logCaller                bool
	)

	// Paths
	fs.StringVar(&tasksFile, "tasks", cfg.TasksFile, "Path to the task file")
	fs.StringVar(&exportFile, "export-file", cfg.ExportFile, "Path to the export file")
	fs.StringVar(&schemaFile, "schema", cfg.SchemaFile, "Path to a record JSON Schema (default: bundled)")

	// Classification and display
	fs.IntVar(&dueSoon, "due-soon", cfg.DueSoonDays, "Days ahead a due date counts as due soon")
	fs.BoolVar(&color, "color", cfg.Color, "Color output by task category")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Hooks
	fs.StringVar(&hook, "hook", cfg.HookCommand, "Command to run after each save")

	// Logging
	fs.StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&logFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&logTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&logCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")
	fs.StringVar(&logFile, "log-file", cfg.LogFile, "Write logs to this file instead of stderr")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Map flag names to source field names
	flagToSource := map[string]string{
		"tasks":          "tasks_file",
		"export-file":    "export_file",
		"schema":         "schema_file",
		"due-soon":       "due_soon_days",
		"color":          "color",
		"no-color":       "color",
		"hook":           "hook_command",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"log-caller":     "log_caller",
		"log-file":       "log_file",
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tasks":
			cfg.TasksFile = tasksFile
		case "export-file":
			cfg.ExportFile = exportFile
		case "schema":
			cfg.SchemaFile = schemaFile
		case "due-soon":
			cfg.DueSoonDays = dueSoon
		case "color":
			cfg.Color = color
		case "hook":
			cfg.HookCommand = hook
		case "log-level":
			cfg.LogLevel = logLevel
		case "log-format":
			cfg.LogFormat = logFormat
		case "log-timestamps":
			cfg.LogTimestamps = logTimestamps
		case "log-caller":
			cfg.LogCaller = logCaller
		case "log-file":
			cfg.LogFile = logFile
		}
		if sources != nil {
			if field, ok := flagToSource[f.Name]; ok {
				sources[field] = SourceFlag
			}
		}
	})

	// -no-color wins over -color when both are given.
	if noColor {
		cfg.Color = false
	}
	return nil
}
