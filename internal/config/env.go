package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nibzard/taskpad-go/internal/utils"
)

// loadFromEnv overrides config from TASKPAD_* environment variables and
// records their source.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	set := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv("TASKPAD_TASKS"); v != "" {
		cfg.TasksFile = v
		set("tasks_file")
	}
	if v := os.Getenv("TASKPAD_EXPORT"); v != "" {
		cfg.ExportFile = v
		set("export_file")
	}
	if v := os.Getenv("TASKPAD_SCHEMA"); v != "" {
		cfg.SchemaFile = v
		set("schema_file")
	}
	if v := os.Getenv("TASKPAD_DUE_SOON_DAYS"); v != "" {
		days, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("TASKPAD_DUE_SOON_DAYS: %q is not a number", v)
		}
		cfg.DueSoonDays = days
		set("due_soon_days")
	}
	if v := os.Getenv("TASKPAD_PRIORITY_NAMES"); v != "" {
		// Low,Normal,High
		names := utils.SplitAndTrim(v, ",")
		if len(names) != 3 {
			return fmt.Errorf("TASKPAD_PRIORITY_NAMES: want three comma-separated names, got %q", v)
		}
		cfg.PriorityNames = PriorityNameTable{"1": names[0], "2": names[1], "3": names[2]}
		set("priority_names")
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.Color = false
		set("color")
	}
	if v := os.Getenv("TASKPAD_COLOR"); v != "" {
		cfg.Color = boolFromString(v)
		set("color")
	}
	if v := os.Getenv("TASKPAD_HOOK"); v != "" {
		cfg.HookCommand = v
		set("hook_command")
	}

	// Logging configuration
	if v := os.Getenv("TASKPAD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		set("log_level")
	}
	if v := os.Getenv("TASKPAD_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		set("log_format")
	}
	if v := os.Getenv("TASKPAD_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		set("log_timestamps")
	}
	if v := os.Getenv("TASKPAD_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		set("log_caller")
	}
	if v := os.Getenv("TASKPAD_LOG_FILE"); v != "" {
		cfg.LogFile = v
		set("log_file")
	}
	return nil
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
