package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nibzard/taskpad-go/internal/task"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultTasksFile   = "tasks.json"
	DefaultExportFile  = "tasks_export.txt"
	DefaultDueSoonDays = 30
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
)

// Config holds the full configuration for taskpad.
type Config struct {
	// Paths
	TasksFile  string `toml:"tasks_file"`
	ExportFile string `toml:"export_file"`
	SchemaFile string `toml:"schema_file"` // empty uses the bundled record schema

	// Classification
	DueSoonDays int `toml:"due_soon_days"`

	// Display
	PriorityNames PriorityNameTable `toml:"priority_names"`
	Color         bool              `toml:"color"`

	// Hooks
	HookCommand string `toml:"hook_command"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
	LogFile       string `toml:"log_file"`

	// Working directory relative paths resolve against (computed)
	WorkDir string `toml:"-"`
}

// PriorityNameTable maps priority levels, written as "1", "2", "3", to
// display names. Missing levels keep their default names.
type PriorityNameTable map[string]string

// Names converts the table to task.PriorityNames, filling gaps with the
// defaults.
func (p PriorityNameTable) Names() (task.PriorityNames, error) {
	names := task.DefaultPriorityNames()
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		level, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || !task.Priority(level).Valid() {
			return nil, fmt.Errorf("priority_names: unknown level %q (want 1, 2, or 3)", k)
		}
		name := strings.TrimSpace(p[k])
		if name == "" {
			return nil, fmt.Errorf("priority_names: empty name for level %s", k)
		}
		names[task.Priority(level)] = name
	}
	return names, nil
}

// Priorities returns the configured priority names.
func (c *Config) Priorities() task.PriorityNames {
	names, err := c.PriorityNames.Names()
	if err != nil {
		return task.DefaultPriorityNames()
	}
	return names
}

// LogSettings returns the logging values as plain strings and flags.
func (c *Config) LogSettings() (level, format string, timestamps, caller bool, file string) {
	return c.LogLevel, c.LogFormat, c.LogTimestamps, c.LogCaller, c.LogFile
}

// configFields returns the configurable field names for source tracking.
func configFields() []string {
	return []string{
		"tasks_file",
		"export_file",
		"schema_file",
		"due_soon_days",
		"priority_names",
		"color",
		"hook_command",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"log_file",
	}
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}

// Value returns the display form of the named field.
func (c *Config) Value(field string) string {
	switch field {
	case "tasks_file":
		return c.TasksFile
	case "export_file":
		return c.ExportFile
	case "schema_file":
		if c.SchemaFile == "" {
			return "(bundled)"
		}
		return c.SchemaFile
	case "due_soon_days":
		return strconv.Itoa(c.DueSoonDays)
	case "priority_names":
		names := c.Priorities()
		return fmt.Sprintf("1=%s 2=%s 3=%s", names.Name(task.Low), names.Name(task.Normal), names.Name(task.High))
	case "color":
		return strconv.FormatBool(c.Color)
	case "hook_command":
		return c.HookCommand
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return strconv.FormatBool(c.LogTimestamps)
	case "log_caller":
		return strconv.FormatBool(c.LogCaller)
	case "log_file":
		return c.LogFile
	default:
		return ""
	}
}
