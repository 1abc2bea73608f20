package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskpad configuration file
# Values can be overridden by TASKPAD_* environment variables or CLI flags.

# Task list (relative paths resolve against the working directory)
tasks_file = "tasks.json"

# Plain-text export of outstanding tasks
export_file = "tasks_export.txt"

# Optional JSON Schema for task records; empty uses the bundled schema
# schema_file = "task-record.schema.json"

# A due date within this many days counts as "due soon"
due_soon_days = 30

# Color the task list by category (the NO_COLOR env var also disables it)
color = true

# Command to run after every save. It receives the task file path, the
# action that caused the save, and the number of tasks as arguments.
# hook_command = "/path/to/hook.sh"

# Logging
log_level = "warn"       # debug, info, warn, error
log_format = "text"      # text, json, logfmt
log_timestamps = false
log_caller = false
# log_file = "~/.taskpad/taskpad.log"

# Display names for priority levels
[priority_names]
1 = "Low"
2 = "Normal"
3 = "High"
`
}
