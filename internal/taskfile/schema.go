package taskfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const recordSchemaURL = "task-record.json"

// RecordSchema is the bundled JSON Schema every persisted record is checked
// against before it is turned into a task.
const RecordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "taskpad task record",
  "type": "object",
  "required": ["description", "completed", "priority"],
  "properties": {
    "description": {"type": "string", "minLength": 1},
    "completed": {"type": "boolean"},
    "due_date": {
      "type": ["string", "null"],
      "pattern": "^[0-9]{1,2}/[0-9]{1,2}/[0-9]{2}$"
    },
    "priority": {"enum": [1, 2, 3]},
    "additional_info": {"type": ["string", "null"]},
    "created_date": {
      "type": ["string", "null"],
      "pattern": "^[0-9]{1,2}/[0-9]{1,2}/[0-9]{2}$"
    },
    "deleted": {"type": "boolean"}
  }
}`

var (
	bundledOnce   sync.Once
	bundledSchema *jsonschema.Schema
	bundledErr    error
)

// bundled compiles RecordSchema once per process.
func bundled() (*jsonschema.Schema, error) {
	bundledOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(recordSchemaURL, strings.NewReader(RecordSchema)); err != nil {
			bundledErr = fmt.Errorf("add bundled schema: %w", err)
			return
		}
		bundledSchema, bundledErr = compiler.Compile(recordSchemaURL)
	})
	return bundledSchema, bundledErr
}

// compileSchemaFile compiles a user-supplied record schema.
func compileSchemaFile(path string) (*jsonschema.Schema, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("schema file not found: %s", absPath)
		}
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	schema, err := compiler.Compile(absPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema file: %w", err)
	}
	return schema, nil
}

// leafErrors flattens a schema validation error into its leaf causes.
func leafErrors(err *jsonschema.ValidationError, out []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if err == nil {
		return out
	}
	if len(err.Causes) == 0 {
		return append(out, err)
	}
	for _, cause := range err.Causes {
		out = leafErrors(cause, out)
	}
	return out
}
