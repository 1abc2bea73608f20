// Package taskfile reads and writes the task list file.
//
// The file is a JSON array of task records. Writing is atomic. Reading never
// fails: structural problems yield an empty list with Result.Problem set, and
// individual records that do not validate are skipped and reported in
// Result.Skipped while the rest of the list is kept.
package taskfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskpad-go/internal/task"
	"github.com/nibzard/taskpad-go/internal/utils"
)

// Structural problems absorbed by Decode.
var (
	ErrEmptyDocument = errors.New("empty document")
	ErrNotArray      = errors.New("document is not a list of tasks")
	ErrMalformed     = errors.New("malformed JSON")
)

// ValidationError is a record-level decode failure with its location.
type ValidationError struct {
	Path string // e.g. "[3].priority"
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Skipped describes a record that was dropped during decoding.
type Skipped struct {
	Index int
	Err   error
}

// Result is the outcome of decoding a task file.
type Result struct {
	// Tasks holds every record that decoded, in file order. Never nil.
	Tasks []*task.Task
	// Skipped lists records that failed validation.
	Skipped []Skipped
	// Problem is set when the document as a whole could not be used.
	Problem error
	// Missing is true when the file did not exist.
	Missing bool
	// Warnings are non-fatal notes, such as a schema fallback.
	Warnings []string
}

// Corrupt reports whether the document had content that could not be parsed
// as a task list.
func (r *Result) Corrupt() bool {
	return errors.Is(r.Problem, ErrNotArray) || errors.Is(r.Problem, ErrMalformed)
}

// Lossy reports whether saving Tasks back would discard data that was in the
// file.
func (r *Result) Lossy() bool {
	return r.Corrupt() || len(r.Skipped) > 0
}

// Options configures a Codec.
type Options struct {
	// SchemaPath replaces the bundled record schema. If it cannot be read or
	// compiled the bundled schema is used and a warning is recorded.
	SchemaPath string
	// Clock supplies "today" for records without a created date.
	Clock func() time.Time
}

// Codec decodes task files against a record schema.
type Codec struct {
	schema   *jsonschema.Schema
	clock    func() time.Time
	warnings []string
}

// NewCodec returns a codec configured by opts.
func NewCodec(opts Options) *Codec {
	c := &Codec{clock: opts.Clock}
	if opts.SchemaPath != "" {
		schema, err := compileSchemaFile(opts.SchemaPath)
		if err == nil {
			c.schema = schema
			return c
		}
		c.warnings = append(c.warnings, fmt.Sprintf("%v; using bundled schema", err))
	}

	schema, err := bundled()
	if err != nil {
		c.warnings = append(c.warnings, fmt.Sprintf("bundled schema unavailable: %v", err))
	}
	c.schema = schema
	return c
}

var defaultCodec = sync.OnceValue(func() *Codec {
	return NewCodec(Options{})
})

// Decode decodes data with the bundled schema.
func Decode(data []byte) *Result {
	return defaultCodec().Decode(data)
}

// Load reads path with the bundled schema.
func Load(path string) *Result {
	return defaultCodec().Load(path)
}

func (c *Codec) newResult() *Result {
	res := &Result{Tasks: []*task.Task{}}
	if len(c.warnings) > 0 {
		res.Warnings = append(res.Warnings, c.warnings...)
	}
	return res
}

// Load reads and decodes the task file at path. A missing file yields an
// empty list with Missing set.
func (c *Codec) Load(path string) *Result {
	data, err := os.ReadFile(path)
	if err != nil {
		res := c.newResult()
		if errors.Is(err, fs.ErrNotExist) {
			res.Missing = true
			return res
		}
		res.Problem = fmt.Errorf("read task file: %w", err)
		return res
	}
	return c.Decode(data)
}

// Decode parses a task document.
func (c *Codec) Decode(data []byte) *Result {
	res := c.newResult()

	if len(bytes.TrimSpace(data)) == 0 {
		res.Problem = ErrEmptyDocument
		return res
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			res.Problem = fmt.Errorf("%w: found %s", ErrNotArray, typeErr.Value)
		} else {
			res.Problem = fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return res
	}
	if raws == nil {
		res.Problem = fmt.Errorf("%w: found null", ErrNotArray)
		return res
	}

	for i, raw := range raws {
		t, err := c.decodeRecord(i, raw)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{Index: i, Err: err})
			continue
		}
		res.Tasks = append(res.Tasks, t)
	}
	return res
}

func (c *Codec) decodeRecord(i int, raw json.RawMessage) (*task.Task, error) {
	if c.schema != nil {
		var doc interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, &ValidationError{Path: recordPath(i, ""), Err: fmt.Errorf("%w: %v", task.ErrInvalidRecord, err)}
		}
		if err := c.schema.Validate(doc); err != nil {
			return nil, schemaError(i, err)
		}
	}

	var rec task.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, &ValidationError{Path: recordPath(i, ""), Err: fmt.Errorf("%w: %v", task.ErrInvalidRecord, err)}
	}

	var opts []task.Option
	if c.clock != nil {
		opts = append(opts, task.WithClock(c.clock))
	}
	t, err := task.FromRecord(rec, opts...)
	if err != nil {
		var fe *task.FieldError
		if errors.As(err, &fe) {
			return nil, &ValidationError{Path: recordPath(i, fe.Field), Err: fe.Err}
		}
		return nil, &ValidationError{Path: recordPath(i, ""), Err: err}
	}
	return t, nil
}

// schemaError reports the first leaf cause of a schema failure.
func schemaError(i int, err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &ValidationError{Path: recordPath(i, ""), Err: fmt.Errorf("%w: %v", task.ErrInvalidRecord, err)}
	}
	leaves := leafErrors(ve, nil)
	if len(leaves) == 0 {
		leaves = []*jsonschema.ValidationError{ve}
	}
	leaf := leaves[0]
	return &ValidationError{
		Path: recordPath(i, leaf.InstanceLocation),
		Err:  fmt.Errorf("%w: %s", task.ErrInvalidRecord, leaf.Message),
	}
}

var pointerEscapes = strings.NewReplacer("~1", "/", "~0", "~")

// recordPath names a location in record i as "[i].field[n]". field is a
// plain key or a JSON pointer relative to the record, e.g. "/priority".
func recordPath(i int, field string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d]", i)
	for _, tok := range strings.Split(strings.TrimPrefix(field, "#"), "/") {
		if tok == "" {
			continue
		}
		tok = pointerEscapes.Replace(tok)
		if _, err := strconv.Atoi(tok); err == nil {
			b.WriteString("[" + tok + "]")
			continue
		}
		b.WriteString("." + tok)
	}
	return b.String()
}

// Encode renders tasks as an indented JSON array, in order, with a trailing
// newline.
func Encode(tasks []*task.Task) ([]byte, error) {
	records := make([]task.Record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, t.Record())
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("marshal task file: %w", err)
	}
	return buf.Bytes(), nil
}

// Save atomically replaces the file at path with the encoded tasks.
func Save(path string, tasks []*task.Task) error {
	data, err := Encode(tasks)
	if err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}
