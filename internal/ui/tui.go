// Package ui provides the terminal interface and the category palette
// shared with the list command.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/taskpad-go/internal/export"
	"github.com/nibzard/taskpad-go/internal/logging"
	"github.com/nibzard/taskpad-go/internal/store"
	"github.com/nibzard/taskpad-go/internal/task"
	"github.com/nibzard/taskpad-go/internal/triage"
)

// Options configures the TUI.
type Options struct {
	// Names are the priority display names.
	Names task.PriorityNames
	// Color enables category colors.
	Color bool
	// ExportPath is where the export key writes.
	ExportPath string
	Logger     *log.Logger
	// AfterSave runs after every successful save with the action name.
	AfterSave func(action string)
}

// RunTUI starts the TUI over s. The store is saved on exit when it holds
// unsaved changes.
func RunTUI(ctx context.Context, s *store.Store, opts Options) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(s, opts)
	model.palette = NewPalette(os.Stdout, opts.Color)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if m, ok := finalModel.(*tuiModel); ok {
		if saveErr := m.flush(); saveErr != nil {
			return errors.Join(err, saveErr)
		}
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

type mode int

const (
	modeList mode = iota
	modeInput
	modeConfirm
	modeHelp
)

// prompt is a pending line of text input, edited in tuiModel.input.
type prompt struct {
	label    string
	onSubmit func(string)
}

// question is a pending yes/no confirmation.
type question struct {
	text  string
	onYes func()
}

// draft collects the fields of a task being added.
type draft struct {
	description string
	opts        []task.Option
}

type tuiModel struct {
	store      *store.Store
	classifier triage.Classifier
	names      task.PriorityNames
	palette    Palette
	exportPath string
	logger     *log.Logger
	afterSave  func(action string)

	tickInterval time.Duration
	now          time.Time
	rows         []*task.Task
	cursor       int
	offset       int
	height       int
	width        int

	showCompleted bool
	search        string

	mode     mode
	input    textinput.Model
	prompt   prompt
	question question

	status    string
	statusErr bool
}

type tickMsg time.Time

func newTUIModel(s *store.Store, opts Options) *tuiModel {
	exportPath := opts.ExportPath
	if exportPath == "" {
		exportPath = export.DefaultFile
	}
	ti := textinput.New()
	ti.CharLimit = 256

	m := &tuiModel{
		store:         s,
		input:         ti,
		classifier:    s.Classifier(),
		names:         opts.Names,
		palette:       Palette{enabled: opts.Color},
		exportPath:    exportPath,
		logger:        logging.OrDiscard(opts.Logger),
		afterSave:     opts.AfterSave,
		tickInterval:  time.Minute,
		showCompleted: true,
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.width = msg.Width
		m.scroll()
		return m, nil
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeInput:
			return m, m.updateInput(msg)
		case modeConfirm:
			m.updateConfirm(msg)
			return m, nil
		case modeHelp:
			m.mode = modeList
			return m, nil
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "home", "g":
		m.move(-len(m.rows))
	case "end", "G":
		m.move(len(m.rows))
	case " ", "enter":
		m.toggleCompleted()
	case "d", "delete":
		m.confirmDelete()
	case "+", "=":
		m.shiftPriority(1)
	case "-":
		m.shiftPriority(-1)
	case "e":
		m.editDescription()
	case "r":
		m.reschedule()
	case "u":
		m.clearDueDate()
	case "i":
		m.editInfo()
	case "a":
		m.startAdd()
	case "x":
		m.exportTasks()
	case "c":
		m.showCompleted = !m.showCompleted
		m.refresh()
	case "C":
		m.palette = m.palette.Toggle()
	case "/":
		m.ask("Search", m.search, func(text string) {
			m.search = strings.TrimSpace(text)
			m.refresh()
		})
	case "esc":
		if m.search != "" {
			m.search = ""
			m.refresh()
		}
	case "?", "h":
		m.mode = modeHelp
	}
	return m, nil
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		value := m.input.Value()
		m.input.Blur()
		m.mode = modeList
		if m.prompt.onSubmit != nil {
			m.prompt.onSubmit(value)
		}
		return nil
	case tea.KeyEsc:
		m.input.Blur()
		m.mode = modeList
		m.setStatus("Cancelled.")
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *tuiModel) updateConfirm(msg tea.KeyMsg) {
	m.mode = modeList
	switch msg.String() {
	case "y", "Y":
		if m.question.onYes != nil {
			m.question.onYes()
		}
	default:
		m.setStatus("Cancelled.")
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)
	if m.mode == modeHelp {
		writeHelp(&b)
		b.WriteString("Press any key to return\n")
		return b.String()
	}

	m.writeLegend(&b)
	m.writeFilters(&b)
	m.writeRows(&b)

	switch m.mode {
	case modeInput:
		b.WriteString(m.input.View() + "\n")
		b.WriteString("enter to confirm | esc to cancel\n")
	case modeConfirm:
		b.WriteString(m.question.text + " [y/N]\n")
	default:
		if m.status != "" {
			prefix := ""
			if m.statusErr {
				prefix = "Error: "
			}
			b.WriteString(prefix + m.status + "\n")
		}
		writeFooter(&b, m.tickInterval)
	}
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh recomputes the visible rows as of now, keeping the cursor on the
// same task when it is still shown.
func (m *tuiModel) refresh() {
	selected := m.selected()
	m.now = m.store.Now()
	m.rows = triage.Filter(m.store.Ordered(m.now), triage.FilterOptions{
		HideCompleted: !m.showCompleted,
		Search:        m.search,
	})
	if selected != nil {
		for i, t := range m.rows {
			if t == selected {
				m.cursor = i
				break
			}
		}
	}
	m.clamp()
}

func (m *tuiModel) selected() *task.Task {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

func (m *tuiModel) move(delta int) {
	m.cursor += delta
	m.clamp()
}

func (m *tuiModel) clamp() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scroll()
}

// scroll keeps the cursor inside the visible window.
func (m *tuiModel) scroll() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *tuiModel) visibleRows() int {
	if m.height <= 0 {
		return len(m.rows) + 1
	}
	// title, legend, filters, status and footer
	n := m.height - 9
	if n < 3 {
		n = 3
	}
	return n
}

func (m *tuiModel) setStatus(text string) {
	m.status = text
	m.statusErr = false
}

func (m *tuiModel) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m *tuiModel) ask(label, initial string, onSubmit func(string)) {
	m.mode = modeInput
	m.prompt = prompt{label: label, onSubmit: onSubmit}
	m.input.Prompt = label + ": "
	m.input.Width = 0
	if m.width > 0 {
		m.input.Width = m.width - len(m.input.Prompt) - 1
	}
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *tuiModel) confirm(text string, onYes func()) {
	m.mode = modeConfirm
	m.question = question{text: text, onYes: onYes}
}

// commit saves the store after a change and recomputes the order.
func (m *tuiModel) commit(action, message string) {
	m.store.Touch()
	if err := m.store.Save(); err != nil {
		m.logger.Error("save failed", "action", action, "err", err)
		m.setError(err)
		m.refresh()
		return
	}
	if m.afterSave != nil {
		m.afterSave(action)
	}
	m.setStatus(message)
	m.refresh()
}

// flush saves pending changes, used on exit.
func (m *tuiModel) flush() error {
	if !m.store.Dirty() {
		return nil
	}
	if err := m.store.Save(); err != nil {
		return err
	}
	if m.afterSave != nil {
		m.afterSave("save")
	}
	return nil
}

// withSelected runs fn on the task under the cursor.
func (m *tuiModel) withSelected(fn func(*task.Task)) {
	t := m.selected()
	if t == nil {
		m.setStatus("No task selected.")
		return
	}
	fn(t)
}

func (m *tuiModel) toggleCompleted() {
	m.withSelected(func(t *task.Task) {
		if t.Completed() {
			if err := t.Reopen(); err != nil {
				m.setError(err)
				return
			}
			m.commit("reopen", "Reopened: "+t.Description())
			return
		}
		if err := t.MarkCompleted(); err != nil {
			m.setError(err)
			return
		}
		m.commit("done", "Completed: "+t.Description())
	})
}

func (m *tuiModel) confirmDelete() {
	m.withSelected(func(t *task.Task) {
		m.confirm(fmt.Sprintf("Delete %q?", t.Description()), func() {
			if err := m.store.Remove(t); err != nil {
				m.setError(err)
				return
			}
			m.commit("delete", "Deleted: "+t.Description())
		})
	})
}

func (m *tuiModel) shiftPriority(delta int) {
	m.withSelected(func(t *task.Task) {
		p := t.Priority() + task.Priority(delta)
		if !p.Valid() {
			m.setStatus(fmt.Sprintf("Priority is already %s.", m.names.Name(t.Priority())))
			return
		}
		if err := t.UpdatePriority(p); err != nil {
			m.setError(err)
			return
		}
		m.commit("priority", fmt.Sprintf("Priority set to %s.", m.names.Name(p)))
	})
}

func (m *tuiModel) editDescription() {
	m.withSelected(func(t *task.Task) {
		m.ask("Description", t.Description(), func(text string) {
			if err := t.UpdateDescription(text); err != nil {
				m.setError(err)
				return
			}
			m.commit("describe", "Description updated.")
		})
	})
}

func (m *tuiModel) reschedule() {
	m.withSelected(func(t *task.Task) {
		initial := ""
		if d, ok := t.DueDate(); ok {
			initial = task.FormatDate(d)
		}
		m.ask("Due date (DD/MM/YY)", initial, func(text string) {
			if strings.TrimSpace(text) == "" {
				t.ClearDueDate()
				m.commit("due", "Due date cleared.")
				return
			}
			if err := t.Reschedule(text); err != nil {
				m.setError(err)
				return
			}
			m.commit("due", "Due date set.")
		})
	})
}

func (m *tuiModel) clearDueDate() {
	m.withSelected(func(t *task.Task) {
		if _, ok := t.DueDate(); !ok {
			m.setStatus("Task has no due date.")
			return
		}
		t.ClearDueDate()
		m.commit("due", "Due date cleared.")
	})
}

func (m *tuiModel) editInfo() {
	m.withSelected(func(t *task.Task) {
		m.ask("Additional info", t.AdditionalInfo(), func(text string) {
			t.UpdateAdditionalInfo(text)
			m.commit("info", "Additional info updated.")
		})
	})
}

// startAdd walks through description, due date, priority and info prompts.
func (m *tuiModel) startAdd() {
	d := &draft{}
	m.ask("New task", "", func(text string) {
		d.description = strings.TrimSpace(text)
		if d.description == "" {
			m.setError(task.ErrEmptyDescription)
			return
		}
		m.ask("Due date (DD/MM/YY, blank for none)", "", func(text string) {
			if strings.TrimSpace(text) != "" {
				due, err := task.ParseDate(text)
				if err != nil {
					m.setError(err)
					return
				}
				d.opts = append(d.opts, task.WithDueDate(due))
			}
			m.ask("Priority (1-3, blank for Normal)", "", func(text string) {
				if strings.TrimSpace(text) != "" {
					p, err := task.ParsePriority(text, m.names)
					if err != nil {
						m.setError(err)
						return
					}
					d.opts = append(d.opts, task.WithPriority(p))
				}
				m.ask("Additional info (optional)", "", func(text string) {
					d.opts = append(d.opts, task.WithAdditionalInfo(text))
					m.finishAdd(d)
				})
			})
		})
	})
}

func (m *tuiModel) finishAdd(d *draft) {
	add := func() {
		t, err := m.store.NewTask(d.description, d.opts...)
		if err != nil {
			m.setError(err)
			return
		}
		m.store.Append(t)
		m.commit("add", "Added: "+t.Description())
		m.focus(t)
	}
	if m.store.FindByDescription(d.description) {
		m.confirm(fmt.Sprintf("A task named %q already exists. Add it anyway?", d.description), add)
		return
	}
	add()
}

func (m *tuiModel) focus(t *task.Task) {
	for i, row := range m.rows {
		if row == t {
			m.cursor = i
			m.scroll()
			return
		}
	}
}

func (m *tuiModel) exportTasks() {
	n, err := export.Write(m.exportPath, m.store.Ordered(m.store.Now()), m.names)
	if err != nil {
		m.setError(err)
		return
	}
	m.logger.Info("exported tasks", "path", m.exportPath, "count", n)
	m.setStatus(fmt.Sprintf("Exported %d task(s) to %s", n, m.exportPath))
}

func writeTitle(b *strings.Builder) {
	title := "taskpad"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func (m *tuiModel) writeLegend(b *strings.Builder) {
	entries := m.classifier.Legend()
	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		labels = append(labels, m.palette.Render(e.Category, e.Label))
	}
	b.WriteString(strings.Join(labels, "  ") + "\n\n")
}

func (m *tuiModel) writeFilters(b *strings.Builder) {
	var parts []string
	if !m.showCompleted {
		parts = append(parts, "completed hidden")
	}
	if m.search != "" {
		parts = append(parts, fmt.Sprintf("search %q (esc to clear)", m.search))
	}
	if len(parts) > 0 {
		b.WriteString("Filter: " + strings.Join(parts, ", ") + "\n\n")
	}
}

func (m *tuiModel) writeRows(b *strings.Builder) {
	if len(m.rows) == 0 {
		b.WriteString("  No tasks. Press a to add one.\n\n")
		return
	}
	end := m.offset + m.visibleRows()
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		t := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := m.palette.Render(m.classifier.Classify(t, m.now), t.Render(m.names))
		b.WriteString(cursor + line + "\n")
	}
	if end < len(m.rows) || m.offset > 0 {
		b.WriteString(fmt.Sprintf("  (%d-%d of %d)\n", m.offset+1, end, len(m.rows)))
	}
	b.WriteString("\n")
	if t := m.selected(); t != nil && t.AdditionalInfo() != "" {
		b.WriteString("  Info: " + t.AdditionalInfo() + "\n\n")
	}
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up/k, down/j  Move\n")
	b.WriteString("  g, G          First, last task\n")
	b.WriteString("  space, enter  Complete or reopen\n")
	b.WriteString("  a             Add a task\n")
	b.WriteString("  d, delete     Delete (asks first)\n")
	b.WriteString("  +, -          Raise, lower priority\n")
	b.WriteString("  e             Edit description\n")
	b.WriteString("  r             Reschedule (DD/MM/YY)\n")
	b.WriteString("  u             Clear due date\n")
	b.WriteString("  i             Edit additional info\n")
	b.WriteString("  x             Export outstanding tasks\n")
	b.WriteString("  c             Show or hide completed tasks\n")
	b.WriteString("  C             Toggle colors\n")
	b.WriteString("  /             Search, esc clears\n")
	b.WriteString("  ?, h          Toggle this help screen\n")
	b.WriteString("  q, ctrl+c     Quit\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(fmt.Sprintf("Press ? for help | q to quit | Reordering every %s\n", interval))
}
