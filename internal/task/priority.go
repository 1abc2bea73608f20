package task

import (
	"fmt"
	"strconv"
	"strings"
)

// Priority is a task priority level.
type Priority int

const (
	Low    Priority = 1
	Normal Priority = 2
	High   Priority = 3
)

// DefaultPriority is assigned when no priority is given.
const DefaultPriority = Normal

// Valid reports whether p is one of Low, Normal, or High.
func (p Priority) Valid() bool {
	return p >= Low && p <= High
}

// PriorityNames maps priority levels to display names.
type PriorityNames map[Priority]string

// DefaultPriorityNames returns the built-in name table.
func DefaultPriorityNames() PriorityNames {
	return PriorityNames{
		Low:    "Low",
		Normal: "Normal",
		High:   "High",
	}
}

// Name returns the display name for p, or "Unknown" if the table has none.
// A nil table falls back to the defaults.
func (n PriorityNames) Name(p Priority) string {
	if n == nil {
		n = DefaultPriorityNames()
	}
	if name, ok := n[p]; ok && name != "" {
		return name
	}
	return "Unknown"
}

// ParsePriority parses a priority given as a number (1-3) or as a name from
// the table, compared case-insensitively.
func ParsePriority(text string, names PriorityNames) (Priority, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidPriority)
	}
	if n, err := strconv.Atoi(s); err == nil {
		p := Priority(n)
		if !p.Valid() {
			return 0, fmt.Errorf("%w: %d", ErrInvalidPriority, n)
		}
		return p, nil
	}
	if names == nil {
		names = DefaultPriorityNames()
	}
	for p, name := range names {
		if p.Valid() && strings.EqualFold(name, s) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}
