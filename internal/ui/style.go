package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/nibzard/taskpad-go/internal/triage"
)

// categoryColors maps each category's palette name to a terminal color.
var categoryColors = map[string]lipgloss.TerminalColor{
	"red":    lipgloss.AdaptiveColor{Light: "1", Dark: "9"},
	"orange": lipgloss.Color("208"),
	"blue":   lipgloss.AdaptiveColor{Light: "4", Dark: "12"},
	"white":  lipgloss.AdaptiveColor{Light: "0", Dark: "15"},
	"green":  lipgloss.AdaptiveColor{Light: "2", Dark: "10"},
}

// Palette renders text in category colors. A disabled palette renders
// everything unstyled.
type Palette struct {
	renderer *lipgloss.Renderer
	enabled  bool
}

// NewPalette returns a palette writing for w. Colors are only used when
// enabled is true and w is a terminal.
func NewPalette(w io.Writer, enabled bool) Palette {
	return Palette{
		renderer: lipgloss.NewRenderer(w),
		enabled:  enabled && IsTTY(w),
	}
}

// Enabled reports whether the palette emits colors.
func (p Palette) Enabled() bool {
	return p.enabled
}

// Toggle returns a copy of p with colors switched on or off.
func (p Palette) Toggle() Palette {
	p.enabled = !p.enabled
	return p
}

// Category returns the style for c.
func (p Palette) Category(c triage.Category) lipgloss.Style {
	style := p.style()
	if !p.enabled {
		return style
	}
	if color, ok := categoryColors[c.Color()]; ok {
		style = style.Foreground(color)
	}
	return style
}

// Render styles text for category c.
func (p Palette) Render(c triage.Category, text string) string {
	if !p.enabled {
		return text
	}
	return p.Category(c).Render(text)
}

func (p Palette) style() lipgloss.Style {
	if p.renderer == nil {
		return lipgloss.NewStyle()
	}
	return p.renderer.NewStyle()
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
