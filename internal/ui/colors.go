package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/travelers/internal/models"
)

// scheme is one set of colors: title, ok, error, warning, muted text.
type scheme struct {
	title, ok, err, warn, muted string
}

var schemes = map[models.Theme]scheme{
	models.ThemeLight: {title: "#2F7D6D", ok: "#1B7F3B", err: "#C62828", warn: "#B26A00", muted: "#616E7C"},
	models.ThemeDark:  {title: "#5FC4AD", ok: "#04B575", err: "#FF5F5F", warn: "#FFA500", muted: "#9AA5B1"},
}

// styleSet is a simple stylesheet built with named [lipgloss.Style] fields
type styleSet struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func newStyleSet(s scheme) styleSet {
	return styleSet{
		title: NewBold(s.title).MarginBottom(1),
		ok:    NewBold(s.ok),
		err:   NewBold(s.err),
		warn:  NewStyle(s.warn),
		help:  NewEm(s.muted),
	}
}

// Palette is the terminal's rendered document: the theme synchronizer applies themes to it and the views read
// their styles from it.
type Palette struct {
	mu     sync.RWMutex
	theme  models.Theme
	styles styleSet
}

// NewPalette creates a palette showing t, or the default theme when t is unknown.
func NewPalette(t models.Theme) *Palette {
	p := &Palette{}
	p.ApplyTheme(t)
	return p
}

// ApplyTheme switches the palette's colors.
func (p *Palette) ApplyTheme(t models.Theme) {
	s, ok := schemes[t]
	if !ok {
		t = models.DefaultTheme
		s = schemes[t]
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.theme = t
	p.styles = newStyleSet(s)
}

// Theme returns the applied theme.
func (p *Palette) Theme() models.Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.theme
}

func (p *Palette) current() styleSet {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.styles
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
