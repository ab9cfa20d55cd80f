package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/session"
	"github.com/desertthunder/travelers/internal/theme"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	SessionView
)

const (
	defaultWidth  = 60
	defaultHeight = 14
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	boot    *session.Bootstrapper
	themes  *theme.Synchronizer
	logout  LogoutFunc
	palette *Palette
	outcome session.Outcome
	status  string
	err     error
	width   int
	height  int
	spinner spinner.Model
	details list.Model
	help    help.Model
	keys    keyMap
}

// LogoutFunc ends the session on the backend and forgets it locally, even when the backend call fails.
type LogoutFunc func(ctx context.Context) error

// NewModel creates a TUI model. palette must be the Document the synchronizer applies themes to.
func NewModel(ctx context.Context, boot *session.Bootstrapper, themes *theme.Synchronizer, logout LogoutFunc, palette *Palette) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	details := list.New(nil, list.NewDefaultDelegate(), defaultWidth, defaultHeight)
	details.Title = "Profile"
	details.SetShowHelp(false)
	details.SetShowStatusBar(false)
	details.SetFilteringEnabled(false)

	return &Model{
		ctx:     ctx,
		view:    LoadingView,
		boot:    boot,
		themes:  themes,
		logout:  logout,
		palette: palette,
		width:   defaultWidth,
		height:  defaultHeight,
		spinner: s,
		details: details,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the spinner, the session bootstrap and the theme resolution, which waits for the session.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.bootstrap(), m.resolveTheme())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.details.SetSize(msg.Width-4, max(msg.Height-10, 4))
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		if m.view != LoadingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.details, cmd = m.details.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSessionResolved:
		m.outcome = msg.data.(session.Outcome)
		m.view = SessionView
		m.refreshDetails()

	case MsgThemeResolved:
		res := msg.data.(themeResult)
		if res.err != nil {
			m.err = res.err
		}

	case MsgThemeChanged:
		res := msg.data.(themeResult)
		switch {
		case errors.Is(res.err, theme.ErrNotReady):
			m.status = "Theme is still loading"
		case res.err != nil:
			m.err = res.err
		default:
			m.status = fmt.Sprintf("Switched to %s theme", res.theme)
		}

	case MsgLoggedOut:
		err, _ := msg.data.(error)
		if err != nil {
			m.status = "Signed out locally; the server could not be reached"
		} else {
			m.status = "Signed out"
		}
		m.refreshDetails()
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case m.view != SessionView:
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		return m, m.toggleTheme()
	case key.Matches(msg, m.keys.logout):
		if !m.boot.IsAuthenticated() {
			m.status = "Not signed in"
			return m, nil
		}
		return m, m.signOut()
	}

	var cmd tea.Cmd
	m.details, cmd = m.details.Update(msg)
	return m, cmd
}

func (m *Model) refreshDetails() {
	m.details.SetItems(profileItems(m.boot.Store().User()))
}

func (m *Model) bootstrap() tea.Cmd {
	return func() tea.Msg {
		outcome := m.boot.Run(m.ctx, nil)
		if outcome == session.Skipped {
			outcome = m.boot.Outcome()
		}
		return sessionResolvedMsg(outcome)
	}
}

func (m *Model) resolveTheme() tea.Cmd {
	return func() tea.Msg {
		t, err := m.themes.Resolve(m.ctx)
		return themeResolvedMsg(t, err)
	}
}

func (m *Model) toggleTheme() tea.Cmd {
	return func() tea.Msg {
		t, err := m.themes.Toggle()
		return themeChangedMsg(t, err)
	}
}

func (m *Model) signOut() tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg(m.logout(m.ctx))
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	styles := m.palette.current()

	if m.view == LoadingView {
		return fmt.Sprintf("%s Restoring session...\n\n%s", m.spinner.View(), m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Travelers"))
	b.WriteString("\n")

	if user := m.boot.Store().User(); user != nil {
		b.WriteString(styles.ok.Render("✓ Signed in as " + user.DisplayName()))
		b.WriteString("\n\n")
		b.WriteString(m.details.View())
	} else {
		b.WriteString(styles.warn.Render("Not signed in"))
		b.WriteString("\n")
		b.WriteString(styles.help.Render("Run `travelers login` to sign in."))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Theme: %s\n", m.themeLabel())
	b.WriteString(styles.help.Render("Session: " + m.outcome.String()))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) themeLabel() string {
	if m.themes.State() != theme.Ready {
		return "resolving..."
	}
	return string(m.palette.Theme())
}

// Theme returns the theme currently shown.
func (m *Model) Theme() models.Theme {
	return m.palette.Theme()
}
