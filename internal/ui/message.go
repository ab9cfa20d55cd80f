package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/session"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionResolved MsgKind = iota
	MsgThemeResolved
	MsgThemeChanged
	MsgLoggedOut
)

type themeResult struct {
	theme models.Theme
	err   error
}

// sessionResolvedMsg is the constructor for [MsgSessionResolved]
func sessionResolvedMsg(outcome session.Outcome) Msg {
	return Msg{kind: MsgSessionResolved, data: outcome}
}

// themeResolvedMsg is the constructor for [MsgThemeResolved]
func themeResolvedMsg(theme models.Theme, err error) Msg {
	return Msg{kind: MsgThemeResolved, data: themeResult{theme, err}}
}

// themeChangedMsg is the constructor for [MsgThemeChanged]
func themeChangedMsg(theme models.Theme, err error) Msg {
	return Msg{kind: MsgThemeChanged, data: themeResult{theme, err}}
}

// loggedOutMsg is the constructor for [MsgLoggedOut]
func loggedOutMsg(err error) Msg {
	return Msg{kind: MsgLoggedOut, data: err}
}
