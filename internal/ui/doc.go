// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI shows the state of the local session:
//  1. [LoadingView] : a spinner while the session bootstrapper runs
//  2. [SessionView] : the signed-in profile (or a sign-in hint), the session outcome and the current theme
//
// The [Palette] is the terminal's document: the theme synchronizer applies the resolved theme to it and every
// view renders with its light or dark styles.
//
// Keyboard: t toggles the theme, l logs out, q quits, with contextual help displayed via charmbracelet/bubbles/help.
package ui
