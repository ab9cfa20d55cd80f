package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/desertthunder/travelers/internal/shared"
)

// readLine prints label and reads one line from the runner's input.
func (r *Runner) readLine(label string) (string, error) {
	r.writePlain("%s", label)
	line, err := r.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads a password without echo when the input is a terminal.
func (r *Runner) readPassword(label string) (string, error) {
	if f, ok := r.input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.writePlain("%s", label)
		b, err := term.ReadPassword(int(f.Fd()))
		r.writePlain("\n")
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	return r.readLine(label)
}

// valueOrPrompt returns value, asking for it when empty.
func (r *Runner) valueOrPrompt(value, label string, secret bool) (string, error) {
	if value != "" {
		return value, nil
	}

	var err error
	if secret {
		value, err = r.readPassword(label)
	} else {
		value, err = r.readLine(label)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, strings.TrimSuffix(strings.TrimSpace(label), ":"))
	}
	return value, nil
}
