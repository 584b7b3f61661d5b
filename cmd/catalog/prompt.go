package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// terminalFD reports the descriptor of stdin when it is an interactive
// terminal.
func (a *app) terminalFD() (int, bool) {
	f, ok := a.stdin.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// promptLine asks for one line of input. Prompts go to stderr so stdout
// stays clean for command output.
func (a *app) promptLine(prompt string) (string, error) {
	fmt.Fprint(a.stderr, prompt)

	line, err := a.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("no input: stdin closed")
		}
		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// promptSecret reads a password without echo on a terminal. When stdin is
// piped it reads the next line instead.
func (a *app) promptSecret(prompt string) (string, error) {
	fd, interactive := a.terminalFD()
	if !interactive {
		line, err := a.lines.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				return "", errors.New("no input: stdin closed")
			}
			return "", fmt.Errorf("reading input: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(a.stderr, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(a.stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	return string(secret), nil
}
