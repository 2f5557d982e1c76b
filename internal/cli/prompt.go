// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - Interactive credential prompts.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// Prompter asks the user for login credentials.
type Prompter interface {
	Username(prompt string) (string, error)
	Password(prompt string) (string, error)
}

// ErrPromptAborted is returned when the user cancels a prompt.
var ErrPromptAborted = errors.New("prompt aborted")

// =============================================================================
// TERMINAL PROMPTER
// =============================================================================

// termPrompter reads the username with line editing and the password with
// echo disabled.
type termPrompter struct {
	out io.Writer
}

func (p termPrompter) Username(prompt string) (string, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	s, err := line.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrPromptAborted
	}
	return strings.TrimSpace(s), err
}

func (p termPrompter) Password(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// =============================================================================
// LINE PROMPTER
// =============================================================================

// linePrompter reads one line per answer, for piped input:
//
//	printf 'marta\nsecret\n' | shiftlog login
type linePrompter struct {
	r *bufio.Reader
}

func newLinePrompter(r io.Reader) *linePrompter {
	return &linePrompter{r: bufio.NewReader(r)}
}

func (p *linePrompter) Username(string) (string, error) {
	return p.next()
}

func (p *linePrompter) Password(string) (string, error) {
	return p.next()
}

func (p *linePrompter) next() (string, error) {
	s, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrPromptAborted
		}
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}
