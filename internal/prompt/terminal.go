package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"fleetdeck/internal/fleetcli"
)

// Terminal prompts on the terminal. Ctrl-C and Ctrl-D cancel the invocation.
type Terminal struct {
	mu     sync.Mutex
	stdin  io.ReadCloser
	stdout io.Writer
	shared *readline.Instance
}

// NewTerminal creates a prompter on the process's stdin and stderr. Prompts
// go to stderr so stdout stays clean for tool output.
func NewTerminal() *Terminal {
	return &Terminal{stdin: os.Stdin, stdout: os.Stderr}
}

// NewTerminalOn creates a prompter that reads through an existing readline
// instance. A second instance on the same stdin would race it for input.
func NewTerminalOn(rl *readline.Instance) *Terminal {
	return &Terminal{stdin: os.Stdin, stdout: rl.Stderr(), shared: rl}
}

// Ask implements fleetcli.Prompter.
func (t *Terminal) Ask(ctx context.Context, q fleetcli.Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fleetcli.ErrCanceled
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.shared != nil {
		return t.askShared(q)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          Label(q),
		InterruptPrompt: "^C",
		EOFPrompt:       "",
		HistoryLimit:    -1,
		Stdin:           t.stdin,
		Stdout:          t.stdout,
		Stderr:          t.stdout,
		EnableMask:      q.Secret,
		MaskRune:        '*',
	})
	if err != nil {
		return "", fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", fleetcli.ErrCanceled
	}
	if err != nil {
		return "", fmt.Errorf("readline error: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) askShared(q fleetcli.Question) (string, error) {
	var line string
	var err error
	if q.Secret {
		var b []byte
		b, err = t.shared.ReadPassword(Label(q))
		line = string(b)
	} else {
		previous := t.shared.Config.Prompt
		t.shared.SetPrompt(Label(q))
		line, err = t.shared.Readline()
		t.shared.SetPrompt(previous)
	}
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", fleetcli.ErrCanceled
	}
	if err != nil {
		return "", fmt.Errorf("readline error: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Choose prints the numbered options and reads a selection. An empty answer
// cancels.
func (t *Terminal) Choose(ctx context.Context, title string, options []string) (int, error) {
	fmt.Fprintln(t.stdout, title)
	for i, o := range options {
		fmt.Fprintf(t.stdout, "  %d) %s\n", i+1, o)
	}
	answer, err := t.Ask(ctx, fleetcli.Question{
		Key:      "choice",
		Prompt:   fmt.Sprintf("Select 1-%d", len(options)),
		Required: true,
	})
	if err != nil {
		return -1, err
	}
	return parseChoice(answer, options)
}
