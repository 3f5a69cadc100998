// Package prompt collects values from the user for fleet invocations.
//
// Terminal reads from the controlling terminal with readline. Static answers
// from a fixed map and is used where no user is present, such as MCP tool
// calls, where every value arrives as a tool argument.
package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fleetdeck/internal/fleetcli"
)

// Prompter asks single questions and multiple-choice questions.
type Prompter interface {
	fleetcli.Prompter
	// Choose returns the index of the selected option.
	Choose(ctx context.Context, title string, options []string) (int, error)
}

// Label renders the text shown before the cursor for q.
func Label(q fleetcli.Question) string {
	var b strings.Builder
	b.WriteString(q.Prompt)
	if b.Len() == 0 {
		b.WriteString(q.Key)
	}
	if q.Placeholder != "" {
		fmt.Fprintf(&b, " (e.g. %s)", q.Placeholder)
	}
	if !q.Required {
		b.WriteString(" [optional]")
	}
	b.WriteString(": ")
	return b.String()
}

// parseChoice maps an answer to an option index. The answer may be the
// 1-based number or the option text, ignoring case.
func parseChoice(answer string, options []string) (int, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return -1, fleetcli.ErrCanceled
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(options) {
			return -1, fmt.Errorf("choice %d out of range 1-%d", n, len(options))
		}
		return n - 1, nil
	}
	for i, o := range options {
		if strings.EqualFold(o, answer) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown choice %q", answer)
}
