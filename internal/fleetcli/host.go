package fleetcli

import "context"

// Question is one value the runner needs from the user.
type Question struct {
	// Key identifies the value ("app", a positional name, "args").
	Key string
	// Prompt is the text shown to the user.
	Prompt string
	// Placeholder is an example value shown when the input is empty.
	Placeholder string
	// Required marks questions whose empty answer aborts the invocation.
	Required bool
	// Secret hides the typed value.
	Secret bool
}

// Prompter collects values interactively. Implementations return ErrCanceled
// when the user dismisses the prompt.
type Prompter interface {
	Ask(ctx context.Context, q Question) (string, error)
}

// Sink is the append-only log surface that receives command lines, raw tool
// output and status lines.
type Sink interface {
	Line(text string)
	Printf(format string, args ...interface{})
}

// StatusIndicator shows that an invocation is in flight.
type StatusIndicator interface {
	Start(message string)
	Stop(ok bool, message string)
}

type noopStatus struct{}

func (noopStatus) Start(string)      {}
func (noopStatus) Stop(bool, string) {}

type discardSink struct{}

func (discardSink) Line(string)                   {}
func (discardSink) Printf(string, ...interface{}) {}
