package prompt

import (
	"context"
	"strings"

	"fleetdeck/internal/fleetcli"
)

// ChoiceKey is the answer key consulted by Static.Choose.
const ChoiceKey = "choice"

// Static answers questions from a map keyed by Question.Key, ignoring case.
// Unanswered questions get "", which the runner treats as missing when the
// question is required.
type Static struct {
	answers map[string]string
	asked   []string
}

// NewStatic creates a prompter answering from answers.
func NewStatic(answers map[string]string) *Static {
	normalized := make(map[string]string, len(answers))
	for k, v := range answers {
		normalized[strings.ToLower(k)] = v
	}
	return &Static{answers: normalized}
}

// Ask implements fleetcli.Prompter.
func (s *Static) Ask(ctx context.Context, q fleetcli.Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fleetcli.ErrCanceled
	}
	s.asked = append(s.asked, q.Key)
	return s.answers[strings.ToLower(q.Key)], nil
}

// Choose selects the option named by the "choice" answer. No answer cancels.
func (s *Static) Choose(ctx context.Context, title string, options []string) (int, error) {
	answer, err := s.Ask(ctx, fleetcli.Question{Key: ChoiceKey})
	if err != nil {
		return -1, err
	}
	return parseChoice(answer, options)
}

// Asked returns the keys of the questions asked so far.
func (s *Static) Asked() []string {
	return append([]string(nil), s.asked...)
}
