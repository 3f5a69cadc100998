package fleetcli

import (
	"errors"
	"fmt"
)

// ErrCanceled is returned when the user dismisses a prompt. The invocation is
// abandoned without spawning the tool and without reporting a failure.
var ErrCanceled = errors.New("canceled by user")

// MissingInputError is returned when a required value was left empty.
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// SpawnError reports that the tool could not be started at all.
// A tool that starts and exits non-zero is not a SpawnError; see Result.ExitCode.
type SpawnError struct {
	Tool string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Tool, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// MissingPrerequisiteError reports that the fleet tool or the link plugin is
// not installed. Plugin is empty when the tool itself is missing.
type MissingPrerequisiteError struct {
	Tool   string
	Plugin string
	Err    error
}

func (e *MissingPrerequisiteError) Error() string {
	if e.Plugin == "" {
		return fmt.Sprintf("%s CLI not found", e.Tool)
	}
	return fmt.Sprintf("%s plugin %q is not installed", e.Tool, e.Plugin)
}

func (e *MissingPrerequisiteError) Unwrap() error {
	return e.Err
}

// ToolMissing reports whether the fleet binary itself is absent.
func (e *MissingPrerequisiteError) ToolMissing() bool {
	return e.Plugin == ""
}
