package errors

import (
	"errors"
	"fmt"

	"github.com/tonix-tuft/cliche/executor"
)

// Error type constants
const (
	ValidationError    = "VALIDATION_ERROR"
	NotExecuted        = "NOT_EXECUTED"
	SpawnFailed        = "SPAWN_FAILED"
	StreamReadFailed   = "STREAM_READ_FAILED"
	StreamCloseFailed  = "STREAM_CLOSE_FAILED"
	Unterminated       = "UNTERMINATED"
	NonZeroExit        = "NON_ZERO_EXIT"
	UnknownCommandName = "UNKNOWN_COMMAND_NAME"
	StepFailed         = "STEP_FAILED"
)

// RunError is a structured error for JSON output.
type RunError struct {
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	StepID    string `json:"step_id,omitempty"`
	ExitCode  *int   `json:"exit_code,omitempty"`
	Retryable bool   `json:"retryable"`
	Hint      string `json:"hint,omitempty"`
}

func (e *RunError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("[%s] step %s: %s", e.Type, e.StepID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func NewValidationError(msg, hint string) *RunError {
	return &RunError{Type: ValidationError, Message: msg, Hint: hint}
}

func NewStepError(stepID, msg, hint string) *RunError {
	return &RunError{Type: StepFailed, StepID: stepID, Message: msg, Hint: hint}
}

// FromExecError converts an executor error into a RunError. It returns nil
// for a nil error.
func FromExecError(stepID string, err error) *RunError {
	if err == nil {
		return nil
	}
	re := &RunError{StepID: stepID, Message: err.Error()}

	var cmdErr *executor.CommandError
	switch {
	case errors.As(err, &cmdErr):
		re.Code = cmdErr.Kind.String()
		switch cmdErr.Kind {
		case executor.KindSpawn:
			re.Type = SpawnFailed
			re.Hint = "Check that the shell exists and is executable (--shell)"
		case executor.KindStreamRead:
			re.Type = StreamReadFailed
			re.Retryable = true
		case executor.KindStreamClose:
			re.Type = StreamCloseFailed
			re.Retryable = true
		case executor.KindUnterminated:
			re.Type = Unterminated
			re.ExitCode = intPtr(cmdErr.ExitCode)
			re.Hint = "The process was killed by a signal"
		case executor.KindNonZeroExit:
			re.Type = NonZeroExit
			re.ExitCode = intPtr(cmdErr.ExitCode)
			if cmdErr.ExitCode == 127 {
				re.Hint = "Exit code 127 usually means the command was not found"
			}
		default:
			re.Type = StepFailed
		}
	case errors.Is(err, executor.ErrNotExecuted):
		re.Type = NotExecuted
		re.Hint = "Call Execute before reading results"
	default:
		re.Type = StepFailed
	}
	return re
}

func intPtr(i int) *int { return &i }
