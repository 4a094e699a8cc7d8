package executor

import (
	"errors"
	"fmt"
)

var (
	// ErrNotExecuted is returned by the accessors before the first Execute call.
	ErrNotExecuted = errors.New("no command was executed yet")

	// ErrCommandFailed matches every *CommandError via errors.Is.
	ErrCommandFailed = errors.New("command failed")
)

// Kind classifies why a command failed.
type Kind int

const (
	KindSpawn Kind = iota + 1
	KindStreamRead
	KindStreamClose
	KindUnterminated
	KindNonZeroExit
)

func (k Kind) String() string {
	switch k {
	case KindSpawn:
		return "spawn"
	case KindStreamRead:
		return "stream read"
	case KindStreamClose:
		return "stream close"
	case KindUnterminated:
		return "unterminated"
	case KindNonZeroExit:
		return "non-zero exit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// CommandError reports a failed Execute call. The captured output is also
// available from the executor's accessors.
type CommandError struct {
	Kind     Kind
	Command  string
	Stream   string // set for KindStreamRead and KindStreamClose
	ExitCode int    // set for KindUnterminated and KindNonZeroExit
	Stderr   string // set for KindNonZeroExit
	Err      error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case KindSpawn:
		return fmt.Sprintf("could not start the process of the command `%s`: %v", e.Command, e.Err)
	case KindStreamRead:
		return fmt.Sprintf("could not read the %s stream of the command `%s`: %v", e.Stream, e.Command, e.Err)
	case KindStreamClose:
		return fmt.Sprintf("could not close the %s stream of the command `%s`: %v", e.Stream, e.Command, e.Err)
	case KindUnterminated:
		return fmt.Sprintf("could not terminate the process of the command `%s`", e.Command)
	case KindNonZeroExit:
		return fmt.Sprintf("command `%s` exited with code %d and generated the following stderr: %s", e.Command, e.ExitCode, e.Stderr)
	default:
		return fmt.Sprintf("command `%s` failed", e.Command)
	}
}

func (e *CommandError) Unwrap() error { return e.Err }

// Is reports ErrCommandFailed as a match so callers can catch every kind at once.
func (e *CommandError) Is(target error) bool {
	return target == ErrCommandFailed
}

// IsNotExecuted returns true if err is ErrNotExecuted.
func IsNotExecuted(err error) bool {
	return errors.Is(err, ErrNotExecuted)
}

// IsCommandFailed returns true if err reports a failed command of any kind.
func IsCommandFailed(err error) bool {
	return errors.Is(err, ErrCommandFailed)
}

// KindOf returns the failure kind of err, or 0 if err is not a *CommandError.
func KindOf(err error) Kind {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Kind
	}
	return 0
}
