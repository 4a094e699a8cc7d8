package executor

import (
	"errors"
	"log/slog"

	"github.com/tonix-tuft/cliche/internal/runner"
)

// Executor runs shell command lines and remembers the last result.
type Executor interface {
	// Execute runs command and returns its trimmed stdout. Any failure,
	// including a non-zero exit, is returned as a *CommandError.
	Execute(command string) (string, error)
	// LastStdout returns the trimmed stdout of the last Execute call, or
	// ErrNotExecuted.
	LastStdout() (string, error)
	// LastStderr returns the trimmed stderr of the last Execute call, or
	// ErrNotExecuted.
	LastStderr() (string, error)
	// LastExitCode returns the exit code of the last Execute call, or
	// ErrNotExecuted.
	LastExitCode() (int, error)
}

// Result is the captured outcome of one Execute call.
type Result struct {
	Command  string `json:"command"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
}

// ProcExecutor is the Executor backed by a real subprocess.
//
// A ProcExecutor is not safe for concurrent use; use one instance per
// goroutine.
type ProcExecutor struct {
	cfg    runner.Config
	logger *slog.Logger

	// nil until the first Execute call.
	last *Result
}

var _ Executor = (*ProcExecutor)(nil)

// Option configures a ProcExecutor.
type Option func(*ProcExecutor)

// WithShell replaces the host interpreter, e.g. WithShell("bash", "-c").
func WithShell(shell, flag string) Option {
	return func(e *ProcExecutor) {
		e.cfg.Shell = shell
		e.cfg.ShellFlag = flag
	}
}

// WithDir sets the working directory of every command.
func WithDir(dir string) Option {
	return func(e *ProcExecutor) { e.cfg.Dir = dir }
}

// WithEnv appends KEY=value pairs to the inherited environment.
func WithEnv(env ...string) Option {
	return func(e *ProcExecutor) { e.cfg.Env = append(e.cfg.Env, env...) }
}

// WithLogger sets the logger used for execution events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *ProcExecutor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates a ProcExecutor that has not executed anything yet.
func New(opts ...Option) *ProcExecutor {
	e := &ProcExecutor{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute implements Executor.
func (e *ProcExecutor) Execute(command string) (string, error) {
	e.logger.Debug("executing command", "command", command, "dir", e.cfg.Dir)

	res, err := runner.Run(command, e.cfg)
	if res == nil {
		// The process never started: nothing was captured.
		e.last = &Result{Command: command, ExitCode: runner.UnterminatedExitCode}
		e.logger.Error("command could not be started", "command", command, "error", err)
		return "", &CommandError{Kind: KindSpawn, Command: command, Err: err}
	}

	e.last = &Result{
		Command:  command,
		Stdout:   TrimNewlines(res.Stdout),
		Stderr:   TrimNewlines(res.Stderr),
		ExitCode: res.ExitCode,
	}

	if err := classify(*e.last, err); err != nil {
		e.logger.Warn("command failed", "command", command, "exit_code", e.last.ExitCode, "error", err)
		return "", err
	}
	e.logger.Debug("command succeeded", "command", command, "stdout_bytes", len(e.last.Stdout))
	return e.last.Stdout, nil
}

// classify turns a stored result plus any stream error into a *CommandError.
func classify(r Result, streamErr error) error {
	var sErr *runner.StreamError
	if errors.As(streamErr, &sErr) {
		kind := KindStreamRead
		if sErr.Op == runner.OpClose {
			kind = KindStreamClose
		}
		return &CommandError{Kind: kind, Command: r.Command, Stream: string(sErr.Stream), ExitCode: r.ExitCode, Err: sErr.Err}
	}
	if streamErr != nil {
		return &CommandError{Kind: KindStreamRead, Command: r.Command, ExitCode: r.ExitCode, Err: streamErr}
	}

	switch r.ExitCode {
	case 0:
		return nil
	case runner.UnterminatedExitCode:
		return &CommandError{Kind: KindUnterminated, Command: r.Command, ExitCode: r.ExitCode}
	default:
		return &CommandError{Kind: KindNonZeroExit, Command: r.Command, ExitCode: r.ExitCode, Stderr: r.Stderr}
	}
}

// Last returns a copy of the last result, or ErrNotExecuted.
func (e *ProcExecutor) Last() (Result, error) {
	if e.last == nil {
		return Result{}, ErrNotExecuted
	}
	return *e.last, nil
}

// LastStdout implements Executor.
func (e *ProcExecutor) LastStdout() (string, error) {
	r, err := e.Last()
	return r.Stdout, err
}

// LastStderr implements Executor.
func (e *ProcExecutor) LastStderr() (string, error) {
	r, err := e.Last()
	return r.Stderr, err
}

// LastExitCode implements Executor.
func (e *ProcExecutor) LastExitCode() (int, error) {
	r, err := e.Last()
	return r.ExitCode, err
}
