package runner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// UnterminatedExitCode is reported when the process status could not be
// resolved to a real exit code (killed by a signal, or wait failed).
const UnterminatedExitCode = -1

// Stream names one of the three process streams.
type Stream string

const (
	Stdin  Stream = "stdin"
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// Stream operations reported by StreamError.
const (
	OpRead  = "read"
	OpClose = "close"
)

// Config controls how a command line is handed to the host interpreter.
type Config struct {
	Shell     string   // interpreter; defaults to sh (cmd on windows)
	ShellFlag string   // flag preceding the command line; defaults to -c (/C on windows)
	Dir       string   // working directory; empty inherits the caller's
	Env       []string // KEY=value pairs appended to os.Environ()
}

// ShellResult holds the raw output of a shell command.
type ShellResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// SpawnError is returned when the process could not be created.
type SpawnError struct {
	Shell string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawning %s: %v", e.Shell, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// StreamError is returned when a stream could not be fully read or released.
type StreamError struct {
	Stream Stream
	Op     string
	Err    error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Stream, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// DefaultShell returns the host command interpreter and the flag that makes
// it run a single command line.
func DefaultShell() (string, string) {
	if runtime.GOOS == "windows" {
		return "cmd", "/C"
	}
	return "sh", "-c"
}

// ShellFlagFor returns the flag that makes shell run a single command line:
// /C for cmd, -Command for PowerShell and -c for everything else.
func ShellFlagFor(shell string) string {
	name := strings.ToLower(filepath.Base(shell))
	name = strings.TrimSuffix(name, ".exe")
	switch name {
	case "cmd":
		return "/C"
	case "powershell", "pwsh":
		return "-Command"
	default:
		return "-c"
	}
}

func (c Config) shell() (string, string) {
	shell, flag := DefaultShell()
	if c.Shell != "" {
		shell = c.Shell
		flag = c.ShellFlag
	}
	return shell, flag
}

// Run executes a command line through the configured shell and blocks until
// the process has exited and its streams are drained and closed.
//
// A nil result means the process was never started. Otherwise the result is
// always populated with whatever was captured, even when err is a
// *StreamError. A non-zero exit is not an error at this level.
func Run(command string, cfg Config) (*ShellResult, error) {
	shell, flag := cfg.shell()
	args := []string{command}
	if flag != "" {
		args = []string{flag, command}
	}
	cmd := exec.Command(shell, args...)
	if cfg.Dir != "" {
		cmd.Dir = cfg.Dir
	}
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}

	stdin, stdout, stderr, err := pipes(cmd)
	if err != nil {
		return nil, &SpawnError{Shell: shell, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Shell: shell, Err: err}
	}

	// Nothing is ever written to stdin; closing it gives the child EOF.
	var stdinErr error
	if err := stdin.Close(); err != nil {
		stdinErr = &StreamError{Stream: Stdin, Op: OpClose, Err: err}
	}

	// Both streams are drained at once: reading one to EOF first deadlocks
	// when the child fills the other's pipe buffer.
	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error { return drain(&outBuf, stdout, Stdout) })
	g.Go(func() error { return drain(&errBuf, stderr, Stderr) })
	drainErr := g.Wait()

	waitErr := cmd.Wait()

	res := &ShellResult{
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		ExitCode: exitCode(cmd, waitErr),
	}
	if drainErr != nil {
		return res, drainErr
	}
	return res, stdinErr
}

func pipes(cmd *exec.Cmd) (io.WriteCloser, io.ReadCloser, io.ReadCloser, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, nil, nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		return nil, nil, nil, err
	}
	return stdin, stdout, stderr, nil
}

func drain(dst *bytes.Buffer, rc io.ReadCloser, s Stream) error {
	_, readErr := io.Copy(dst, rc)
	closeErr := rc.Close()
	if readErr != nil {
		return &StreamError{Stream: s, Op: OpRead, Err: readErr}
	}
	if closeErr != nil {
		return &StreamError{Stream: s, Op: OpClose, Err: closeErr}
	}
	return nil
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	if waitErr != nil || cmd.ProcessState == nil {
		return UnterminatedExitCode
	}
	return cmd.ProcessState.ExitCode()
}
