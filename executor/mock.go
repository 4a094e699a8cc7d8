package executor

import (
	"fmt"
	"strings"

	"github.com/tonix-tuft/cliche/internal/runner"
)

// MockExecutor simulates command execution for testing code that depends on
// an Executor. Results are classified and stored exactly like ProcExecutor.
type MockExecutor struct {
	// Commands maps command lines to canned responses. A key may use "*" as
	// a whole-token wildcard, e.g. "grep * file.txt". An exact key wins;
	// among matching patterns the one with the fewest wildcards wins, ties
	// going to the lexically smallest pattern.
	Commands map[string]*MockResponse

	// DefaultResponse is used when no command matches.
	DefaultResponse *MockResponse

	// Executed records every command line passed to Execute, in order.
	Executed []string

	last *Result
}

// MockResponse is the canned output of a simulated command.
type MockResponse struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// SpawnErr simulates a process that could not be started.
	SpawnErr error
}

var _ Executor = (*MockExecutor)(nil)

// NewMockExecutor creates an empty mock executor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{Commands: make(map[string]*MockResponse)}
}

// AddCommand registers the response for a command line.
func (m *MockExecutor) AddCommand(command, stdout, stderr string, exitCode int) {
	m.Commands[command] = &MockResponse{Stdout: stdout, Stderr: stderr, ExitCode: exitCode}
}

// AddSpawnFailure registers a command whose process cannot be started.
func (m *MockExecutor) AddSpawnFailure(command string, err error) {
	m.Commands[command] = &MockResponse{SpawnErr: err}
}

// Execute implements Executor.
func (m *MockExecutor) Execute(command string) (string, error) {
	m.Executed = append(m.Executed, command)

	resp := m.lookup(command)
	if resp == nil {
		m.last = &Result{Command: command, ExitCode: runner.UnterminatedExitCode}
		return "", &CommandError{
			Kind:    KindSpawn,
			Command: command,
			Err:     fmt.Errorf("mock executor: no result configured for command: %s", command),
		}
	}
	if resp.SpawnErr != nil {
		m.last = &Result{Command: command, ExitCode: runner.UnterminatedExitCode}
		return "", &CommandError{Kind: KindSpawn, Command: command, Err: resp.SpawnErr}
	}

	m.last = &Result{
		Command:  command,
		Stdout:   TrimNewlines(resp.Stdout),
		Stderr:   TrimNewlines(resp.Stderr),
		ExitCode: resp.ExitCode,
	}
	if err := classify(*m.last, nil); err != nil {
		return "", err
	}
	return m.last.Stdout, nil
}

// LastStdout implements Executor.
func (m *MockExecutor) LastStdout() (string, error) {
	if m.last == nil {
		return "", ErrNotExecuted
	}
	return m.last.Stdout, nil
}

// LastStderr implements Executor.
func (m *MockExecutor) LastStderr() (string, error) {
	if m.last == nil {
		return "", ErrNotExecuted
	}
	return m.last.Stderr, nil
}

// LastExitCode implements Executor.
func (m *MockExecutor) LastExitCode() (int, error) {
	if m.last == nil {
		return 0, ErrNotExecuted
	}
	return m.last.ExitCode, nil
}

// Reset clears history, responses and the last result.
func (m *MockExecutor) Reset() {
	m.Commands = make(map[string]*MockResponse)
	m.Executed = nil
	m.DefaultResponse = nil
	m.last = nil
}

func (m *MockExecutor) lookup(command string) *MockResponse {
	if resp, ok := m.Commands[command]; ok {
		return resp
	}
	best := ""
	for pattern := range m.Commands {
		if !matchesPattern(command, pattern) {
			continue
		}
		if best == "" || morePrecise(pattern, best) {
			best = pattern
		}
	}
	if best != "" {
		return m.Commands[best]
	}
	return m.DefaultResponse
}

func morePrecise(a, b string) bool {
	wa, wb := strings.Count(a, "*"), strings.Count(b, "*")
	if wa != wb {
		return wa < wb
	}
	return a < b
}

// matchesPattern matches whitespace-separated tokens, "*" matching any one token.
func matchesPattern(command, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return command == pattern
	}
	patternParts := strings.Fields(pattern)
	cmdParts := strings.Fields(command)
	if len(patternParts) != len(cmdParts) {
		return false
	}
	for i, pp := range patternParts {
		if pp != "*" && pp != cmdParts[i] {
			return false
		}
	}
	return true
}
