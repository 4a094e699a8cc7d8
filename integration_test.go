package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonix-tuft/cliche/executor"
	dagerrors "github.com/tonix-tuft/cliche/internal/errors"
	"github.com/tonix-tuft/cliche/internal/engine"
	"github.com/tonix-tuft/cliche/internal/plan"
)

func writePlan(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func loadPlan(t *testing.T, path string) *plan.Plan {
	t.Helper()
	p, err := plan.LoadFile(path)
	require.NoError(t, err)
	require.NoError(t, plan.Validate(p, map[string]string{}))
	return p
}

func runPlan(t *testing.T, content string) *engine.Result {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	dir := t.TempDir()
	writePlan(t, dir, "plan.yaml", content)
	p := loadPlan(t, filepath.Join(dir, "plan.yaml"))
	ctx := engine.NewRunContext(dir, nil, false, nil)
	result, err := engine.Execute(p, ctx, engine.ModeRun)
	require.NoError(t, err)
	return result
}

func TestSimpleShellPlanE2E(t *testing.T) {
	result := runPlan(t, `
name: simple
steps:
  - id: hello
    run: echo "hello world"
    outputs:
      message: stdout
  - id: check
    run: echo "got {{steps.hello.outputs.message}}"
`)
	require.True(t, result.Success, "failed at %s", result.FailedStepID)
	require.Len(t, result.Steps, 2)
	assert.Equal(t, "got hello world", result.Steps[1].Stdout)
}

func TestDescriptorPipelineE2E(t *testing.T) {
	result := runPlan(t, `
name: pipeline
steps:
  - id: grep
    run: "{{cmd.echo}} Hello from CLI | {{cmd.grep}} -E CLI"
  - id: diff
    run: "printf a > left; printf a > right; {{cmd.diff}} left right"
`)
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, "Hello from CLI", result.Steps[0].Stdout)
	assert.Equal(t, 0, result.Steps[1].ExitCode)
}

func TestBashExitCodesE2E(t *testing.T) {
	for _, code := range []int{1, 2, 7} {
		result := runPlan(t, `
name: exit
steps:
  - id: fail
    run: exit `+strconv.Itoa(code)+`
`)
		assert.False(t, result.Success)
		assert.Equal(t, code, result.Steps[0].ExitCode)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, dagerrors.NonZeroExit, result.Errors[0].Type)
		require.NotNil(t, result.Errors[0].ExitCode)
		assert.Equal(t, code, *result.Errors[0].ExitCode)
	}
}

func TestBashStderrCapturedE2E(t *testing.T) {
	result := runPlan(t, `
name: stderr
steps:
  - id: warn
    run: echo "warning" >&2
    outputs:
      msg: stderr
  - id: fail
    run: echo "fatal" >&2; exit 4
`)
	assert.False(t, result.Success)
	assert.Equal(t, "warning", result.Steps[0].Stderr)
	assert.Equal(t, "fatal", result.Steps[1].Stderr)
	assert.Contains(t, result.Errors[0].Message, "fatal")
}

func TestBashCommandNotFoundE2E(t *testing.T) {
	result := runPlan(t, `
name: notfound
steps:
  - id: missing
    run: cliche-nonexistent-command-xyz
`)
	assert.False(t, result.Success)
	assert.Equal(t, 127, result.Steps[0].ExitCode)
	assert.Contains(t, result.Errors[0].Hint, "not found")
}

func TestFailFastE2E(t *testing.T) {
	result := runPlan(t, `
name: failfast
steps:
  - id: step1
    run: echo ok
  - id: step2
    run: exit 1
  - id: step3
    run: echo "should not run"
`)
	assert.False(t, result.Success)
	assert.Equal(t, "step2", result.FailedStepID)
	assert.Equal(t, engine.StatusSkipped, result.Steps[2].Status)
}

func TestSharedExecutorReflectsLastStepE2E(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	dir := t.TempDir()
	writePlan(t, dir, "plan.yaml", `
name: shared
steps:
  - id: first
    run: echo first; exit 5
    continue_on_error: true
  - id: second
    run: echo second
`)
	p := loadPlan(t, filepath.Join(dir, "plan.yaml"))
	ex := executor.New(executor.WithDir(dir))
	result, err := engine.Execute(p, engine.NewRunContext(dir, nil, false, ex), engine.ModeRun)
	require.NoError(t, err)
	assert.True(t, result.Success)

	stdout, err := ex.LastStdout()
	require.NoError(t, err)
	assert.Equal(t, "second", stdout)
	code, err := ex.LastExitCode()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}
