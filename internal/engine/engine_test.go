package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonix-tuft/cliche/executor"
	dagerrors "github.com/tonix-tuft/cliche/internal/errors"
	"github.com/tonix-tuft/cliche/internal/plan"
)

func makeCtx(t *testing.T, ex executor.Executor, approve bool) *RunContext {
	t.Helper()
	ctx := NewRunContext(t.TempDir(), nil, approve, ex)
	ctx.RunID = "test-run"
	return ctx
}

func requireSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestDryRunModeDoesNotExecute(t *testing.T) {
	mock := executor.NewMockExecutor()
	p := &plan.Plan{
		Name: "test",
		Steps: []plan.Step{
			{ID: "s1", Run: "echo hello", Outputs: map[string]string{"msg": "stdout"}},
			{ID: "s2", Run: "{{cmd.echo}} {{steps.s1.outputs.msg}}"},
		},
	}
	ctx := makeCtx(t, mock, false)
	result, err := Execute(p, ctx, ModeDryRun)
	require.NoError(t, err)
	require.Len(t, result.Steps, 2)
	for _, sr := range result.Steps {
		assert.Equal(t, StatusDryRun, sr.Status)
	}
	assert.Equal(t, "echo <s1.stdout>", result.Steps[1].Command)
	assert.Empty(t, mock.Executed)
	assert.Empty(t, result.Artifacts)
}

func TestRunModeExecutesAndCollectsOutputs(t *testing.T) {
	requireSh(t)
	p := &plan.Plan{
		Name: "test",
		Steps: []plan.Step{
			{ID: "s1", Run: "echo hello", Outputs: map[string]string{"msg": "stdout"}},
		},
	}
	ctx := makeCtx(t, nil, false)
	result, err := Execute(p, ctx, ModeRun)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, StatusSuccess, result.Steps[0].Status)
	assert.Equal(t, "hello", ctx.TmplCtx.StepOutputs["s1"]["msg"])
}

func TestRunModeFailFast(t *testing.T) {
	mock := executor.NewMockExecutor()
	mock.AddCommand("false", "", "nope\n", 1)
	mock.AddCommand("echo should-not-run", "should-not-run\n", "", 0)
	p := &plan.Plan{
		Name: "test",
		Steps: []plan.Step{
			{ID: "s1", Run: "false"},
			{ID: "s2", Run: "echo should-not-run"},
		},
	}
	ctx := makeCtx(t, mock, false)
	result, err := Execute(p, ctx, ModeRun)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "s1", result.FailedStepID)
	assert.Equal(t, StatusFailed, result.Steps[0].Status)
	assert.Equal(t, 1, result.Steps[0].ExitCode)
	assert.Equal(t, "nope", result.Steps[0].Stderr)
	assert.Equal(t, StatusSkipped, result.Steps[1].Status)
	assert.Equal(t, []string{"false"}, mock.Executed)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, dagerrors.NonZeroExit, result.Errors[0].Type)
	assert.Equal(t, "s1", result.Errors[0].StepID)
}

func TestContinueOnErrorExposesExitCode(t *testing.T) {
	mock := executor.NewMockExecutor()
	mock.AddCommand("grep -q x file", "", "", 1)
	mock.AddCommand("echo code=1", "code=1\n", "", 0)
	p := &plan.Plan{
		Name: "test",
		Steps: []plan.Step{
			{ID: "probe", Run: "grep -q x file", ContinueOnError: true, Outputs: map[string]string{"code": "exit_code"}},
			{ID: "report", Run: "echo code={{steps.probe.outputs.code}}", Outputs: map[string]string{"line": "stdout"}},
		},
	}
	ctx := makeCtx(t, mock, false)
	result, err := Execute(p, ctx, ModeRun)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Steps[0].Ignored)
	assert.Equal(t, StatusFailed, result.Steps[0].Status)
	assert.Equal(t, StatusSuccess, result.Steps[1].Status)
	assert.Equal(t, "code=1", ctx.TmplCtx.StepOutputs["report"]["line"])
	assert.Len(t, result.Errors, 1)
}

func TestTemplateDataFlowsBetweenSteps(t *testing.T) {
	requireSh(t)
	p := &plan.Plan{
		Name: "test",
		Steps: []plan.Step{
			{ID: "s1", Run: "echo world", Outputs: map[string]string{"msg": "stdout"}},
			{ID: "s2", Run: "{{cmd.echo}} hello {{steps.s1.outputs.msg}} | {{cmd.grep}} -E world"},
		},
	}
	ctx := makeCtx(t, nil, false)
	result, err := Execute(p, ctx, ModeRun)
	require.NoError(t, err)
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, "echo hello world | grep -E world", result.Steps[1].Command)
	assert.Equal(t, "hello world", result.Steps[1].Stdout)
}

func TestDestructiveBlocking(t *testing.T) {
	mock := executor.NewMockExecutor()
	p := &plan.Plan{
		Name: "test",
		Steps: []plan.Step{
			{ID: "s1", Run: "rm -rf build", Destructive: true},
			{ID: "s2", Run: "echo after"},
		},
	}
	ctx := makeCtx(t, mock, false)
	result, err := Execute(p, ctx, ModeRun)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, StatusBlocked, result.Steps[0].Status)
	assert.Equal(t, StatusSkipped, result.Steps[1].Status)
	assert.Empty(t, mock.Executed)
	require.Len(t, result.Errors, 1)
	assert.NotEmpty(t, result.Errors[0].Hint)
	assert.Equal(t, dagerrors.StepFailed, result.Errors[0].Type)
	assert.Equal(t, "blocked", result.Errors[0].Code)
	assert.Equal(t, "s1", result.Errors[0].StepID)
}

func TestRunWithApproveAllowsDestructive(t *testing.T) {
	mock := executor.NewMockExecutor()
	mock.AddCommand("rm -rf build", "", "", 0)
	p := &plan.Plan{
		Name:  "test",
		Steps: []plan.Step{{ID: "s1", Run: "rm -rf build", Destructive: true}},
	}
	ctx := makeCtx(t, mock, true)
	result, err := Execute(p, ctx, ModeRun)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"rm -rf build"}, mock.Executed)
}

func TestSpawnFailureIsReported(t *testing.T) {
	mock := executor.NewMockExecutor()
	p := &plan.Plan{
		Name:  "test",
		Steps: []plan.Step{{ID: "s1", Run: "unconfigured"}},
	}
	ctx := makeCtx(t, mock, false)
	result, err := Execute(p, ctx, ModeRun)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, -1, result.Steps[0].ExitCode)
	assert.Equal(t, dagerrors.SpawnFailed, result.Errors[0].Type)
}

func TestUnresolvedTemplateAbortsPlan(t *testing.T) {
	p := &plan.Plan{
		Name:  "test",
		Steps: []plan.Step{{ID: "s1", Run: "echo {{inputs.missing}}"}},
	}
	_, err := Execute(p, makeCtx(t, executor.NewMockExecutor(), false), ModeRun)
	assert.ErrorContains(t, err, `unresolved input "missing"`)
}

func TestRunWritesArtifacts(t *testing.T) {
	mock := executor.NewMockExecutor()
	mock.AddCommand("echo hi", "hi\n", "", 0)
	mock.AddCommand("exit 3", "", "bad\n", 3)
	p := &plan.Plan{
		Name: "test",
		Steps: []plan.Step{
			{ID: "ok", Run: "echo hi"},
			{ID: "bad", Run: "exit 3"},
		},
	}
	ctx := makeCtx(t, mock, false)
	result, err := Execute(p, ctx, ModeRun)
	require.NoError(t, err)
	require.Len(t, result.Artifacts, 1)
	base := result.Artifacts[0]

	stdout, err := os.ReadFile(filepath.Join(base, "steps", "ok.stdout"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(stdout))

	stderr, err := os.ReadFile(filepath.Join(base, "steps", "bad.stderr"))
	require.NoError(t, err)
	assert.Equal(t, "bad", string(stderr))

	data, err := os.ReadFile(filepath.Join(base, "result.json"))
	require.NoError(t, err)
	var saved Result
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "test-run", saved.RunID)
	assert.Equal(t, "bad", saved.FailedStepID)
}

func TestRunNeverWritesOutsideRunDir(t *testing.T) {
	mock := executor.NewMockExecutor()
	mock.AddCommand("echo hi", "hi\n", "oops\n", 0)
	p := &plan.Plan{
		Name:  "test",
		Steps: []plan.Step{{ID: "../../../../escaped", Run: "echo hi"}},
	}
	ctx := makeCtx(t, mock, false)
	result, err := Execute(p, ctx, ModeRun)
	require.NoError(t, err)
	assert.True(t, result.Success)

	_, err = os.Stat(filepath.Join(ctx.WorkDir, "escaped.stdout"))
	assert.True(t, os.IsNotExist(err), "stdout written outside the run dir")
	_, err = os.Stat(filepath.Join(ctx.WorkDir, "escaped.stderr"))
	assert.True(t, os.IsNotExist(err), "stderr written outside the run dir")
}

func TestNewRunContextDefaults(t *testing.T) {
	ctx := NewRunContext(".", nil, false, nil)
	assert.NotEmpty(t, ctx.RunID)
	assert.NotNil(t, ctx.Inputs)
	assert.IsType(t, &executor.ProcExecutor{}, ctx.Executor)
	assert.NotNil(t, ctx.Logger)
}
