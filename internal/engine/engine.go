package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tonix-tuft/cliche/internal/artifact"
	dagerrors "github.com/tonix-tuft/cliche/internal/errors"
	"github.com/tonix-tuft/cliche/internal/plan"
	"github.com/tonix-tuft/cliche/internal/template"
)

// Mode controls execution behavior.
type Mode int

const (
	ModeDryRun Mode = iota
	ModeRun
)

// Execute runs a plan in the given mode. Steps run one after another through
// ctx.Executor; the first failing step stops the plan unless it sets
// continue_on_error.
func Execute(p *plan.Plan, ctx *RunContext, mode Mode) (*Result, error) {
	result := &Result{
		RunID:   ctx.RunID,
		Success: true,
	}

	var store *artifact.Store
	if mode == ModeRun {
		var err error
		store, err = artifact.New(ctx.RunID, ctx.WorkDir)
		if err != nil {
			return nil, err
		}
		result.Artifacts = []string{store.BaseDir}
	}

	failed := false
	for _, step := range p.Steps {
		if failed {
			result.Steps = append(result.Steps, StepResult{ID: step.ID, Status: StatusSkipped})
			continue
		}

		sr, runErr, err := executeStep(step, ctx, mode)
		if err != nil {
			return nil, err
		}
		result.Steps = append(result.Steps, *sr)

		switch sr.Status {
		case StatusFailed:
			result.Errors = append(result.Errors, *runErr)
			if sr.Ignored {
				ctx.Logger.Warn("step failed, continuing", "step", step.ID, "exit_code", sr.ExitCode)
				break
			}
			result.Success = false
			result.FailedStepID = step.ID
			failed = true
		case StatusBlocked:
			result.Success = false
			result.FailedStepID = step.ID
			failed = true
			blocked := dagerrors.NewStepError(step.ID,
				fmt.Sprintf("step %q is destructive and --approve was not set", step.ID),
				"Re-run with --approve to allow destructive steps")
			blocked.Code = "blocked"
			result.Errors = append(result.Errors, *blocked)
		}

		if store != nil && sr.Status != StatusBlocked {
			if err := store.WriteStepOutput(step.ID, sr.Stdout, sr.Stderr); err != nil {
				ctx.Logger.Warn("writing step output", "step", step.ID, "error", err)
			}
		}
	}

	if store != nil {
		if err := store.WriteResult(result); err != nil {
			ctx.Logger.Warn("writing run result", "run_id", ctx.RunID, "error", err)
		}
	}

	return result, nil
}

// executeStep returns the step result, the structured error of a failed
// command, and an error for problems that abort the whole plan.
func executeStep(step plan.Step, ctx *RunContext, mode Mode) (*StepResult, *dagerrors.RunError, error) {
	sr := &StepResult{ID: step.ID, Description: step.Description}

	resolved, err := template.Resolve(step.Run, ctx.TmplCtx)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving template for step %q: %w", step.ID, err)
	}
	sr.Command = resolved

	if step.Destructive && !ctx.Approve {
		sr.Status = StatusBlocked
		registerPlaceholderOutputs(step, ctx)
		return sr, nil, nil
	}

	if mode == ModeDryRun {
		sr.Status = StatusDryRun
		registerPlaceholderOutputs(step, ctx)
		return sr, nil, nil
	}

	ctx.Logger.Info("running step", "step", step.ID, "command", resolved)
	start := time.Now()
	_, execErr := ctx.Executor.Execute(resolved)
	sr.Duration = time.Since(start).Round(time.Millisecond).String()

	// The accessors hold this step's output whether or not it failed.
	if sr.Stdout, err = ctx.Executor.LastStdout(); err != nil {
		return nil, nil, fmt.Errorf("reading stdout of step %q: %w", step.ID, err)
	}
	if sr.Stderr, err = ctx.Executor.LastStderr(); err != nil {
		return nil, nil, fmt.Errorf("reading stderr of step %q: %w", step.ID, err)
	}
	if sr.ExitCode, err = ctx.Executor.LastExitCode(); err != nil {
		return nil, nil, fmt.Errorf("reading exit code of step %q: %w", step.ID, err)
	}

	var runErr *dagerrors.RunError
	if execErr != nil {
		sr.Status = StatusFailed
		sr.Ignored = step.ContinueOnError
		runErr = dagerrors.FromExecError(step.ID, execErr)
		if !sr.Ignored {
			return sr, runErr, nil
		}
	} else {
		sr.Status = StatusSuccess
	}

	registerOutputs(step, sr, ctx)
	return sr, runErr, nil
}

func registerOutputs(step plan.Step, sr *StepResult, ctx *RunContext) {
	if len(step.Outputs) == 0 {
		return
	}
	if ctx.TmplCtx.StepOutputs[step.ID] == nil {
		ctx.TmplCtx.StepOutputs[step.ID] = map[string]string{}
	}
	for name, source := range step.Outputs {
		switch source {
		case plan.SourceStdout:
			ctx.TmplCtx.StepOutputs[step.ID][name] = sr.Stdout
		case plan.SourceStderr:
			ctx.TmplCtx.StepOutputs[step.ID][name] = sr.Stderr
		case plan.SourceExitCode:
			ctx.TmplCtx.StepOutputs[step.ID][name] = strconv.Itoa(sr.ExitCode)
		}
	}
}

// registerPlaceholderOutputs sets placeholder values for outputs so subsequent
// steps can resolve templates in dry-run mode.
func registerPlaceholderOutputs(step plan.Step, ctx *RunContext) {
	if len(step.Outputs) == 0 {
		return
	}
	if ctx.TmplCtx.StepOutputs[step.ID] == nil {
		ctx.TmplCtx.StepOutputs[step.ID] = map[string]string{}
	}
	for name, source := range step.Outputs {
		ctx.TmplCtx.StepOutputs[step.ID][name] = fmt.Sprintf("<%s.%s>", step.ID, source)
	}
}
