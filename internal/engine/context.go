package engine

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/tonix-tuft/cliche/executor"
	"github.com/tonix-tuft/cliche/internal/template"
)

// RunContext holds state for a plan execution.
type RunContext struct {
	RunID   string
	WorkDir string
	Inputs  map[string]string
	TmplCtx *template.Context
	Approve bool // allow destructive steps

	// Executor runs every step; its Last* accessors reflect the latest step.
	Executor executor.Executor
	Logger   *slog.Logger
}

// NewRunContext creates a new execution context. A nil ex gets a real
// executor rooted at workDir.
func NewRunContext(workDir string, inputs map[string]string, approve bool, ex executor.Executor) *RunContext {
	if inputs == nil {
		inputs = map[string]string{}
	}
	if ex == nil {
		ex = executor.New(executor.WithDir(workDir))
	}
	return &RunContext{
		RunID:   uuid.New().String(),
		WorkDir: workDir,
		Inputs:  inputs,
		TmplCtx: &template.Context{
			Inputs:      inputs,
			StepOutputs: map[string]map[string]string{},
		},
		Approve:  approve,
		Executor: ex,
		Logger:   slog.New(slog.DiscardHandler),
	}
}
