package engine

import dagerrors "github.com/tonix-tuft/cliche/internal/errors"

// Step statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusBlocked = "blocked"
	StatusDryRun  = "dry-run"
)

// Result is the structured output of a plan execution.
type Result struct {
	RunID        string               `json:"run_id"`
	Success      bool                 `json:"success"`
	FailedStepID string               `json:"failed_step_id,omitempty"`
	Steps        []StepResult         `json:"steps"`
	Artifacts    []string             `json:"artifacts,omitempty"`
	Errors       []dagerrors.RunError `json:"errors,omitempty"`
}

// StepResult describes the outcome of a single step.
type StepResult struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	Command     string `json:"command,omitempty"` // resolved command line
	ExitCode    int    `json:"exit_code"`
	Stdout      string `json:"stdout,omitempty"`
	Stderr      string `json:"stderr,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Ignored     bool   `json:"ignored,omitempty"` // failed with continue_on_error
}
