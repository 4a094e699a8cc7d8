package plan

// Output sources a step may expose.
const (
	SourceStdout   = "stdout"
	SourceStderr   = "stderr"
	SourceExitCode = "exit_code"
)

// Plan is a named sequence of shell steps.
type Plan struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Inputs      map[string]Input `yaml:"inputs,omitempty"`
	Steps       []Step           `yaml:"steps"`
}

// Input defines a plan-level input parameter.
type Input struct {
	Required    bool   `yaml:"required,omitempty"`
	Description string `yaml:"description,omitempty"`
	Default     string `yaml:"default,omitempty"`
}

// Step defines a single command line in a plan.
type Step struct {
	ID          string `yaml:"id"`
	Description string `yaml:"name,omitempty"`
	Run         string `yaml:"run"`
	// Outputs maps an output name to one of the Source* constants.
	Outputs         map[string]string `yaml:"outputs,omitempty"`
	Destructive     bool              `yaml:"destructive,omitempty"`
	ContinueOnError bool              `yaml:"continue_on_error,omitempty"`
}
