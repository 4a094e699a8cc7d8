package plan

import (
	"fmt"
	"regexp"

	"github.com/tonix-tuft/cliche/command"
	dagerrors "github.com/tonix-tuft/cliche/internal/errors"
	"github.com/tonix-tuft/cliche/internal/template"
)

var knownSources = map[string]bool{
	SourceStdout:   true,
	SourceStderr:   true,
	SourceExitCode: true,
}

// stepIDRe keeps step ids usable as artifact file names.
var stepIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var templateRefRe = regexp.MustCompile(`\{\{steps\.([^.}]+)\.outputs\.([^}]+)\}\}`)
var templateInputRe = regexp.MustCompile(`\{\{inputs\.([^}]+)\}\}`)

// Validate checks a plan for structural correctness.
func Validate(p *Plan, providedInputs map[string]string) error {
	seen := map[string]int{}
	stepOutputs := map[string]map[string]bool{}

	// Check required inputs (skip if providedInputs is nil, e.g. validate-only mode)
	if providedInputs != nil {
		for name, inp := range p.Inputs {
			if inp.Required {
				if _, ok := providedInputs[name]; !ok && inp.Default == "" {
					return dagerrors.NewValidationError(
						fmt.Sprintf("missing required input %q", name),
						fmt.Sprintf("Provide --input %s=<value>", name),
					)
				}
			}
		}
	}

	for i, s := range p.Steps {
		if s.ID == "" {
			return dagerrors.NewValidationError(fmt.Sprintf("step at index %d has no id", i), "")
		}
		if !stepIDRe.MatchString(s.ID) {
			return dagerrors.NewValidationError(
				fmt.Sprintf("step id %q may only contain letters, digits, '-' and '_'", s.ID),
				"Rename the step, e.g. build_docs",
			)
		}
		if _, dup := seen[s.ID]; dup {
			return dagerrors.NewValidationError(fmt.Sprintf("duplicate step id %q", s.ID), "")
		}
		seen[s.ID] = i

		if s.Run == "" {
			return &dagerrors.RunError{
				Type:    dagerrors.ValidationError,
				StepID:  s.ID,
				Message: "step has no run command",
				Hint:    "Set run: to the command line to execute",
			}
		}

		for name, source := range s.Outputs {
			if !knownSources[source] {
				return &dagerrors.RunError{
					Type:    dagerrors.ValidationError,
					StepID:  s.ID,
					Message: fmt.Sprintf("output %q has unknown source %q", name, source),
					Hint:    "Known sources: stdout, stderr, exit_code",
				}
			}
		}

		for _, name := range template.CommandRefs(s.Run) {
			if _, ok := command.Lookup(name); !ok {
				return &dagerrors.RunError{
					Type:    dagerrors.UnknownCommandName,
					StepID:  s.ID,
					Message: fmt.Sprintf("unknown command %q", name),
					Hint:    "Run `cliche commands` to list known commands",
				}
			}
		}

		for _, ref := range collectTemplateRefs(s) {
			idx, exists := seen[ref.stepID]
			if !exists {
				return dagerrors.NewValidationError(fmt.Sprintf("step %q references unknown step %q", s.ID, ref.stepID), "")
			}
			if idx >= i {
				return dagerrors.NewValidationError(fmt.Sprintf("step %q has forward reference to step %q", s.ID, ref.stepID), "")
			}
			outs, ok := stepOutputs[ref.stepID]
			if !ok {
				return dagerrors.NewValidationError(fmt.Sprintf("step %q references step %q which has no outputs", s.ID, ref.stepID), "")
			}
			if !outs[ref.outputName] {
				return dagerrors.NewValidationError(fmt.Sprintf("step %q references non-existent output %q on step %q", s.ID, ref.outputName, ref.stepID), "")
			}
		}

		for _, m := range templateInputRe.FindAllStringSubmatch(s.Run, -1) {
			if _, ok := p.Inputs[m[1]]; !ok {
				return dagerrors.NewValidationError(fmt.Sprintf("step %q references unknown input %q", s.ID, m[1]), "")
			}
		}

		if len(s.Outputs) > 0 {
			stepOutputs[s.ID] = map[string]bool{}
			for k := range s.Outputs {
				stepOutputs[s.ID][k] = true
			}
		}
	}

	return nil
}

type templateRef struct {
	stepID     string
	outputName string
}

func collectTemplateRefs(s Step) []templateRef {
	var refs []templateRef
	for _, m := range templateRefRe.FindAllStringSubmatch(s.Run, -1) {
		refs = append(refs, templateRef{stepID: m[1], outputName: m[2]})
	}
	return refs
}
