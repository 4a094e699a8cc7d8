package template

import (
	"fmt"
	"regexp"

	"github.com/tonix-tuft/cliche/command"
)

var stepRefRe = regexp.MustCompile(`\{\{steps\.([^.}]+)\.outputs\.([^}]+)\}\}`)
var inputRefRe = regexp.MustCompile(`\{\{inputs\.([^}]+)\}\}`)
var cmdRefRe = regexp.MustCompile(`\{\{cmd\.([^}]+)\}\}`)

// Context holds available values for template resolution.
type Context struct {
	Inputs      map[string]string
	StepOutputs map[string]map[string]string // stepID → outputName → value
}

// Resolve replaces all {{steps.X.outputs.Y}}, {{inputs.Z}} and {{cmd.N}} in s.
func Resolve(s string, ctx *Context) (string, error) {
	var resolveErr error

	result := stepRefRe.ReplaceAllStringFunc(s, func(match string) string {
		m := stepRefRe.FindStringSubmatch(match)
		stepID, outputName := m[1], m[2]
		outs, ok := ctx.StepOutputs[stepID]
		if !ok {
			resolveErr = fmt.Errorf("unresolved step reference %q", stepID)
			return match
		}
		val, ok := outs[outputName]
		if !ok {
			resolveErr = fmt.Errorf("unresolved output %q on step %q", outputName, stepID)
			return match
		}
		return val
	})
	if resolveErr != nil {
		return "", resolveErr
	}

	result = inputRefRe.ReplaceAllStringFunc(result, func(match string) string {
		name := inputRefRe.FindStringSubmatch(match)[1]
		val, ok := ctx.Inputs[name]
		if !ok {
			resolveErr = fmt.Errorf("unresolved input %q", name)
			return match
		}
		return val
	})
	if resolveErr != nil {
		return "", resolveErr
	}

	return ResolveCommands(result)
}

// ResolveCommands replaces {{cmd.N}} with the token of the named command.
func ResolveCommands(s string) (string, error) {
	var resolveErr error
	result := cmdRefRe.ReplaceAllStringFunc(s, func(match string) string {
		name := cmdRefRe.FindStringSubmatch(match)[1]
		p, ok := command.Lookup(name)
		if !ok {
			resolveErr = fmt.Errorf("unknown command %q", name)
			return match
		}
		return p.String()
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return result, nil
}

// CommandRefs returns the command names referenced in s.
func CommandRefs(s string) []string {
	var names []string
	for _, m := range cmdRefRe.FindAllStringSubmatch(s, -1) {
		names = append(names, m[1])
	}
	return names
}
