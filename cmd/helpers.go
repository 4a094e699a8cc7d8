package cmd

import (
	"strings"

	"github.com/tonix-tuft/cliche/executor"
	"github.com/tonix-tuft/cliche/internal/plan"
)

// parseInputs converts ["key=value", ...] to a map.
func parseInputs(raw []string) map[string]string {
	m := map[string]string{}
	for _, kv := range raw {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			m[parts[0]] = parts[1]
		}
	}
	return m
}

// applyDefaults fills missing inputs from the plan's declared defaults.
func applyDefaults(p *plan.Plan, inputs map[string]string) {
	for name, inp := range p.Inputs {
		if _, ok := inputs[name]; !ok && inp.Default != "" {
			inputs[name] = inp.Default
		}
	}
}

func newExecutor() *executor.ProcExecutor {
	return executor.New(cfg.ExecutorOptions(logger)...)
}

// workDir returns the configured directory, or "." when unset.
func workDir() string {
	if cfg.Dir != "" {
		return cfg.Dir
	}
	return "."
}
