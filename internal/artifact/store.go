package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the directory, relative to the working directory, holding runs.
const DirName = ".cliche"

// Store manages artifact storage for a run.
type Store struct {
	RunID   string
	BaseDir string // <workDir>/.cliche/runs/<run_id>
}

// New creates a store for a given run ID, rooted at workDir.
func New(runID, workDir string) (*Store, error) {
	base := filepath.Join(workDir, DirName, "runs", runID)
	if err := os.MkdirAll(filepath.Join(base, "steps"), 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact dir: %w", err)
	}
	return &Store{RunID: runID, BaseDir: base}, nil
}

// WriteStepOutput writes the non-empty stdout/stderr of a step.
func (s *Store) WriteStepOutput(stepID, stdout, stderr string) error {
	if stdout != "" {
		if err := s.write(filepath.Join("steps", stepID+".stdout"), []byte(stdout)); err != nil {
			return err
		}
	}
	if stderr != "" {
		if err := s.write(filepath.Join("steps", stepID+".stderr"), []byte(stderr)); err != nil {
			return err
		}
	}
	return nil
}

// WriteResult writes the final result JSON.
func (s *Store) WriteResult(result any) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return s.write("result.json", data)
}

func (s *Store) write(rel string, data []byte) error {
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("artifact path %q escapes the run directory", rel)
	}
	if err := os.WriteFile(filepath.Join(s.BaseDir, rel), data, 0o644); err != nil {
		return fmt.Errorf("writing artifact %s: %w", rel, err)
	}
	return nil
}
