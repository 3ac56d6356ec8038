package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/quizforge/quizforge/internal/domain"
)

// SubprocessSandbox runs submissions with the local python3 interpreter
// in a throwaway temp directory. Isolation is weaker than the Docker
// backend; it is the development default.
type SubprocessSandbox struct {
	pythonPath string
	timeout    time.Duration
}

// SubprocessConfig holds configuration for the subprocess sandbox
type SubprocessConfig struct {
	PythonPath string        // default: python3
	Timeout    time.Duration // default: DefaultTimeout
}

// NewSubprocessSandbox creates a local python3 sandbox
func NewSubprocessSandbox(cfg SubprocessConfig) *SubprocessSandbox {
	if cfg.PythonPath == "" {
		cfg.PythonPath = "python3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &SubprocessSandbox{
		pythonPath: cfg.PythonPath,
		timeout:    cfg.Timeout,
	}
}

// Run executes the submission against its test cases
func (s *SubprocessSandbox) Run(ctx context.Context, code string, cases []domain.TestCase) (*Result, error) {
	tmpDir, err := os.MkdirTemp("", "quizforge-run-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	casesJSON, err := encodeCases(cases)
	if err != nil {
		return nil, fmt.Errorf("encode test cases: %w", err)
	}

	files := map[string][]byte{
		"solution.py": []byte(code),
		"harness.py":  []byte(harnessScript),
		"cases.json":  casesJSON,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), content, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, s.pythonPath, "harness.py")
	cmd.Dir = tmpDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return &Result{SetupError: "Execution timed out."}, nil
	}
	if runErr != nil {
		return nil, fmt.Errorf("run harness: %w: %s", runErr, truncateOutput(stderr.String()))
	}

	return parseHarnessOutput(stdout.String())
}

// Available probes the interpreter
func (s *SubprocessSandbox) Available(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, s.pythonPath, "--version")
	return cmd.Run() == nil
}

var _ CodeSandbox = (*SubprocessSandbox)(nil)
