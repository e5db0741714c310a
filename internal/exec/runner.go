package exec

import (
	"context"
	"os"
	"os/exec"
)

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

// NewRunner creates a new ExecRunner.
func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes a command and returns combined stdout/stderr output.
func (r *ExecRunner) Run(ctx context.Context, workDir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, wrapExit(err, name, args)
	}
	return out, nil
}

// RunStream executes a command with stdout/stderr inherited, so output
// streams directly to the terminal or CI log.
func (r *ExecRunner) RunStream(ctx context.Context, workDir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return wrapExit(err, name, args)
	}
	return nil
}

// LookPath resolves a tool name against PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// wrapExit converts a non-zero exit into a *CommandError carrying the
// argument list and return code. Other failures (tool missing, context
// canceled) pass through unchanged.
func wrapExit(err error, name string, args []string) error {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return &CommandError{
			Cmd:        append([]string{name}, args...),
			ReturnCode: exitErr.ExitCode(),
		}
	}
	return err
}

// Verify ExecRunner implements CommandRunner at compile time.
var _ CommandRunner = (*ExecRunner)(nil)
