// Package exec provides an interface for running the external build tools.
package exec

import (
	"context"
)

// CommandRunner defines the interface for running external commands.
// This abstraction allows mocking command execution in tests.
type CommandRunner interface {
	// Run executes a command and returns combined stdout/stderr output.
	// The working directory is set to workDir if non-empty.
	Run(ctx context.Context, workDir string, name string, args ...string) (output []byte, err error)

	// RunStream executes a command with stdout/stderr inherited from the
	// process, so long build and test logs stream as they are produced.
	// A non-zero exit is returned as a *CommandError.
	RunStream(ctx context.Context, workDir string, name string, args ...string) error

	// LookPath reports whether the named tool is available, returning
	// its resolved path.
	LookPath(name string) (string, error)
}
