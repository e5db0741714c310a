package exec

import (
	"fmt"
	"strings"
)

// CommandError reports a delegated command that exited non-zero.
// It carries the full argument list and the command's own return code
// so callers can surface both to the user and reuse the code as the
// process exit status.
type CommandError struct {
	// Cmd is the command line as invoked, executable first.
	Cmd []string
	// ReturnCode is the command's exit status.
	ReturnCode int
}

// Error renders the space-joined command line and its return code.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed with return code %d", e.CommandLine(), e.ReturnCode)
}

// CommandLine returns the space-joined argument list.
func (e *CommandError) CommandLine() string {
	return strings.Join(e.Cmd, " ")
}
