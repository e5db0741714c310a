package models

import "time"

// Run records one orchestrated pipeline run: a darwin setup, a build,
// and a check, collapsed into the exit code the process terminated with.
type Run struct {
	// ID uniquely identifies the run.
	ID string
	// Configuration is the build variant the run was invoked with.
	Configuration string
	// OSX is the macOS target selector, empty when unset.
	OSX string
	// ExitCode is the terminal status of the run, in [0,255].
	ExitCode int
	// StartedAt is when the pipeline began.
	StartedAt time.Time
	// Duration is how long the pipeline took end to end.
	Duration time.Duration
}

// Succeeded returns true if the run exited with status 0.
func (r Run) Succeeded() bool {
	return r.ExitCode == 0
}
