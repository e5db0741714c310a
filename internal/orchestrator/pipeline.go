// Package orchestrator sequences the CI pipeline: darwin setup, the
// validation-layer build, and its check step, mapping any failure to a
// deterministic process exit code.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvl-tools/vvlci/internal/exec"
	"github.com/vvl-tools/vvlci/pkg/models"
)

// BuildOptions carries everything the build step needs.
type BuildOptions struct {
	// Configuration is the build variant (Debug, Release, ...).
	Configuration string
	// CMakeArgs are extra arguments passed through to the configure step.
	CMakeArgs []string
	// BuildTests toggles building the test binaries, "ON" or "OFF".
	BuildTests string
}

// Delegates defines the external build collaborator the pipeline drives.
// This abstraction allows faking the setup/build/check steps in tests.
type Delegates interface {
	// SetupDarwin prepares the macOS environment for the given target selector.
	SetupDarwin(ctx context.Context, osx string) error

	// BuildVVL configures, builds, and installs the validation layers.
	BuildVVL(ctx context.Context, opts BuildOptions) error

	// CheckVVL runs the test suite for the given configuration.
	CheckVVL(ctx context.Context, configuration string) error
}

// Recorder persists completed runs. The history store implements it.
type Recorder interface {
	Record(run models.Run) (models.Run, error)
}

// Pipeline runs the setup, build, and check steps strictly in sequence,
// with no retries. Each step must complete before the next begins.
type Pipeline struct {
	// Delegates performs the actual setup/build/check work.
	Delegates Delegates
	// Recorder, if non-nil, receives a record of every run. Recording is
	// best-effort and never changes the exit code.
	Recorder Recorder
	// Out receives the diagnostic failure lines. Defaults to os.Stdout.
	Out io.Writer

	// Configuration is the build variant to build and check.
	Configuration string
	// OSX is the macOS target selector, empty when unset.
	OSX string
	// CMakeArgs are passed through to the configure step.
	CMakeArgs []string
}

// Run executes the pipeline and returns the process exit code:
// 0 on success, the failing command's own return code on a subprocess
// failure, 1 on any other error.
func (p *Pipeline) Run(ctx context.Context) int {
	started := time.Now()
	code := p.run(ctx)
	p.record(started, code)
	return code
}

func (p *Pipeline) run(ctx context.Context) int {
	if err := p.Delegates.SetupDarwin(ctx, p.OSX); err != nil {
		return p.fail(err)
	}
	return p.runBuildCheck(ctx)
}

// RunBuildCheck re-runs only the build and check steps. Watch mode uses
// it after the initial pipeline already performed setup.
func (p *Pipeline) RunBuildCheck(ctx context.Context) int {
	started := time.Now()
	code := p.runBuildCheck(ctx)
	p.record(started, code)
	return code
}

func (p *Pipeline) runBuildCheck(ctx context.Context) int {
	opts := BuildOptions{
		Configuration: p.Configuration,
		CMakeArgs:     p.CMakeArgs,
		BuildTests:    "OFF",
	}
	if err := p.Delegates.BuildVVL(ctx, opts); err != nil {
		return p.fail(err)
	}

	if err := p.Delegates.CheckVVL(ctx, p.Configuration); err != nil {
		return p.fail(err)
	}

	return 0
}

// fail prints the diagnostic line for the failure and returns the exit
// code it maps to.
func (p *Pipeline) fail(err error) int {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}

	var cmdErr *exec.CommandError
	if errors.As(err, &cmdErr) {
		fmt.Fprintf(out, "Command %q failed with return code %d\n", cmdErr.CommandLine(), cmdErr.ReturnCode)
		return clampExitCode(cmdErr.ReturnCode)
	}

	fmt.Fprintf(out, "An unknown error occurred: %v\n", err)
	return 1
}

// record persists the run when a recorder is configured.
func (p *Pipeline) record(started time.Time, code int) {
	if p.Recorder == nil {
		return
	}
	_, err := p.Recorder.Record(models.Run{
		Configuration: p.Configuration,
		OSX:           p.OSX,
		ExitCode:      code,
		StartedAt:     started,
		Duration:      time.Since(started),
	})
	if err != nil {
		out := p.Out
		if out == nil {
			out = os.Stdout
		}
		fmt.Fprintf(out, "warning: recording run history: %v\n", err)
	}
}

// clampExitCode keeps a subprocess return code usable as a process exit
// status. Codes outside [1,255] (e.g. signal deaths reported as -1)
// collapse to 1.
func clampExitCode(code int) int {
	if code < 1 || code > 255 {
		return 1
	}
	return code
}
