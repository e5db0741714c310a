// Package ci implements the build collaborator driven by the pipeline:
// macOS environment setup, the validation-layer cmake build, and the
// ctest check step.
package ci

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/vvl-tools/vvlci/internal/exec"
	"github.com/vvl-tools/vvlci/internal/orchestrator"
	"github.com/vvl-tools/vvlci/pkg/models"
)

// requiredTools must be on PATH before any build step runs.
var requiredTools = []string{"cmake", "ctest"}

// Client drives the external build tools for one source/build tree pair.
type Client struct {
	// Runner executes the delegated commands.
	Runner exec.CommandRunner
	// RepoRoot is the validation-layer source tree.
	RepoRoot string
	// BuildDir is the build tree.
	BuildDir string
	// Jobs is the parallelism for build and check.
	Jobs int
	// DeploymentTargetMin is the MACOSX_DEPLOYMENT_TARGET applied for
	// the "min" selector.
	DeploymentTargetMin string
}

// NewClient creates a Client running real commands.
func NewClient(repoRoot, buildDir string, jobs int, deploymentTargetMin string) *Client {
	return &Client{
		Runner:              exec.NewRunner(),
		RepoRoot:            repoRoot,
		BuildDir:            buildDir,
		Jobs:                jobs,
		DeploymentTargetMin: deploymentTargetMin,
	}
}

// SetupDarwin prepares the macOS environment for the given target
// selector: validates the selector, pins the deployment target for
// "min", and verifies the required tools are installed.
func (c *Client) SetupDarwin(ctx context.Context, osx string) error {
	banner("Setting up darwin environment (osx=%s)", displayTarget(osx))

	target := models.OSXTarget(osx)
	if !target.Valid() {
		return fmt.Errorf("unrecognized osx target %q (want %q or %q)", osx, models.OSXTargetMin, models.OSXTargetLatest)
	}

	if target == models.OSXTargetMin {
		if err := os.Setenv("MACOSX_DEPLOYMENT_TARGET", c.DeploymentTargetMin); err != nil {
			return fmt.Errorf("set deployment target: %w", err)
		}
	}

	for _, tool := range requiredTools {
		if _, err := c.Runner.LookPath(tool); err != nil {
			return fmt.Errorf("%s not found in PATH: %w", tool, err)
		}
	}

	// Report the toolchain version so CI logs pin down what built the run.
	if out, err := c.Runner.Run(ctx, "", "cmake", "--version"); err == nil {
		if line := firstLine(out); line != "" {
			fmt.Printf("using %s\n", line)
		}
	}

	return nil
}

// firstLine returns the first non-empty line of command output.
func firstLine(out []byte) string {
	trimmed := strings.TrimSpace(string(out))
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// banner prints a colored step heading the way CI logs read.
func banner(format string, args ...interface{}) {
	color.New(color.FgCyan, color.Bold).Printf("== "+format+"\n", args...)
}

// displayTarget renders the osx selector for log output.
func displayTarget(osx string) string {
	if osx == "" {
		return "default"
	}
	return osx
}

// Verify Client implements the pipeline's delegate contract at compile time.
var _ orchestrator.Delegates = (*Client)(nil)
