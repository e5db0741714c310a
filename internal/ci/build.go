package ci

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/vvl-tools/vvlci/internal/orchestrator"
)

// BuildVVL configures, builds, and installs the validation layers.
// Each cmake invocation streams its output; a non-zero exit surfaces as
// a *exec.CommandError carrying the failed command line.
func (c *Client) BuildVVL(ctx context.Context, opts orchestrator.BuildOptions) error {
	banner("Configuring %s build", opts.Configuration)
	if err := c.Runner.RunStream(ctx, "", "cmake", c.configureArgs(opts)...); err != nil {
		return err
	}

	banner("Building validation layers (%s)", opts.Configuration)
	if err := c.Runner.RunStream(ctx, "", "cmake", c.buildArgs(opts.Configuration)...); err != nil {
		return err
	}

	banner("Installing validation layers")
	return c.Runner.RunStream(ctx, "", "cmake", c.installArgs(opts.Configuration)...)
}

// configureArgs assembles the configure invocation. Extra cmake
// arguments pass through verbatim, after the fixed definitions so they
// can override them.
func (c *Client) configureArgs(opts orchestrator.BuildOptions) []string {
	args := []string{
		"-S", c.RepoRoot,
		"-B", c.BuildDir,
		"-D", "CMAKE_BUILD_TYPE=" + opts.Configuration,
		"-D", "BUILD_TESTS=" + opts.BuildTests,
		"-D", "UPDATE_DEPS=ON",
	}
	return append(args, opts.CMakeArgs...)
}

// buildArgs assembles the build invocation.
func (c *Client) buildArgs(configuration string) []string {
	return []string{
		"--build", c.BuildDir,
		"--config", configuration,
		"--parallel", strconv.Itoa(c.jobs()),
	}
}

// installArgs assembles the install invocation.
func (c *Client) installArgs(configuration string) []string {
	return []string{
		"--install", c.BuildDir,
		"--prefix", c.InstallPrefix(),
		"--config", configuration,
	}
}

// InstallPrefix returns where the built layers are staged.
func (c *Client) InstallPrefix() string {
	return filepath.Join(c.BuildDir, "install")
}

// jobs returns the configured parallelism, defaulting to 1.
func (c *Client) jobs() int {
	if c.Jobs < 1 {
		return 1
	}
	return c.Jobs
}

// String identifies the tree pair in logs.
func (c *Client) String() string {
	return fmt.Sprintf("ci.Client(repo=%s build=%s)", c.RepoRoot, c.BuildDir)
}
