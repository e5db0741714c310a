package ci

import (
	"context"
	"strconv"
)

// CheckVVL runs the test suite for the given configuration inside the
// build tree. Test binaries must already have been built.
func (c *Client) CheckVVL(ctx context.Context, configuration string) error {
	banner("Checking validation layers (%s)", configuration)
	return c.Runner.RunStream(ctx, c.BuildDir, "ctest", c.checkArgs(configuration)...)
}

// checkArgs assembles the ctest invocation.
func (c *Client) checkArgs(configuration string) []string {
	return []string{
		"-C", configuration,
		"--output-on-failure",
		"--parallel", strconv.Itoa(c.jobs()),
	}
}
