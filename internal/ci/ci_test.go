package ci

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/vvl-tools/vvlci/internal/exec"
	"github.com/vvl-tools/vvlci/internal/orchestrator"
)

// fakeRunner records invocations and fails the ones configured to fail.
type fakeRunner struct {
	runs      [][]string
	runOutput []byte
	streams   [][]string
	workDirs  []string
	failOn    string // command line substring that triggers failErr
	failErr   error
	missing   map[string]bool
}

func (f *fakeRunner) Run(ctx context.Context, workDir string, name string, args ...string) ([]byte, error) {
	f.runs = append(f.runs, append([]string{name}, args...))
	return f.runOutput, nil
}

func (f *fakeRunner) RunStream(ctx context.Context, workDir string, name string, args ...string) error {
	line := append([]string{name}, args...)
	f.streams = append(f.streams, line)
	f.workDirs = append(f.workDirs, workDir)
	if f.failOn != "" && strings.Contains(strings.Join(line, " "), f.failOn) {
		return f.failErr
	}
	return nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/bin/" + name, nil
}

func newTestClient(runner *fakeRunner) *Client {
	return &Client{
		Runner:              runner,
		RepoRoot:            "/src/vvl",
		BuildDir:            "/src/vvl/build",
		Jobs:                4,
		DeploymentTargetMin: "10.15",
	}
}

func TestSetupDarwin_ValidTargets(t *testing.T) {
	tests := []struct {
		name string
		osx  string
	}{
		{"empty target", ""},
		{"min target", "min"},
		{"latest target", "latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MACOSX_DEPLOYMENT_TARGET", "")
			client := newTestClient(&fakeRunner{})
			if err := client.SetupDarwin(context.Background(), tt.osx); err != nil {
				t.Errorf("SetupDarwin(%q) error = %v, want nil", tt.osx, err)
			}
		})
	}
}

func TestSetupDarwin_MinPinsDeploymentTarget(t *testing.T) {
	t.Setenv("MACOSX_DEPLOYMENT_TARGET", "")
	client := newTestClient(&fakeRunner{})

	if err := client.SetupDarwin(context.Background(), "min"); err != nil {
		t.Fatalf("SetupDarwin() error = %v", err)
	}
	if got := os.Getenv("MACOSX_DEPLOYMENT_TARGET"); got != "10.15" {
		t.Errorf("MACOSX_DEPLOYMENT_TARGET = %q, want %q", got, "10.15")
	}
}

func TestSetupDarwin_ReportsToolchainVersion(t *testing.T) {
	runner := &fakeRunner{runOutput: []byte("cmake version 3.29.2\n\nCMake suite maintained by Kitware\n")}
	client := newTestClient(runner)

	if err := client.SetupDarwin(context.Background(), ""); err != nil {
		t.Fatalf("SetupDarwin() error = %v", err)
	}

	if len(runner.runs) != 1 {
		t.Fatalf("SetupDarwin() issued %d queries, want 1", len(runner.runs))
	}
	if got := strings.Join(runner.runs[0], " "); got != "cmake --version" {
		t.Errorf("query = %q, want %q", got, "cmake --version")
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{"multi-line output", "cmake version 3.29.2\nKitware\n", "cmake version 3.29.2"},
		{"single line", "cmake version 3.29.2", "cmake version 3.29.2"},
		{"leading whitespace trimmed", "\n  ctest 3.29\n", "ctest 3.29"},
		{"empty output", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstLine([]byte(tt.out)); got != tt.want {
				t.Errorf("firstLine(%q) = %q, want %q", tt.out, got, tt.want)
			}
		})
	}
}

func TestSetupDarwin_UnknownTarget(t *testing.T) {
	client := newTestClient(&fakeRunner{})

	err := client.SetupDarwin(context.Background(), "oldest")
	if err == nil {
		t.Fatal("SetupDarwin() error = nil, want error for unknown target")
	}
	if !strings.Contains(err.Error(), "oldest") {
		t.Errorf("error = %v, want it to name the bad target", err)
	}
}

func TestSetupDarwin_MissingTool(t *testing.T) {
	client := newTestClient(&fakeRunner{missing: map[string]bool{"cmake": true}})

	err := client.SetupDarwin(context.Background(), "")
	if err == nil {
		t.Fatal("SetupDarwin() error = nil, want error for missing cmake")
	}
	if !strings.Contains(err.Error(), "cmake") {
		t.Errorf("error = %v, want it to name the missing tool", err)
	}
}

func TestBuildVVL_InvokesConfigureBuildInstall(t *testing.T) {
	runner := &fakeRunner{}
	client := newTestClient(runner)

	opts := orchestrator.BuildOptions{
		Configuration: "Release",
		CMakeArgs:     []string{"-DVVL_ENABLE_ASAN=ON"},
		BuildTests:    "OFF",
	}
	if err := client.BuildVVL(context.Background(), opts); err != nil {
		t.Fatalf("BuildVVL() error = %v", err)
	}

	if len(runner.streams) != 3 {
		t.Fatalf("BuildVVL() ran %d commands, want 3", len(runner.streams))
	}

	configure := strings.Join(runner.streams[0], " ")
	for _, want := range []string{
		"cmake -S /src/vvl -B /src/vvl/build",
		"CMAKE_BUILD_TYPE=Release",
		"BUILD_TESTS=OFF",
		"UPDATE_DEPS=ON",
		"-DVVL_ENABLE_ASAN=ON",
	} {
		if !strings.Contains(configure, want) {
			t.Errorf("configure = %q, want it to contain %q", configure, want)
		}
	}

	build := strings.Join(runner.streams[1], " ")
	for _, want := range []string{"cmake --build /src/vvl/build", "--config Release", "--parallel 4"} {
		if !strings.Contains(build, want) {
			t.Errorf("build = %q, want it to contain %q", build, want)
		}
	}

	install := strings.Join(runner.streams[2], " ")
	for _, want := range []string{"cmake --install /src/vvl/build", "--prefix /src/vvl/build/install", "--config Release"} {
		if !strings.Contains(install, want) {
			t.Errorf("install = %q, want it to contain %q", install, want)
		}
	}
}

func TestBuildVVL_PassThroughArgsComeLast(t *testing.T) {
	client := newTestClient(&fakeRunner{})

	args := client.configureArgs(orchestrator.BuildOptions{
		Configuration: "Debug",
		CMakeArgs:     []string{"-DUPDATE_DEPS=OFF"},
		BuildTests:    "ON",
	})

	if args[len(args)-1] != "-DUPDATE_DEPS=OFF" {
		t.Errorf("configureArgs() last = %q, want pass-through args last so they can override", args[len(args)-1])
	}
}

func TestBuildVVL_StopsAtFirstFailure(t *testing.T) {
	cmdErr := &exec.CommandError{Cmd: []string{"cmake", "-S", "/src/vvl"}, ReturnCode: 2}
	runner := &fakeRunner{failOn: "-S", failErr: cmdErr}
	client := newTestClient(runner)

	err := client.BuildVVL(context.Background(), orchestrator.BuildOptions{Configuration: "Release", BuildTests: "OFF"})
	if !errors.Is(err, cmdErr) {
		t.Fatalf("BuildVVL() error = %v, want the configure CommandError", err)
	}
	if len(runner.streams) != 1 {
		t.Errorf("BuildVVL() ran %d commands after configure failure, want 1", len(runner.streams))
	}
}

func TestCheckVVL(t *testing.T) {
	runner := &fakeRunner{}
	client := newTestClient(runner)

	if err := client.CheckVVL(context.Background(), "Release"); err != nil {
		t.Fatalf("CheckVVL() error = %v", err)
	}

	if len(runner.streams) != 1 {
		t.Fatalf("CheckVVL() ran %d commands, want 1", len(runner.streams))
	}
	check := strings.Join(runner.streams[0], " ")
	for _, want := range []string{"ctest", "-C Release", "--output-on-failure", "--parallel 4"} {
		if !strings.Contains(check, want) {
			t.Errorf("check = %q, want it to contain %q", check, want)
		}
	}
	if runner.workDirs[0] != "/src/vvl/build" {
		t.Errorf("CheckVVL() workDir = %q, want the build dir", runner.workDirs[0])
	}
}

func TestJobs_DefaultsToOne(t *testing.T) {
	client := &Client{Jobs: 0}
	if got := client.jobs(); got != 1 {
		t.Errorf("jobs() = %d, want 1", got)
	}
}
