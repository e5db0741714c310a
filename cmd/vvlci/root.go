package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vvl-tools/vvlci/internal/ci"
	"github.com/vvl-tools/vvlci/internal/config"
	"github.com/vvl-tools/vvlci/internal/history"
	"github.com/vvl-tools/vvlci/internal/orchestrator"
	"github.com/vvl-tools/vvlci/pkg/models"
)

var (
	rootConfiguration string
	rootOSX           string
	rootCMakeArgs     []string
	rootRepoRoot      string
	rootBuildDir      string
	rootWatch         bool
)

var rootCmd = &cobra.Command{
	Use:   "vvlci",
	Short: "CI build driver for the Vulkan Validation Layers",
	Long: `vvlci drives the desktop CI pipeline for the Vulkan Validation Layers:
it prepares the macOS environment, configures and builds the layers with
cmake, and runs the ctest check step.

The three steps run strictly in sequence. On a failed delegated command
the process exits with that command's own return code; any other failure
exits with status 1.

Extra build-system arguments pass through verbatim:
  vvlci --configuration Debug --cmake -DVVL_ENABLE_ASAN=ON`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&rootConfiguration, "configuration", "", "Build variant: Debug, Release, RelWithDebInfo, or MinSizeRel")
	rootCmd.Flags().StringVar(&rootOSX, "osx", "", "macOS target selector: min or latest")
	rootCmd.Flags().StringArrayVar(&rootCMakeArgs, "cmake", nil, "Extra argument passed through to cmake (repeatable)")
	rootCmd.Flags().StringVar(&rootRepoRoot, "repo", "", "Validation-layer source tree (default: config build.repo_root)")
	rootCmd.Flags().StringVar(&rootBuildDir, "build-dir", "", "Build tree (default: config build.dir)")
	rootCmd.Flags().BoolVar(&rootWatch, "watch", false, "Re-run build and check when the source tree changes")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if rootConfiguration != "" {
		cfg.Build.Configuration = rootConfiguration
	}
	if rootRepoRoot != "" {
		cfg.Build.RepoRoot = rootRepoRoot
	}
	if rootBuildDir != "" {
		cfg.Build.Dir = rootBuildDir
	}

	if !models.Configuration(cfg.Build.Configuration).Valid() {
		return fmt.Errorf("unrecognized configuration %q (want one of %v)", cfg.Build.Configuration, models.Configurations())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := ci.NewClient(cfg.Build.RepoRoot, cfg.BuildDir(), cfg.Build.Jobs, cfg.Darwin.DeploymentTargetMin)

	pipeline := &orchestrator.Pipeline{
		Delegates:     client,
		Recorder:      openRecorder(cfg),
		Configuration: cfg.Build.Configuration,
		OSX:           rootOSX,
		CMakeArgs:     rootCMakeArgs,
	}

	code := pipeline.Run(ctx)

	if rootWatch {
		code = watchLoop(ctx, cfg, pipeline, code)
	}

	if code != 0 {
		os.Exit(code)
	}
	return nil
}

// watchLoop re-runs build and check on source changes until interrupted,
// then reports the last run's exit code. Root and build paths are made
// absolute so the build tree is skipped regardless of how it was given.
func watchLoop(ctx context.Context, cfg *config.Config, pipeline *orchestrator.Pipeline, lastCode int) int {
	root, err := filepath.Abs(cfg.Build.RepoRoot)
	if err != nil {
		fmt.Printf("An unknown error occurred: %v\n", err)
		return 1
	}
	buildDir, err := filepath.Abs(cfg.BuildDir())
	if err != nil {
		fmt.Printf("An unknown error occurred: %v\n", err)
		return 1
	}

	watcher := &orchestrator.Watcher{
		Root:      root,
		Skip:      []string{".git"},
		SkipPaths: []string{buildDir},
	}

	err = watcher.Watch(ctx, func(ctx context.Context) {
		lastCode = pipeline.RunBuildCheck(ctx)
	})
	if err != nil {
		fmt.Printf("An unknown error occurred: %v\n", err)
		return 1
	}
	return lastCode
}

// openRecorder opens the run-history store, or returns nil when history
// is disabled or unavailable. History is best-effort.
func openRecorder(cfg *config.Config) orchestrator.Recorder {
	if !cfg.History.Enabled {
		return nil
	}

	path := cfg.History.Path
	if path == "" {
		path = history.DefaultPath()
	}

	store, err := history.Open(path)
	if err != nil {
		fmt.Printf("warning: run history unavailable: %v\n", err)
		return nil
	}
	return store
}
