package internal

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/viam-labs/modpack/internal/pipeline"
)

var (
	buildStatic bool
	buildType   string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the module into its package folder",
	Long: `Build resolves dependencies, compiles the module and installs the
package folder, without producing a deployment archive.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildStatic, "static", false, "Link the module and all dependencies statically")
	buildCmd.Flags().StringVar(&buildType, "build-type", "Release", "CMake build type")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := pipeline.Config{
		SourceDir:  sourceDir,
		BuildType:  buildType,
		SkipDeploy: true,
		Logger:     log.Default(),
	}
	if buildStatic {
		shared := false
		cfg.Shared = &shared
	}

	res, err := pipeline.New(cfg).Run(context.Background())
	if err != nil {
		return fmt.Errorf("failed to build: %w", err)
	}

	log.Info("build complete",
		"module", res.Identity.Name,
		"version", res.Identity.Version,
		"package", res.PackageDir)
	return nil
}
