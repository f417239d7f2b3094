package internal

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/viam-labs/modpack/internal/pipeline"
)

var deployStatic bool

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Build the module and assemble its deployment archive",
	Long: `Deploy runs the full pipeline: version discovery, dependency
resolution, native build, and assembly of module.tar.gz.`,
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().BoolVar(&deployStatic, "static", false, "Link the module and all dependencies statically")
	deployCmd.Flags().String("build-type", "Release", "CMake build type")
	deployCmd.Flags().String("profile", "", "Deployment profile (overrides the recipe)")
	deployCmd.Flags().StringP("output", "o", "", "Deploy root for the archive (defaults to the workspace)")
	viper.BindPFlag("build-type", deployCmd.Flags().Lookup("build-type"))
	viper.BindPFlag("profile", deployCmd.Flags().Lookup("profile"))
	viper.BindPFlag("output", deployCmd.Flags().Lookup("output"))
	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	cfg := pipeline.Config{
		SourceDir:  sourceDir,
		BuildType:  viper.GetString("build-type"),
		Profile:    viper.GetString("profile"),
		DeployRoot: viper.GetString("output"),
		Logger:     log.Default(),
	}
	if deployStatic {
		shared := false
		cfg.Shared = &shared
	}

	res, err := pipeline.New(cfg).Run(context.Background())
	if err != nil {
		return fmt.Errorf("failed to deploy: %w", err)
	}

	log.Info("deployment archive ready",
		"module", res.Identity.Name,
		"version", res.Identity.Version,
		"archive", res.Archive,
		"members", len(res.Members))
	return nil
}
