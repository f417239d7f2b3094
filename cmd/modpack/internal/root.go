package internal

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	sourceDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "modpack",
	Short: "modpack builds and packages native modules for the module runtime",
	Long: `modpack orchestrates the build of a native module: it discovers the
module version from the build descriptor, resolves dependencies with
linkage propagation, drives the native build, and assembles the
deployable archive.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&sourceDir, "source", "C", ".", "Module source directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output")
}

// initConfig loads the optional modpack config file and environment
// overrides. Flags bound to viper take precedence over both.
func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if cfgDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(cfgDir, "modpack"))
	}
	viper.SetEnvPrefix("MODPACK")
	viper.AutomaticEnv()

	// A missing config file is fine; only report real read failures.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			log.Warn("failed to read config file", "err", err)
		}
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
