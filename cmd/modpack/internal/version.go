package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/viam-labs/modpack/internal/descriptor"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the module version from the build descriptor",
	Long:  `Version extracts the project version declared in CMakeLists.txt.`,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(filepath.Join(sourceDir, "CMakeLists.txt"))
	if err != nil {
		return fmt.Errorf("failed to read build descriptor: %w", err)
	}
	version, err := descriptor.ResolveVersion(content)
	if err != nil {
		return err
	}
	fmt.Println(version)
	return nil
}
