package cli

import (
	"fmt"

	"github.com/predictcheck/hindsight/internal/config"
	"github.com/spf13/cobra"
)

// generateConfigCmd writes a sample configuration file.
var generateConfigCmd = &cobra.Command{
	Use:   "generate-config [path]",
	Short: "Write a sample configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.GenerateSample(path); err != nil {
			return fmt.Errorf("failed to write sample config: %w", err)
		}
		fmt.Printf("Sample configuration written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateConfigCmd)
}
