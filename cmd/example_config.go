package cmd

import (
	"fmt"

	"github.com/DefiantLabs/bridge-market-data/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exampleConfigCmd)
}

var exampleConfigCmd = &cobra.Command{
	Use:   "example-config",
	Short: "Print a config.toml holding the built in currency table and gas policy.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := config.ExampleTOML()
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}
