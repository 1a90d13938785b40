package cmd

import (
	"fmt"
	"os"

	"github.com/esteemapp/surfer-core/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initConfigCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Writes a default config file.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "surfer.toml"
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}

		cmd.SilenceUsage = true
		if err := config.WriteConfigFile(path, config.Default()); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Config written to", path)
		return nil
	},
}

func initCmd() *cobra.Command {
	initConfigCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
	return initConfigCmd
}
