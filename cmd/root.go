package cmd

import (
	"github.com/esteemapp/surfer-core/config"
	"github.com/esteemapp/surfer-core/database"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "surfer",
	Short: "Signs and broadcasts Steem operations for locally imported accounts.",
}

func RootCmd() *cobra.Command {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the toml config file")

	rootCmd.AddCommand(
		initCmd(),
		migrateCmd(),
		serveCmd(),
		pinCmd(),
		accountCmd(),
	)

	return rootCmd
}

func Execute() error {
	return RootCmd().Execute()
}

// openDb loads the config and returns an initialized store.
func openDb() (*config.Surfer, database.Database, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	db := database.NewDb(cfg)
	if err := db.Init(); err != nil {
		return nil, nil, err
	}

	return cfg, db, nil
}
