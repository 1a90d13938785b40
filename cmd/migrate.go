package cmd

import (
	"github.com/sisu-network/lib/log"
	"github.com/spf13/cobra"
)

var migrateDbCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates or upgrades the secret store schema.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		_, db, err := openDb()
		if err != nil {
			return err
		}
		defer db.Close()

		log.Info("Secret store is up to date")
		return nil
	},
}

func migrateCmd() *cobra.Command {
	return migrateDbCmd
}
