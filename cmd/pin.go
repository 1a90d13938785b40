package cmd

import (
	"fmt"

	"github.com/esteemapp/surfer-core/vault"
	"github.com/spf13/cobra"
)

var (
	newPin string
	oldPin string
)

var pinSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Sets the pin protecting imported accounts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(newPin) < 4 {
			return fmt.Errorf("pin must have at least 4 characters")
		}
		cmd.SilenceUsage = true

		cfg, db, err := openDb()
		if err != nil {
			return err
		}
		defer db.Close()

		// Secrets are encrypted with the pin, so it cannot change once
		// accounts exist.
		accounts, err := db.ListAccounts()
		if err != nil {
			return err
		}
		if len(accounts) > 0 {
			return fmt.Errorf("%d accounts are encrypted with the current pin", len(accounts))
		}

		if db.GetItem(vault.PinHashKey, "") != "" {
			if err := vault.NewPinGuard(db, cfg.MaxPinTries, nil).Verify([]byte(oldPin)); err != nil {
				return err
			}
		}

		hash, err := vault.HashPin([]byte(newPin))
		if err != nil {
			return err
		}

		return db.SetItem(vault.PinHashKey, hash)
	},
}

var pinRootCmd = &cobra.Command{
	Use:   "pin",
	Short: "Manages the session pin.",
}

func pinCmd() *cobra.Command {
	pinSetCmd.Flags().StringVar(&newPin, "pin", "", "the new pin")
	pinSetCmd.Flags().StringVar(&oldPin, "old-pin", "", "the current pin, if one is set")
	pinRootCmd.AddCommand(pinSetCmd)

	return pinRootCmd
}
