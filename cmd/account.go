package cmd

import (
	"fmt"

	"github.com/esteemapp/surfer-core/chains/steem"
	"github.com/esteemapp/surfer-core/database"
	"github.com/esteemapp/surfer-core/types"
	"github.com/esteemapp/surfer-core/vault"
	"github.com/spf13/cobra"
)

var importFlags struct {
	username string
	kind     string
	pin      string
	posting  string
	active   string
	memo     string
	token    string
}

var accountImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Encrypts and stores the keys or access token of an account.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, db, err := openDb()
		if err != nil {
			return err
		}
		defer db.Close()

		pin := []byte(importFlags.pin)
		if err := vault.NewPinGuard(db, cfg.MaxPinTries, nil).Verify(pin); err != nil {
			return err
		}

		record, err := encryptRecord(pin)
		if err != nil {
			return err
		}

		if err := db.SaveAccount(record); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Imported", record.Username)
		return nil
	},
}

func encryptRecord(pin []byte) (*database.AccountRecord, error) {
	record := &database.AccountRecord{
		Username: importFlags.username,
		Type:     importFlags.kind,
	}

	switch types.ParseAuthKind(importFlags.kind) {
	case types.AuthKindLocalKey:
		for _, item := range []struct {
			wif string
			dst *string
		}{
			{importFlags.posting, &record.Keys.Posting},
			{importFlags.active, &record.Keys.Active},
			{importFlags.memo, &record.Keys.Memo},
		} {
			if item.wif == "" {
				continue
			}

			key, err := steem.ParseWIF([]byte(item.wif))
			if err != nil {
				return nil, fmt.Errorf("invalid private key")
			}
			key.Zero()

			if *item.dst, err = vault.Encrypt([]byte(item.wif), pin); err != nil {
				return nil, err
			}
		}

	case types.AuthKindDelegated:
		token, err := vault.Encrypt([]byte(importFlags.token), pin)
		if err != nil {
			return nil, err
		}
		record.AccessToken = token

	default:
		return nil, fmt.Errorf("unknown account type %q, expected s or sc", importFlags.kind)
	}

	return record, nil
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists imported accounts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		_, db, err := openDb()
		if err != nil {
			return err
		}
		defer db.Close()

		names, err := db.ListAccounts()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}

		return nil
	},
}

var accountRootCmd = &cobra.Command{
	Use:   "account",
	Short: "Manages imported accounts.",
}

func accountCmd() *cobra.Command {
	flags := accountImportCmd.Flags()
	flags.StringVar(&importFlags.username, "username", "", "account name")
	flags.StringVar(&importFlags.kind, "type", "s", "s for private keys, sc for a delegated access token")
	flags.StringVar(&importFlags.pin, "pin", "", "the session pin")
	flags.StringVar(&importFlags.posting, "posting", "", "posting private key (WIF)")
	flags.StringVar(&importFlags.active, "active", "", "active private key (WIF)")
	flags.StringVar(&importFlags.memo, "memo", "", "memo private key (WIF)")
	flags.StringVar(&importFlags.token, "token", "", "delegated service access token")

	accountRootCmd.AddCommand(accountImportCmd, accountListCmd)
	return accountRootCmd
}
