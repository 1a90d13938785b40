package cmd

import (
	"fmt"

	"github.com/esteemapp/surfer-core/activity"
	"github.com/esteemapp/surfer-core/backend"
	"github.com/esteemapp/surfer-core/chains/steem"
	"github.com/esteemapp/surfer-core/client"
	"github.com/esteemapp/surfer-core/core"
	"github.com/esteemapp/surfer-core/database"
	"github.com/esteemapp/surfer-core/network"
	"github.com/esteemapp/surfer-core/server"
	"github.com/esteemapp/surfer-core/vault"
	"github.com/sisu-network/lib/log"
	"github.com/spf13/cobra"
)

var servePort int

var serveRpcCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the local JSON-RPC broadcast server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, db, err := openDb()
		if err != nil {
			return err
		}
		defer db.Close()

		if servePort > 0 {
			cfg.ServerPort = servePort
		}

		if db.GetItem(vault.PinHashKey, "") == "" {
			return fmt.Errorf("no pin is set, run `surfer pin set` first")
		}

		chainID, err := cfg.ChainIDBytes()
		if err != nil {
			return err
		}

		httpClient := network.NewHttp(cfg.RpcTimeoutDuration())
		nodes := steem.NewNodeRegistry(db.GetItem(core.NodeItemKey, cfg.Node), cfg.RpcTimeoutDuration())
		steemConnect := client.NewSteemConnect(cfg.SteemConnectUrl, httpClient)

		activityLogger := activity.NewLogger(
			client.NewEsteem(cfg.BackendUrl, httpClient),
			cfg.ActivityTimeoutDuration(),
			0,
		)
		defer activityLogger.Wait()

		backends := backend.NewBackends(
			backend.NewLocalSigning(nodes, chainID, cfg.TxExpirationDuration()),
			backend.NewDelegatedBroadcast(steemConnect),
		)

		pins := vault.NewPinGuard(db, cfg.MaxPinTries, invalidateSession(db))

		broadcaster := core.NewBroadcaster(backends, nodes, activityLogger, pins, db, cfg.AppAccount)
		broadcaster.SetObserver(func(username, intent string, state core.State) {
			log.Verbose(username, " ", intent, ": ", state)
		})

		handler, err := server.NewRpcServer(server.NewApi(broadcaster, db, steemConnect, cfg.HotSigningRedirect))
		if err != nil {
			return err
		}

		return server.NewServer(handler, cfg.ServerPort).Run()
	},
}

// invalidateSession drops the pin and every imported account once the pin
// has been entered wrongly too many times.
func invalidateSession(db database.Database) func() {
	return func() {
		if err := db.RemoveItem(vault.PinHashKey); err != nil {
			log.Error("Cannot remove pin, err = ", err)
		}
		if err := db.DeleteAccounts(); err != nil {
			log.Error("Cannot delete accounts, err = ", err)
		}
	}
}

func serveCmd() *cobra.Command {
	serveRpcCmd.Flags().IntVarP(&servePort, "port", "p", 0, "overrides server_port from the config")
	return serveRpcCmd
}
