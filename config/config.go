package config

import (
	"encoding/hex"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sisu-network/lib/log"
)

const (
	DefaultNode            = "https://api.steemit.com"
	DefaultChainID         = "0000000000000000000000000000000000000000000000000000000000000000"
	DefaultAddressPrefix   = "STM"
	DefaultSteemConnectUrl = "https://steemconnect.com"
	DefaultBackendUrl      = "https://api.esteem.app"
	DefaultAppAccount      = "esteemapp"
	DefaultDbDriver        = "sqlite3"
)

type Surfer struct {
	Node          string `toml:"node"`
	ChainID       string `toml:"chain_id"`
	AddressPrefix string `toml:"address_prefix"`
	// Seconds added to the head block time.
	TxExpiration int `toml:"tx_expiration"`
	// Seconds.
	RpcTimeout int `toml:"rpc_timeout"`

	SteemConnectUrl    string `toml:"steemconnect_url"`
	HotSigningRedirect string `toml:"hot_signing_redirect"`
	BackendUrl         string `toml:"backend_url"`
	AppAccount         string `toml:"app_account"`
	ActivityTimeout    int    `toml:"activity_timeout"`

	MaxPinTries int `toml:"max_pin_tries"`

	DbDriver   string `toml:"db_driver"`
	DbHost     string `toml:"db_host"`
	DbPort     int    `toml:"db_port"`
	DbUsername string `toml:"db_username"`
	DbPassword string `toml:"db_password"`
	DbSchema   string `toml:"db_schema"`
	DbPath     string `toml:"db_path"`
	InMemory   bool   `toml:"in_memory"`

	ServerPort int `toml:"server_port"`
}

// Default returns a configuration that talks to the public main network and
// keeps secrets in a local sqlite file.
func Default() *Surfer {
	return &Surfer{
		Node:            DefaultNode,
		ChainID:         DefaultChainID,
		AddressPrefix:   DefaultAddressPrefix,
		TxExpiration:    60,
		RpcTimeout:      30,
		SteemConnectUrl: DefaultSteemConnectUrl,
		BackendUrl:      DefaultBackendUrl,
		AppAccount:      DefaultAppAccount,
		ActivityTimeout: 10,
		MaxPinTries:     3,
		DbDriver:        DefaultDbDriver,
		DbPath:          "surfer.db",
		ServerPort:      25456,
	}
}

// Load reads a toml file on top of the defaults, then applies SURFER_*
// environment variables, including the ones found in a .env file.
func Load(path string) (*Surfer, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.Wrapf(err, "cannot read config file %s", path)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("Cannot load .env file, err = ", err)
	}
	cfg.applyEnv()

	if _, err := cfg.ChainIDBytes(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Surfer) applyEnv() {
	envString("SURFER_NODE", &c.Node)
	envString("SURFER_CHAIN_ID", &c.ChainID)
	envString("SURFER_STEEMCONNECT_URL", &c.SteemConnectUrl)
	envString("SURFER_BACKEND_URL", &c.BackendUrl)
	envString("SURFER_DB_DRIVER", &c.DbDriver)
	envString("SURFER_DB_HOST", &c.DbHost)
	envString("SURFER_DB_USERNAME", &c.DbUsername)
	envString("SURFER_DB_PASSWORD", &c.DbPassword)
	envString("SURFER_DB_SCHEMA", &c.DbSchema)
	envString("SURFER_DB_PATH", &c.DbPath)
	envInt("SURFER_DB_PORT", &c.DbPort)
	envInt("SURFER_SERVER_PORT", &c.ServerPort)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("Ignoring invalid ", key, " = ", v)
		return
	}
	*dst = n
}

func (c *Surfer) ChainIDBytes() ([]byte, error) {
	id, err := hex.DecodeString(c.ChainID)
	if err != nil || len(id) != 32 {
		return nil, errors.Errorf("invalid chain id %q", c.ChainID)
	}

	return id, nil
}

func (c *Surfer) TxExpirationDuration() time.Duration {
	return time.Duration(c.TxExpiration) * time.Second
}

func (c *Surfer) RpcTimeoutDuration() time.Duration {
	return time.Duration(c.RpcTimeout) * time.Second
}

func (c *Surfer) ActivityTimeoutDuration() time.Duration {
	return time.Duration(c.ActivityTimeout) * time.Second
}
