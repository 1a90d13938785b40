package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/esteemapp/surfer-core/config"
	"github.com/esteemapp/surfer-core/types"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate"
	migratedb "github.com/golang-migrate/migrate/database"
	migratemysql "github.com/golang-migrate/migrate/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/database/sqlite3"
	_ "github.com/golang-migrate/migrate/source/file"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sisu-network/lib/log"
)

const accountKeyPrefix = "account:"

// Database is the local item store. Secrets are kept encrypted exactly as
// they were imported; the store never sees a pin or plaintext key.
type Database interface {
	Init() error
	Close() error

	GetItem(key, defaultValue string) string
	SetItem(key, value string) error
	RemoveItem(key string) error

	LoadAccount(username string) (*types.Account, error)
	SaveAccount(record *AccountRecord) error
	ListAccounts() ([]string, error)
	DeleteAccounts() error
}

type DefaultDatabase struct {
	cfg *config.Surfer
	db  *sql.DB
}

type dbLogger struct {
}

func (loggger *dbLogger) Printf(format string, v ...interface{}) {
	log.Verbosef(format, v...)
}

func (loggger *dbLogger) Verbose() bool {
	return true
}

func NewDb(cfg *config.Surfer) Database {
	return &DefaultDatabase{
		cfg: cfg,
	}
}

func (d *DefaultDatabase) Connect() error {
	switch d.cfg.DbDriver {
	case "sqlite3", "":
		return d.connectSqlite()
	case "mysql":
		return d.connectMysql()
	case "postgres":
		return d.connectPostgres()
	}

	return fmt.Errorf("unsupported db driver %s", d.cfg.DbDriver)
}

func (d *DefaultDatabase) connectSqlite() error {
	dsn := d.cfg.DbPath
	if d.cfg.InMemory {
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared", d.cfg.DbSchema)
	}
	if dsn == "" {
		return fmt.Errorf("DB path cannot be empty")
	}

	database, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return err
	}

	d.db = database
	log.Info("Db is connected successfully")
	return nil
}

func (d *DefaultDatabase) connectMysql() error {
	host := d.cfg.DbHost
	if host == "" {
		return fmt.Errorf("DB host cannot be empty")
	}

	port := d.cfg.DbPort
	username := d.cfg.DbUsername
	password := d.cfg.DbPassword
	schema := d.cfg.DbSchema

	// Connect to the db
	url := fmt.Sprintf("%s:%s@tcp(%s:%d)/", username, password, host, port)
	database, err := sql.Open("mysql", url)
	if err != nil {
		return err
	}
	_, err = database.Exec("CREATE DATABASE IF NOT EXISTS " + schema)
	if err != nil {
		return err
	}
	database.Close()

	database, err = sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", username, password, host, port, schema))
	if err != nil {
		return err
	}

	d.db = database
	log.Info("Db is connected successfully")
	return nil
}

func (d *DefaultDatabase) connectPostgres() error {
	host := d.cfg.DbHost
	if host == "" {
		return fmt.Errorf("DB host cannot be empty")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, d.cfg.DbPort, d.cfg.DbUsername, d.cfg.DbPassword, d.cfg.DbSchema)
	database, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	d.db = database
	log.Info("Db is connected successfully")
	return nil
}

func (d *DefaultDatabase) migrationDriver() (migratedb.Driver, string, error) {
	switch d.cfg.DbDriver {
	case "mysql":
		driver, err := migratemysql.WithInstance(d.db, &migratemysql.Config{})
		return driver, "mysql", err
	case "postgres":
		driver, err := migratepostgres.WithInstance(d.db, &migratepostgres.Config{})
		return driver, "postgres", err
	}

	driver, err := migratesqlite.WithInstance(d.db, &migratesqlite.Config{})
	return driver, "sqlite3", err
}

func (d *DefaultDatabase) DoMigration() error {
	driver, name, err := d.migrationDriver()
	if err != nil {
		return err
	}

	dir, cleanup, err := ExtractMigrations()
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, name, driver)
	if err != nil {
		return err
	}

	m.Log = &dbLogger{}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

func (d *DefaultDatabase) Init() error {
	err := d.Connect()
	if err != nil {
		log.Error("Failed to connect to DB. Err =", err)
		return err
	}

	return d.DoMigration()
}

func (d *DefaultDatabase) Close() error {
	if d.db == nil {
		return nil
	}

	return d.db.Close()
}

// rebind converts ? placeholders for drivers that use numbered ones.
func (d *DefaultDatabase) rebind(query string) string {
	if d.cfg.DbDriver != "postgres" {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString(fmt.Sprintf("$%d", n))
			continue
		}
		sb.WriteRune(r)
	}

	return sb.String()
}

func (d *DefaultDatabase) GetItem(key, defaultValue string) string {
	var value string
	err := d.db.QueryRow(d.rebind("SELECT item_value FROM items WHERE item_key = ?"), key).Scan(&value)
	switch err {
	case nil:
		return value
	case sql.ErrNoRows:
	default:
		log.Error("Cannot read item ", key, ", err = ", err)
	}

	return defaultValue
}

func (d *DefaultDatabase) SetItem(key, value string) error {
	var query string
	switch d.cfg.DbDriver {
	case "mysql":
		query = "INSERT INTO items (item_key, item_value) VALUES (?, ?) ON DUPLICATE KEY UPDATE item_value = VALUES(item_value)"
	default:
		query = "INSERT INTO items (item_key, item_value) VALUES (?, ?) ON CONFLICT (item_key) DO UPDATE SET item_value = excluded.item_value"
	}

	_, err := d.db.Exec(d.rebind(query), key, value)
	return err
}

func (d *DefaultDatabase) RemoveItem(key string) error {
	_, err := d.db.Exec(d.rebind("DELETE FROM items WHERE item_key = ?"), key)
	return err
}

func (d *DefaultDatabase) LoadAccount(username string) (*types.Account, error) {
	raw := d.GetItem(accountKeyPrefix+username, "")
	if raw == "" {
		return nil, errors.Wrapf(types.ErrInvalidAccount, "account %s is not imported", username)
	}

	record := new(AccountRecord)
	if err := json.Unmarshal([]byte(raw), record); err != nil {
		return nil, errors.Wrapf(types.ErrInvalidAccount, "account %s: %v", username, err)
	}

	return record.Account()
}

func (d *DefaultDatabase) SaveAccount(record *AccountRecord) error {
	if _, err := record.Account(); err != nil {
		return err
	}

	bz, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return d.SetItem(accountKeyPrefix+record.Username, string(bz))
}

func (d *DefaultDatabase) ListAccounts() ([]string, error) {
	rows, err := d.db.Query(d.rebind("SELECT item_key FROM items WHERE item_key LIKE ? ORDER BY item_key"), accountKeyPrefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		names = append(names, strings.TrimPrefix(key, accountKeyPrefix))
	}

	return names, rows.Err()
}

func (d *DefaultDatabase) DeleteAccounts() error {
	_, err := d.db.Exec(d.rebind("DELETE FROM items WHERE item_key LIKE ?"), accountKeyPrefix+"%")
	return err
}
