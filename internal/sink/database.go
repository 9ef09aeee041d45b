package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mcncl/json2sql/internal/errors"
	"github.com/mcncl/json2sql/internal/models"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// drivers maps accepted driver names to registered database/sql drivers.
var drivers = map[string]string{
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
	"postgres":   "pgx",
	"postgresql": "pgx",
	"pgx":        "pgx",
	"sqlserver":  "sqlserver",
	"mssql":      "sqlserver",
	"mysql":      "mysql",
}

// DriverName resolves a user-facing driver name.
func DriverName(name string) (string, error) {
	d, ok := drivers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", errors.NewConfigError(fmt.Sprintf("database driver '%s' is not supported", name), errors.ErrUnsupportedDriver)
	}
	return d, nil
}

// Database executes every statement inside one transaction that is committed
// on Close. Batch terminators are client-side separators and are not sent.
// Statements without columns are skipped.
type Database struct {
	db       *sql.DB
	tx       *sql.Tx
	executed int
	skipped  int
}

// OpenDatabase connects with the named driver and starts the run's transaction.
func OpenDatabase(ctx context.Context, driver, dsn string) (*Database, error) {
	name, err := DriverName(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.NewConfigError("database DSN must not be empty", errors.ErrInvalidConfigValue)
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, errors.NewDatabaseError(fmt.Sprintf("open %s", name), err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.NewDatabaseError(fmt.Sprintf("ping %s", name), err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		_ = db.Close()
		return nil, errors.NewDatabaseError("begin transaction", err)
	}
	return &Database{db: db, tx: tx}, nil
}

// Write implements Sink.
func (d *Database) Write(ctx context.Context, stmt models.Statement) error {
	if stmt.Empty() {
		d.skipped++
		return nil
	}
	if _, err := d.tx.ExecContext(ctx, stmt.Body); err != nil {
		return errors.NewDatabaseError(fmt.Sprintf("insert into %s failed", stmt.Table), err)
	}
	d.executed++
	return nil
}

// Executed returns the number of statements sent to the database.
func (d *Database) Executed() int {
	return d.executed
}

// Skipped returns the number of column-less statements that were not sent.
func (d *Database) Skipped() int {
	return d.skipped
}

// Close implements Sink by committing the transaction.
func (d *Database) Close() error {
	defer d.db.Close()
	if err := d.tx.Commit(); err != nil {
		return errors.NewDatabaseError("commit", err)
	}
	return nil
}

// Abort implements Aborter by rolling the transaction back.
func (d *Database) Abort() error {
	defer d.db.Close()
	if err := d.tx.Rollback(); err != nil {
		return errors.NewDatabaseError("rollback", err)
	}
	return nil
}
