package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver, registered as "pgx"
	_ "modernc.org/sqlite"             // Pure Go SQLite driver
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// ParseDriver maps a configured driver name, including the postgres and
// postgresql aliases, to a registered database/sql driver.
func ParseDriver(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case DriverSQLite:
		return DriverSQLite, nil
	case DriverPostgres, "postgres", "postgresql":
		return DriverPostgres, nil
	}
	return "", fmt.Errorf("unsupported database driver %q (want sqlite or pgx)", name)
}

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

type Store struct {
	DB     *sql.DB
	driver string
	now    func() time.Time
}

// NewStore opens and pings the database. driver is "sqlite" or "pgx".
func NewStore(driver, dataSourceName string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		dataSourceName = sqliteDSN(dataSourceName)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// One connection serializes writers, so concurrent stock
		// decrements never see SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{DB: db, driver: driver, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) Driver() string {
	return s.driver
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func sqliteDSN(dsn string) string {
	params := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}
	return dsn + "?" + params
}

// q rewrites ? placeholders to $N for Postgres. Queries in this package
// never contain a literal question mark.
func (s *Store) q(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// withTx runs fn in a transaction, rolling back on any error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
