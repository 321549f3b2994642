package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

const sqlTable = "eegdash_sessions"

// sqlDialect holds the statements that differ between Postgres and MySQL
type sqlDialect struct {
	driver      string
	createTable string
	get         string
	upsert      string
	remove      string
}

var sqlDialects = map[string]sqlDialect{
	"postgres": {
		driver: "postgres",
		createTable: `CREATE TABLE IF NOT EXISTS ` + sqlTable + ` (
			session_key VARCHAR(255) PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		get: `SELECT value FROM ` + sqlTable + ` WHERE session_key = $1`,
		upsert: `INSERT INTO ` + sqlTable + ` (session_key, value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (session_key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		remove: `DELETE FROM ` + sqlTable + ` WHERE session_key = $1`,
	},
	"mysql": {
		driver: "mysql",
		createTable: `CREATE TABLE IF NOT EXISTS ` + sqlTable + ` (
			session_key VARCHAR(255) PRIMARY KEY,
			value LONGTEXT NOT NULL,
			updated_at DATETIME(3) NOT NULL
		)`,
		get: `SELECT value FROM ` + sqlTable + ` WHERE session_key = ?`,
		upsert: `INSERT INTO ` + sqlTable + ` (session_key, value, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`,
		remove: `DELETE FROM ` + sqlTable + ` WHERE session_key = ?`,
	},
}

// SQLStorage keeps sessions in a Postgres or MySQL table
type SQLStorage struct {
	db      *sql.DB
	dialect sqlDialect
	now     func() time.Time
}

func dialectFor(store string) (sqlDialect, error) {
	if store == "postgresql" {
		store = "postgres"
	}
	d, ok := sqlDialects[store]
	if !ok {
		return sqlDialect{}, fmt.Errorf("unsupported session store %q", store)
	}
	return d, nil
}

// OpenSQLStorage connects, pings and creates the sessions table when missing
func OpenSQLStorage(ctx context.Context, store, dsn string) (*SQLStorage, error) {
	dialect, err := dialectFor(store)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping session database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if _, err := db.ExecContext(ctx, dialect.createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	return &SQLStorage{db: db, dialect: dialect, now: time.Now}, nil
}

func (s *SQLStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLStorage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value, s.now().UTC())
	return err
}

func (s *SQLStorage) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.remove, key)
	return err
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}
