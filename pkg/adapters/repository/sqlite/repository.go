package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
)

// SQLiteRepository keeps the document in two tables. Row order follows
// the seq column, which preserves the document's insertion order.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite" {
		// one writer at a time; also keeps shared in-memory databases alive
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		hash TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS shorts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		owner TEXT NOT NULL,
		url TEXT NOT NULL,
		code TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		clicks INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_shorts_owner ON shorts(owner);
	`
	_, err := db.Exec(query)
	return err
}

func (r *SQLiteRepository) Load(ctx context.Context) (*domain.State, error) {
	state := domain.NewState()

	rows, err := r.db.QueryContext(ctx, `SELECT id, username, hash FROM users ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load users: %w", err)
	}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Hash); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scan user: %w", err)
		}
		state.Users = append(state.Users, u)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx, `SELECT id, owner, url, code, created_at, expires_at, clicks FROM shorts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load shorts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l domain.LinkRecord
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.TargetURL, &l.Code, &l.CreatedAt, &l.ExpiresAt, &l.Clicks); err != nil {
			return nil, fmt.Errorf("sqlite: scan short: %w", err)
		}
		state.Shorts = append(state.Shorts, l)
	}
	return state, rows.Err()
}

// Save rewrites both tables inside one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, state *domain.State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("sqlite: clear users: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM shorts`); err != nil {
		return fmt.Errorf("sqlite: clear shorts: %w", err)
	}

	for _, u := range state.Users {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, hash) VALUES (?, ?, ?)`,
			u.ID, u.Username, u.Hash); err != nil {
			return fmt.Errorf("sqlite: insert user %s: %w", u.Username, err)
		}
	}
	for _, l := range state.Shorts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO shorts (id, owner, url, code, created_at, expires_at, clicks) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.OwnerID, l.TargetURL, l.Code, l.CreatedAt, l.ExpiresAt, l.Clicks); err != nil {
			return fmt.Errorf("sqlite: insert short %s: %w", l.Code, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
