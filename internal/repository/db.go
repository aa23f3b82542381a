package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS selected_account (
	slot INTEGER PRIMARY KEY CHECK (slot = 1),
	id TEXT NOT NULL,
	username TEXT NOT NULL,
	display_name TEXT NOT NULL,
	team_id TEXT NOT NULL DEFAULT '',
	saved_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS scheduling_filter (
	account_id TEXT PRIMARY KEY,
	filter TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// OpenSQLite opens the durable local store and creates the schema. The store
// is the reload-survival analog of the dashboard's local storage.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

// OpenRedis connects the session-scoped store.
func OpenRedis(uri string) (*redis.Client, error) {
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
