package database

import (
	"context"
	"database/sql"
)

// schema is written in the subset of SQL that MySQL and SQLite both accept.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              VARCHAR(191) NOT NULL PRIMARY KEY,
		username        VARCHAR(191) NOT NULL UNIQUE,
		hashed_password VARCHAR(255) NOT NULL,
		email           VARCHAR(255) NOT NULL,
		push_token      VARCHAR(255) NULL,
		is_admin        BOOLEAN NOT NULL DEFAULT FALSE,
		is_driver       BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id     VARCHAR(191) NOT NULL PRIMARY KEY,
		name   VARCHAR(255) NOT NULL,
		phone  VARCHAR(64)  NOT NULL,
		status VARCHAR(64)  NOT NULL DEFAULT '',
		lat    DOUBLE NULL,
		lng    DOUBLE NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id            VARCHAR(191) NOT NULL PRIMARY KEY,
		user_id       VARCHAR(191) NOT NULL,
		status        VARCHAR(64)  NOT NULL,
		driver_id     VARCHAR(191) NULL,
		scent         VARCHAR(1024) NULL,
		cancel_reason VARCHAR(1024) NULL,
		FOREIGN KEY (driver_id) REFERENCES drivers(id)
	)`,
}

// Migrate creates missing tables.  It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
