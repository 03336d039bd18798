// Package repository implements the PostgreSQL storage for the entitlement
// service: the plan catalog, the order ledger, user profiles with the visual
// mirror, the authority claim records and the usage counters.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	// Register the pgx driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage encapsulates the PostgreSQL connection and implements the
// repositories consumed by the services.
type Storage struct {
	DB *sql.DB
}

// New opens a PostgreSQL connection and verifies it with a ping.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady verifies that the schema has been migrated.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'plans'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table plans missing or query error: %w", err)
	}
	return nil
}
