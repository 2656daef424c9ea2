package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/001_discussion_rooms.sql
var discussionRoomsSchema string

type migration struct {
	name   string
	schema string
}

var migrations = []migration{
	{"discussion_rooms", discussionRoomsSchema},
}

// DSN builds the lib/pq connection string from DB_HOST, DB_PORT, DB_USER,
// DB_PASSWORD, DB_NAME and DB_SSLMODE.
func DSN() string {
	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		port,
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		sslMode,
	)
}

func New() (*sqlx.DB, error) {
	logrus.Info(fmt.Sprintf("Connecting to Postgres at %s...", os.Getenv("DB_HOST")))

	db, err := sqlx.Open("postgres", DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if os.Getenv("DB_MIGRATE") != "false" {
		if err := Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	logrus.Info("Successfully connected to Postgres")
	return db, nil
}

// Migrate applies every schema in order, each inside its own transaction.
// The statements are idempotent.
func Migrate(db *sqlx.DB) error {
	for _, m := range migrations {
		if err := runMigration(db, m); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}
	return nil
}

func runMigration(db *sqlx.DB, m migration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, m.schema); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute schema: %w", err)
	}

	return tx.Commit()
}
