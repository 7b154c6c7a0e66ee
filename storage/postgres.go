package storage

import (
	"database/sql"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
)

type PostgresInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type Postgres struct {
	db *sql.DB
}

// NewPostgres connects, retrying while the database comes up, and brings the
// schema to the latest migration.
func NewPostgres(info PostgresInfo) (*Postgres, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		info.Host, info.Port, info.User, info.Password, info.Database)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ping := func() error {
		return db.Ping()
	}
	if err := backoff.Retry(ping, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.migrate(pgMigration); err != nil {
		return nil, fmt.Errorf("failed to migrate postgres: %w", err)
	}

	return p, nil
}

func (p *Postgres) DB() *sql.DB {
	return p.db
}

var pgMigration = []string{
	`CREATE TABLE content_library (
id SERIAL PRIMARY KEY,
video_url VARCHAR(1024) NOT NULL,
title VARCHAR(255) NOT NULL,
transcript_text TEXT NOT NULL,
category VARCHAR(255) NOT NULL,
sub_category VARCHAR(255),
duration_seconds INTEGER NOT NULL
)`,
	`CREATE TABLE questions (
id SERIAL PRIMARY KEY,
video_id INTEGER NOT NULL REFERENCES content_library(id) ON DELETE CASCADE,
difficulty_phase INTEGER NOT NULL,
question_text TEXT NOT NULL,
correct_answer TEXT NOT NULL,
wrong_options TEXT[] NOT NULL
)`,
	`CREATE TABLE pipeline_runs (
run_id UUID PRIMARY KEY,
source VARCHAR(1024) NOT NULL,
status VARCHAR(32) NOT NULL,
stage VARCHAR(32) NOT NULL,
error TEXT NOT NULL DEFAULT '',
content_id INTEGER REFERENCES content_library(id),
question_count INTEGER NOT NULL DEFAULT 0,
created_at TIMESTAMPTZ NOT NULL,
updated_at TIMESTAMPTZ NOT NULL
)`,
}

// migrate applies the statements in pgMigration that have not been recorded
// in the migration table yet. Previously applied statements must match
// verbatim, in order.
func (p *Postgres) migrate(wanted []string) error {
	if _, err := p.db.Exec(`CREATE TABLE IF NOT EXISTS migration
("id" SERIAL PRIMARY KEY, "query" TEXT)`); err != nil {
		return err
	}

	rows, err := p.db.Query(`SELECT query FROM migration ORDER BY id`)
	if err != nil {
		return err
	}
	applied := []string{}
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			rows.Close()
			return err
		}
		applied = append(applied, query)
	}
	rows.Close()

	missing, err := missingMigrations(wanted, applied)
	if err != nil {
		return err
	}

	for _, query := range missing {
		if _, err := p.db.Exec(query); err != nil {
			return err
		}
		if _, err := p.db.Exec(`INSERT INTO migration (query) VALUES ($1)`, query); err != nil {
			return err
		}
	}

	return nil
}

func missingMigrations(wanted, applied []string) ([]string, error) {
	if len(wanted) < len(applied) {
		return nil, fmt.Errorf("more migrations applied than known")
	}

	for i, have := range applied {
		if wanted[i] != have {
			return nil, fmt.Errorf("incompatible migration: %v", have)
		}
	}

	return wanted[len(applied):], nil
}
