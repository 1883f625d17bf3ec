package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/spigell/cv-ranker/internal/candidate"
)

const (
	createTableQuery = `CREATE TABLE IF NOT EXISTS candidates (
	name TEXT,
	email TEXT,
	score DOUBLE PRECISION
)`
	insertQuery = `INSERT INTO candidates (name, email, score) VALUES ($1, $2, $3)`
)

// SQL stores candidates in the candidates table.
type SQL struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("store dsn is required for the postgres driver")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	// Writes are serialized anyway.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *SQL) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableQuery); err != nil {
		return fmt.Errorf("create candidates table: %w", err)
	}
	return nil
}

func (s *SQL) Record(ctx context.Context, rec candidate.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, insertQuery, rec.Name, rec.Email, rec.Score); err != nil {
		return fmt.Errorf("insert candidate %q: %w", rec.Name, err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}
