// Package pg is the Postgres-backed consent store of the account aggregator.
package pg

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"ocenmock.org/internal/apperr"
	"ocenmock.org/internal/consent"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema files for the migrate runner.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

const uniqueViolation = "23505"

// ConsentStore implements consent.Store on Postgres. Update serialises on the
// row lock taken by select ... for update.
type ConsentStore struct {
	db *sql.DB
}

var _ consent.Store = (*ConsentStore)(nil)

// Open connects through the pgx stdlib driver.
func Open(dsn string, maxConns int) (*ConsentStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if maxConns <= 0 {
		maxConns = 20
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &ConsentStore{db: db}, nil
}

// New wraps an existing handle.
func New(db *sql.DB) *ConsentStore { return &ConsentStore{db: db} }

func (s *ConsentStore) Close() error { return s.db.Close() }

func (s *ConsentStore) DB() *sql.DB { return s.db }

func (s *ConsentStore) Insert(ctx context.Context, c consent.Consent) error {
	types, err := json.Marshal(c.DataTypes)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into consents(id, user_id, data_types, status, created_at)
		values ($1, $2, $3, $4, $5)
	`, c.ID, c.UserID, string(types), string(c.Status), c.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("consent %s already stored", c.ID)
		}
		return err
	}
	return nil
}

func (s *ConsentStore) Get(ctx context.Context, id string) (consent.Consent, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, user_id, data_types, status, created_at
		from consents where id = $1
	`, id)
	return scanConsent(row, id)
}

func (s *ConsentStore) Update(ctx context.Context, id string, fn func(*consent.Consent) error) (consent.Consent, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return consent.Consent{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		select id, user_id, data_types, status, created_at
		from consents where id = $1
		for update
	`, id)
	cur, err := scanConsent(row, id)
	if err != nil {
		return consent.Consent{}, err
	}

	next := cur
	next.DataTypes = slices.Clone(cur.DataTypes)
	if err := fn(&next); err != nil {
		return consent.Consent{}, err
	}
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt

	if next.Status != cur.Status || next.UserID != cur.UserID || !slices.Equal(next.DataTypes, cur.DataTypes) {
		if !next.Status.Valid() {
			return consent.Consent{}, fmt.Errorf("consent %s: invalid status %q", id, next.Status)
		}
		types, err := json.Marshal(next.DataTypes)
		if err != nil {
			return consent.Consent{}, err
		}
		if _, err := tx.ExecContext(ctx, `
			update consents set user_id = $2, data_types = $3, status = $4
			where id = $1
		`, id, next.UserID, string(types), string(next.Status)); err != nil {
			return consent.Consent{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return consent.Consent{}, err
	}
	return next, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsent(row rowScanner, id string) (consent.Consent, error) {
	var (
		c      consent.Consent
		types  string
		status string
	)
	err := row.Scan(&c.ID, &c.UserID, &types, &status, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return consent.Consent{}, fmt.Errorf("consent %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return consent.Consent{}, err
	}
	if err := json.Unmarshal([]byte(types), &c.DataTypes); err != nil {
		return consent.Consent{}, fmt.Errorf("consent %s: decode data_types: %w", id, err)
	}
	c.Status = consent.Status(status)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}
