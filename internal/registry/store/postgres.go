package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Registers the postgres driver for database/sql.
	_ "github.com/lib/pq"

	"echoid/internal/registry/derive"
	"echoid/pkg/platform/sentinel"
)

// Postgres persists accounts in PostgreSQL. The primary key on the derived
// identifier is what enforces registry uniqueness under concurrent writers;
// Mutate takes a row lock so each account has one exclusive writer per
// transaction.
//
// Schema: see schema.sql in this package.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed account store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (s *Postgres) Create(ctx context.Context, account *Account) error {
	payload, err := account.payload()
	if err != nil {
		return fmt.Errorf("encode account payload: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, kind, payload, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (id) DO NOTHING`,
		account.ID.String(), string(account.Kind), payload,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, id derive.AccountID) (*Account, error) {
	account := &Account{ID: id}
	var (
		kind    string
		payload []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT kind, payload, created_at, updated_at
		FROM accounts
		WHERE id = $1`,
		id.String(),
	).Scan(&kind, &payload, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select account: %w", err)
	}

	if err := account.setPayload(Kind(kind), payload); err != nil {
		return nil, fmt.Errorf("decode account payload: %w", err)
	}
	return account, nil
}

func (s *Postgres) Mutate(ctx context.Context, id derive.AccountID, fn func(*Account) error) (*Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin mutate: %w", err)
	}
	defer tx.Rollback()

	account := &Account{ID: id}
	var (
		kind    string
		payload []byte
	)
	err = tx.QueryRowContext(ctx, `
		SELECT kind, payload, created_at, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE`,
		id.String(),
	).Scan(&kind, &payload, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock account: %w", err)
	}
	if err := account.setPayload(Kind(kind), payload); err != nil {
		return nil, fmt.Errorf("decode account payload: %w", err)
	}

	if err := fn(account); err != nil {
		return nil, err
	}

	updated, err := account.payload()
	if err != nil {
		return nil, fmt.Errorf("encode account payload: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET payload = $2, updated_at = now()
		WHERE id = $1`,
		id.String(), updated,
	); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mutate: %w", err)
	}
	return account, nil
}
