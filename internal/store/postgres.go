package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	DB *pgxpool.Pool
	options
}

func NewPostgresStore(db *pgxpool.Pool, opts ...Option) *PostgresStore {
	return &PostgresStore{DB: db, options: newOptions(opts)}
}

func (s *PostgresStore) Greet(ctx context.Context, name string) (string, error) {
	var hello *string
	if err := s.DB.QueryRow(ctx, `SELECT 'Hello ' || $1::text`, name).Scan(&hello); err != nil {
		return "", err
	}
	if hello == nil {
		return "", ErrQueryFailed
	}
	return *hello, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Form, error) {
	rows, err := s.DB.Query(ctx, `SELECT uuid, data, updated_at FROM forms ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forms := []Form{}
	for rows.Next() {
		var id, data, updatedAt string
		if err := rows.Scan(&id, &data, &updatedAt); err != nil {
			return nil, err
		}
		forms = appendReadable(forms, id, data, updatedAt)
	}
	return forms, rows.Err()
}

func (s *PostgresStore) Save(ctx context.Context, id string, data json.RawMessage) (string, error) {
	text, err := encode(data)
	if err != nil {
		return "", err
	}
	id = resolveID(id)

	_, err = s.DB.Exec(ctx, `
		INSERT INTO forms (uuid, data, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (uuid) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`, id, text, s.timestamp())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (json.RawMessage, error) {
	var text string
	if err := s.DB.QueryRow(ctx, `SELECT data FROM forms WHERE uuid = $1`, id).Scan(&text); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decode(id, text)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM forms WHERE uuid = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}
