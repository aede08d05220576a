package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type SQLiteStore struct {
	DB *sql.DB
	options
}

func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	return &SQLiteStore{DB: db, options: newOptions(opts)}
}

func (s *SQLiteStore) Greet(ctx context.Context, name string) (string, error) {
	var hello sql.NullString
	if err := s.DB.QueryRowContext(ctx, `SELECT 'Hello ' || ?`, name).Scan(&hello); err != nil {
		return "", err
	}
	if !hello.Valid {
		return "", ErrQueryFailed
	}
	return hello.String, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Form, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT uuid, data, updated_at FROM forms ORDER BY updated_at DESC`)
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

func (s *SQLiteStore) Save(ctx context.Context, id string, data json.RawMessage) (string, error) {
	text, err := encode(data)
	if err != nil {
		return "", err
	}
	id = resolveID(id)

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO forms (uuid, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (uuid) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id, text, s.timestamp(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (json.RawMessage, error) {
	var text string
	if err := s.DB.QueryRowContext(ctx, `SELECT data FROM forms WHERE uuid = ?`, id).Scan(&text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decode(id, text)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM forms WHERE uuid = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
