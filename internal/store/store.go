// Package store persists JSON form documents keyed by uuid.
//
// Two backends implement Store: SQLiteStore for the embedded file-backed
// database and PostgresStore for a pgx connection pool. Both write with a
// single native upsert statement and order listings by updated_at, which is
// stored as a fixed-width UTC timestamp so text order equals time order.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"formstore/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("form not found")
	ErrSerialization = errors.New("form data is not valid JSON")
	ErrQueryFailed   = errors.New("query failed")
)

const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Form struct {
	UUID      string          `json:"uuid"`
	Data      json.RawMessage `json:"data" swaggertype:"object"`
	UpdatedAt string          `json:"updated_at"`
}

type Store interface {
	// Greet asks the database to build "Hello <name>".
	Greet(ctx context.Context, name string) (string, error)
	// List returns every readable form, most recently updated first.
	List(ctx context.Context) ([]Form, error)
	// Save creates or replaces the form and returns its uuid, generating one when id is empty.
	Save(ctx context.Context, id string, data json.RawMessage) (string, error)
	Get(ctx context.Context, id string) (json.RawMessage, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) timestamp() string {
	return o.now().UTC().Format(TimestampLayout)
}

func resolveID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func encode(data json.RawMessage) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty document", ErrSerialization)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return buf.String(), nil
}

func decode(id, text string) (json.RawMessage, error) {
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("%w: form %s", ErrSerialization, id)
	}
	return json.RawMessage(text), nil
}

// appendReadable drops rows whose stored text is not JSON so a single corrupt
// row cannot fail the whole listing.
func appendReadable(forms []Form, id, text, updatedAt string) []Form {
	data, err := decode(id, text)
	if err != nil {
		logger.Warn("skipping unreadable form", zap.String("uuid", id), zap.String("updated_at", updatedAt))
		return forms
	}
	return append(forms, Form{UUID: id, Data: data, UpdatedAt: updatedAt})
}
