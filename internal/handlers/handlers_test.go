package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"formstore/internal/database"
	"formstore/internal/handlers"
	"formstore/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*echo.Echo, *store.SQLiteStore) {
	t.Helper()

	src, err := database.ParseURL("sqlite:" + filepath.Join(t.TempDir(), "forms.db"))
	require.NoError(t, err)
	db, err := database.OpenSQLite(src)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.MigrateSQLite(db))

	s := store.NewSQLiteStore(db)
	e := echo.New()
	handlers.Register(e, s)
	return e, s
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHello(t *testing.T) {
	e, _ := setupServer(t)

	rec := do(e, http.MethodGet, "/api/hello/world", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hello":"Hello world"}`, rec.Body.String())
}

func TestFormLifecycle(t *testing.T) {
	e, _ := setupServer(t)

	rec := do(e, http.MethodPost, "/form", `{"data":{"q":"x"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var saved handlers.SaveFormResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.UUID)

	rec = do(e, http.MethodGet, "/form/"+saved.UUID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"q":"x"}}`, rec.Body.String())

	rec = do(e, http.MethodDelete, "/form/"+saved.UUID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Form deleted successfully"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/form/"+saved.UUID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodDelete, "/form/"+saved.UUID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveFormWithUUID(t *testing.T) {
	e, _ := setupServer(t)

	rec := do(e, http.MethodPost, "/form", `{"uuid":"abc","data":{"0-0":"Ada"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"uuid":"abc"}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/form", `{"uuid":"abc","data":{"0-0":"Ada","0-1":"36"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/form/abc", "")
	assert.JSONEq(t, `{"data":{"0-0":"Ada","0-1":"36"}}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/forms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var forms []store.Form
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forms))
	assert.Len(t, forms, 1)
}

func TestSaveFormBadRequest(t *testing.T) {
	e, _ := setupServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"data":`},
		{name: "missing data", body: `{"uuid":"abc"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/form", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListForms(t *testing.T) {
	e, s := setupServer(t)

	rec := do(e, http.MethodGet, "/forms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	_, err := s.Save(context.Background(), "good", json.RawMessage(`{"ok":true}`))
	require.NoError(t, err)
	_, err = s.DB.Exec(`INSERT INTO forms (uuid, data, updated_at) VALUES ('bad', 'not json', '2999-01-01T00:00:00.000000000Z')`)
	require.NoError(t, err)

	rec = do(e, http.MethodGet, "/forms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var forms []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forms))
	require.Len(t, forms, 1)
	assert.Equal(t, "good", forms[0]["uuid"])
	assert.Equal(t, map[string]any{"ok": true}, forms[0]["data"])
	assert.NotEmpty(t, forms[0]["updated_at"])

	rec = do(e, http.MethodGet, "/form/bad", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	e, s := setupServer(t)

	rec := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, s.DB.Close())
	rec = do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type failingStore struct {
	store.Store
	err error
}

func (f failingStore) Greet(context.Context, string) (string, error) { return "", f.err }
func (f failingStore) List(context.Context) ([]store.Form, error)     { return nil, f.err }

func TestStoreFailures(t *testing.T) {
	e := echo.New()
	handlers.Register(e, failingStore{err: errors.New("connection lost")})

	rec := do(e, http.MethodGet, "/api/hello/world", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(e, http.MethodGet, "/forms", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to list forms"}`, rec.Body.String())

	e = echo.New()
	handlers.Register(e, failingStore{err: store.ErrQueryFailed})
	rec = do(e, http.MethodGet, "/api/hello/world", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestEscapedPathParams(t *testing.T) {
	e, s := setupServer(t)

	_, err := s.Save(context.Background(), "a/b", json.RawMessage(`{"q":"slash"}`))
	require.NoError(t, err)

	rec := do(e, http.MethodGet, "/form/a%2Fb", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"q":"slash"}}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/hello/a%2Fb", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hello":"Hello a/b"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/hello/50%25", "")
	assert.JSONEq(t, `{"hello":"Hello 50%"}`, rec.Body.String())

	rec = do(e, http.MethodDelete, "/form/a%2Fb", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	_, err = s.Get(context.Background(), "a/b")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNestedPathDoesNotMatchForm(t *testing.T) {
	e, s := setupServer(t)

	_, err := s.Save(context.Background(), "a", json.RawMessage(`{"q":"x"}`))
	require.NoError(t, err)
	_, err = s.Save(context.Background(), "a/b", json.RawMessage(`{"q":"y"}`))
	require.NoError(t, err)

	rec := do(e, http.MethodGet, "/form/a/b", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodDelete, "/form/a/b", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, err = s.Get(context.Background(), "a/b")
	assert.NoError(t, err, "unescaped nested path must not delete a slash id")
	_, err = s.Get(context.Background(), "a")
	assert.NoError(t, err)
}
