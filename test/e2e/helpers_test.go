package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helixml/tasklist"
	"github.com/helixml/tasklist/domain/task"
	"github.com/helixml/tasklist/infrastructure/api"
	"github.com/helixml/tasklist/infrastructure/identity"
	"github.com/helixml/tasklist/infrastructure/persistence"
	"github.com/helixml/tasklist/internal/database"
)

// TestServer runs the full HTTP surface over a SQLite-backed client.
type TestServer struct {
	t          *testing.T
	dbPath     string
	client     *tasklist.Client
	httpServer *httptest.Server
}

// NewTestServer starts a server on a fresh SQLite database.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return newTestServerAt(t, filepath.Join(t.TempDir(), "tasks.db"))
}

func newTestServerAt(t *testing.T, dbPath string) *TestServer {
	t.Helper()

	client, err := tasklist.New(
		tasklist.WithSQLite(dbPath),
		tasklist.WithIDGenerator(identity.NewSequence("e2e")),
	)
	require.NoError(t, err)

	ts := &TestServer{
		t:          t,
		dbPath:     dbPath,
		client:     client,
		httpServer: httptest.NewServer(api.NewAPIServer(client).Handler()),
	}
	t.Cleanup(ts.Close)
	return ts
}

// Close stops the server and releases the client. Safe to call twice.
func (ts *TestServer) Close() {
	ts.httpServer.Close()
	_ = ts.client.Close()
}

// Restart closes the server and opens a new one on the same database.
func (ts *TestServer) Restart() *TestServer {
	ts.t.Helper()
	ts.Close()
	return newTestServerAt(ts.t, ts.dbPath)
}

// URL returns the full URL for an API path.
func (ts *TestServer) URL(path string) string {
	return ts.httpServer.URL + path
}

// Do sends a request with an optional JSON body.
func (ts *TestServer) Do(method, path string, body any) *http.Response {
	ts.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ts.t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, ts.URL(path), r)
	require.NoError(ts.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// DecodeJSON decodes the response body into v.
func (ts *TestServer) DecodeJSON(resp *http.Response, v any) {
	ts.t.Helper()
	require.NoError(ts.t, json.NewDecoder(resp.Body).Decode(v))
}

// StoredRecords reads the persisted blob through a separate database handle.
func (ts *TestServer) StoredRecords() []task.Record {
	ts.t.Helper()

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///"+ts.dbPath)
	require.NoError(ts.t, err)
	defer func() { _ = db.Close() }()

	data, err := persistence.NewKeyValueStore(db).Get(ctx, task.DefaultStorageKey)
	require.NoError(ts.t, err)

	var records []task.Record
	require.NoError(ts.t, json.Unmarshal(data, &records))
	return records
}
