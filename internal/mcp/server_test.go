package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/tasklist/application/service"
	"github.com/helixml/tasklist/domain/task"
	"github.com/helixml/tasklist/infrastructure/identity"
	"github.com/helixml/tasklist/infrastructure/persistence"
)

// brokenStorage reads nothing and fails every write.
type brokenStorage struct{}

func (brokenStorage) Get(context.Context, string) ([]byte, error) { return nil, task.ErrKeyNotFound }

func (brokenStorage) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func testServer(t *testing.T, storage task.Storage) (*Server, *service.Tasks) {
	t.Helper()
	tasks, err := service.NewTasks(context.Background(), storage, identity.NewSequence("t"))
	require.NoError(t, err)
	srv := NewServer(tasks, "0.1.0-test", nil)
	sendMessage(t, srv, "initialize", 1, initializeParams())
	return srv, tasks
}

// sendMessage marshals a JSON-RPC request, sends it through HandleMessage,
// and returns the JSONRPCResponse.
func sendMessage(t *testing.T, srv *Server, method string, id int, params map[string]any) mcp.JSONRPCResponse {
	t.Helper()

	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		msg["params"] = params
	}

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	result := srv.MCPServer().HandleMessage(context.Background(), raw)
	resp, ok := result.(mcp.JSONRPCResponse)
	require.Truef(t, ok, "expected JSONRPCResponse, got %T: %+v", result, result)
	return resp
}

// resultJSON re-marshals the Result field through JSON into dst.
func resultJSON(t *testing.T, resp mcp.JSONRPCResponse, dst any) {
	t.Helper()
	b, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, dst))
}

func initializeParams() map[string]any {
	return map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "0.0.1",
		},
	}
}

type toolResult struct {
	IsError bool `json:"isError"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (r toolResult) text(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, r.Content, "no content in result")
	return r.Content[0].Text
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) toolResult {
	t.Helper()
	resp := sendMessage(t, srv, "tools/call", 2, map[string]any{
		"name":      name,
		"arguments": args,
	})
	var result toolResult
	resultJSON(t, resp, &result)
	return result
}

func TestServer_Initialize(t *testing.T) {
	tasks, err := service.NewTasks(context.Background(), persistence.NewMemoryStore(), identity.NewSequence("t"))
	require.NoError(t, err)
	srv := NewServer(tasks, "1.2.3", nil)

	resp := sendMessage(t, srv, "initialize", 1, initializeParams())

	var result mcp.InitializeResult
	resultJSON(t, resp, &result)
	assert.Equal(t, ServerName, result.ServerInfo.Name)
	assert.Equal(t, "1.2.3", result.ServerInfo.Version)
	assert.NotNil(t, result.Capabilities.Tools)
}

func TestServer_ListTools(t *testing.T) {
	srv, _ := testServer(t, persistence.NewMemoryStore())

	resp := sendMessage(t, srv, "tools/list", 2, nil)

	var result mcp.ListToolsResult
	resultJSON(t, resp, &result)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"list_tasks", "add_task", "toggle_task", "rename_task", "duplicate_task", "delete_task",
	}, names)
}

func TestServer_AddAndList(t *testing.T) {
	srv, _ := testServer(t, persistence.NewMemoryStore())

	added := callTool(t, srv, "add_task", map[string]any{"name": "buy milk"})
	require.False(t, added.IsError, added.text(t))
	callTool(t, srv, "add_task", map[string]any{"name": "walk dog"})
	callTool(t, srv, "toggle_task", map[string]any{"id": "t-1"})

	active := callTool(t, srv, "list_tasks", map[string]any{"filter": "active"})
	require.False(t, active.IsError)

	var out listResult
	require.NoError(t, json.Unmarshal([]byte(active.text(t)), &out))
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, "active", out.Filter)
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, "walk dog", out.Tasks[0].Name)
}

func TestServer_AddBlankIsError(t *testing.T) {
	srv, tasks := testServer(t, persistence.NewMemoryStore())

	result := callTool(t, srv, "add_task", map[string]any{"name": "   "})

	assert.True(t, result.IsError)
	assert.Zero(t, tasks.Count())
}

func TestServer_Rename(t *testing.T) {
	srv, tasks := testServer(t, persistence.NewMemoryStore())
	callTool(t, srv, "add_task", map[string]any{"name": "old"})

	result := callTool(t, srv, "rename_task", map[string]any{"id": "t-1", "name": "new"})
	require.False(t, result.IsError, result.text(t))

	got, err := tasks.Get("t-1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name())
	assert.False(t, got.Editing())
}

func TestServer_DuplicateAndDelete(t *testing.T) {
	srv, tasks := testServer(t, persistence.NewMemoryStore())
	callTool(t, srv, "add_task", map[string]any{"name": "a"})

	dup := callTool(t, srv, "duplicate_task", map[string]any{"id": "t-1"})
	require.False(t, dup.IsError)
	var out mutationResult
	require.NoError(t, json.Unmarshal([]byte(dup.text(t)), &out))
	require.NotNil(t, out.Task)
	assert.Equal(t, "t-2", out.Task.ID)
	assert.Equal(t, "a", out.Task.Name)

	del := callTool(t, srv, "delete_task", map[string]any{"id": "t-1"})
	require.False(t, del.IsError)
	assert.Equal(t, 1, tasks.Count())
}

func TestServer_UnknownIDIsToolError(t *testing.T) {
	srv, _ := testServer(t, persistence.NewMemoryStore())

	for _, name := range []string{"toggle_task", "duplicate_task", "delete_task"} {
		t.Run(name, func(t *testing.T) {
			result := callTool(t, srv, name, map[string]any{"id": "missing"})
			assert.True(t, result.IsError)
			assert.Contains(t, result.text(t), "task not found")
		})
	}
}

func TestServer_InvalidFilter(t *testing.T) {
	srv, _ := testServer(t, persistence.NewMemoryStore())

	result := callTool(t, srv, "list_tasks", map[string]any{"filter": "someday"})
	assert.True(t, result.IsError)
}

func TestServer_PersistenceFailureIsWarning(t *testing.T) {
	srv, tasks := testServer(t, brokenStorage{})

	result := callTool(t, srv, "add_task", map[string]any{"name": "kept"})
	require.False(t, result.IsError)

	var out mutationResult
	require.NoError(t, json.Unmarshal([]byte(result.text(t)), &out))
	assert.Contains(t, out.Warning, "disk full")
	assert.Equal(t, 1, tasks.Count())

	renamed := callTool(t, srv, "rename_task", map[string]any{"id": "t-1", "name": "still kept"})
	require.False(t, renamed.IsError)
	got, err := tasks.Get("t-1")
	require.NoError(t, err)
	assert.Equal(t, "still kept", got.Name())
}
