// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/tasklist/application/service"
	"github.com/helixml/tasklist/domain/task"
)

// ServerName is the name reported to MCP clients.
const ServerName = "tasklist"

// TaskStore is the subset of the task store the MCP tools use.
type TaskStore interface {
	View() service.View
	ViewWith(f task.Filter) service.View
	CreateFrom(ctx context.Context, text string) (task.Task, bool, error)
	Toggle(ctx context.Context, id string) (task.Task, error)
	EnterEdit(ctx context.Context, id string) (task.Task, error)
	UpdateEditDraft(ctx context.Context, id, text string) (task.Task, error)
	SaveEdit(ctx context.Context, id string) (task.Task, error)
	Get(id string) (task.Task, error)
	Duplicate(ctx context.Context, id string) (task.Task, error)
	Delete(ctx context.Context, id string) error
}

// Server wraps the MCP server with task tools.
type Server struct {
	mcpServer *server.MCPServer
	tasks     TaskStore
	logger    *slog.Logger
}

// NewServer creates a new MCP server over tasks.
func NewServer(tasks TaskStore, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		tasks:  tasks,
		logger: logger,
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks in insertion order, optionally filtered"),
		mcp.WithString("filter",
			mcp.Description("all, active or completed. Defaults to the current filter"),
			mcp.Enum(task.FilterAll.String(), task.FilterActive.String(), task.FilterCompleted.String()),
		),
	), s.handleList)

	mcpServer.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task to the end of the list"),
		mcp.WithString("name", mcp.Required(), mcp.Description("The task text")),
	), s.handleAdd)

	mcpServer.AddTool(mcp.NewTool("toggle_task",
		mcp.WithDescription("Flip a task between active and completed"),
		mcp.WithString("id", mcp.Required(), mcp.Description("The task id")),
	), s.handleToggle)

	mcpServer.AddTool(mcp.NewTool("rename_task",
		mcp.WithDescription("Replace the text of a task"),
		mcp.WithString("id", mcp.Required(), mcp.Description("The task id")),
		mcp.WithString("name", mcp.Required(), mcp.Description("The new task text")),
	), s.handleRename)

	mcpServer.AddTool(mcp.NewTool("duplicate_task",
		mcp.WithDescription("Append a copy of a task under a new id"),
		mcp.WithString("id", mcp.Required(), mcp.Description("The task id")),
	), s.handleDuplicate)

	mcpServer.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Remove a task"),
		mcp.WithString("id", mcp.Required(), mcp.Description("The task id")),
	), s.handleDelete)
}

type taskResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Finished bool   `json:"finished"`
	Editing  bool   `json:"editing,omitempty"`
}

type listResult struct {
	Tasks  []taskResult `json:"tasks"`
	Total  int          `json:"total"`
	Filter string       `json:"filter"`
}

type mutationResult struct {
	Task    *taskResult `json:"task,omitempty"`
	Deleted string      `json:"deleted,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

func toResult(t task.Task) taskResult {
	return taskResult{ID: t.ID(), Name: t.Name(), Finished: t.Finished(), Editing: t.Editing()}
}

func (s *Server) handleList(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view := s.tasks.View()
	if name := request.GetString("filter", ""); name != "" {
		parsed, err := task.ParseFilter(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		view = s.tasks.ViewWith(parsed)
	}

	out := listResult{
		Tasks:  make([]taskResult, 0, len(view.Tasks)),
		Total:  view.Total,
		Filter: view.Filter.String(),
	}
	for _, t := range view.Tasks {
		out.Tasks = append(out.Tasks, toResult(t))
	}
	return jsonResult(out)
}

func (s *Server) handleAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}

	t, created, err := s.tasks.CreateFrom(ctx, name)
	if err == nil && !created {
		return mcp.NewToolResultError("name must not be blank"), nil
	}
	return s.mutation(t, err, "add task")
}

func (s *Server) handleToggle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}
	t, err := s.tasks.Toggle(ctx, id)
	return s.mutation(t, err, "toggle task")
}

// handleRename runs a whole edit cycle so the rename is a single tool call.
func (s *Server) handleRename(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}

	t, err := s.rename(ctx, id, name)
	return s.mutation(t, err, "rename task")
}

func (s *Server) rename(ctx context.Context, id, name string) (task.Task, error) {
	var warning error
	keep := func(err error) error {
		if errors.Is(err, task.ErrPersistence) {
			warning = err
			return nil
		}
		return err
	}

	current, err := s.tasks.Get(id)
	if err != nil {
		return task.Task{}, err
	}
	if !current.Editing() {
		if _, err := s.tasks.EnterEdit(ctx, id); keep(err) != nil {
			return task.Task{}, err
		}
	}
	if _, err := s.tasks.UpdateEditDraft(ctx, id, name); keep(err) != nil {
		return task.Task{}, err
	}
	t, err := s.tasks.SaveEdit(ctx, id)
	if keep(err) != nil {
		return task.Task{}, err
	}
	return t, warning
}

func (s *Server) handleDuplicate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}
	t, err := s.tasks.Duplicate(ctx, id)
	return s.mutation(t, err, "duplicate task")
}

func (s *Server) handleDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}

	err = s.tasks.Delete(ctx, id)
	if err != nil && !errors.Is(err, task.ErrPersistence) {
		s.logger.Warn("failed to delete task", slog.String("task_id", id), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete task: %v", err)), nil
	}

	out := mutationResult{Deleted: id}
	if err != nil {
		out.Warning = err.Error()
	}
	return jsonResult(out)
}

// mutation converts a store result. A persistence failure is still a
// success, reported through the warning field.
func (s *Server) mutation(t task.Task, err error, action string) (*mcp.CallToolResult, error) {
	if err != nil && !errors.Is(err, task.ErrPersistence) {
		s.logger.Warn("failed to "+action, slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", action, err)), nil
	}

	r := toResult(t)
	out := mutationResult{Task: &r}
	if err != nil {
		out.Warning = err.Error()
	}
	return jsonResult(out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
