// Package mcp provides an MCP (Model Context Protocol) server that exposes
// a dmenv project as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/dmenv/internal/storage"
	"github.com/valter-silva-au/dmenv/pkg/models"
)

// Project is the subset of core.Project the MCP tools use.
type Project interface {
	Paths() models.Paths
	Metadata() models.Metadata
	LockEntries() ([]models.LockEntry, error)
	BumpInLock(name, version string, git bool) error
}

// Server wraps a dmenv project and exposes it as MCP tools.
type Server struct {
	server  *gomcp.Server
	project Project
}

// NewServer creates a new MCP server for the given project.
func NewServer(project Project, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{project: project}
	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "dmenv", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type showVenvPathInput struct{}

type venvPathOutput struct {
	VenvPath      string `json:"venv_path"`
	LockPath      string `json:"lock_path"`
	PythonVersion string `json:"python_version"`
	Platform      string `json:"platform"`
}

type showLockInput struct {
	Name string `json:"name,omitempty" jsonschema:"only return the dependency with this name"`
}

type showLockOutput struct {
	Dependencies []models.LockEntry `json:"dependencies"`
	Count        int                `json:"count"`
}

type bumpInLockInput struct {
	Name    string `json:"name" jsonschema:"required,name of the dependency to bump"`
	Version string `json:"version" jsonschema:"required,new version, or new git ref when git is true"`
	Git     bool   `json:"git,omitempty" jsonschema:"bump the ref of a git dependency"`
}

type bumpInLockOutput struct {
	Message string `json:"message"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "show_venv_path",
		Description: "Show where the project's virtualenv and lock file live, and which Python they are bound to.",
	}, s.handleShowVenvPath)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "show_lock",
		Description: "List the dependencies pinned in the project's lock file, optionally filtered by name.",
	}, s.handleShowLock)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "bump_in_lock",
		Description: "Pin a dependency of the lock file to a new version (or a git dependency to a new ref).",
	}, s.handleBumpInLock)
}

// --- Tool handlers ---

func (s *Server) handleShowVenvPath(_ context.Context, _ *gomcp.CallToolRequest, _ showVenvPathInput) (*gomcp.CallToolResult, venvPathOutput, error) {
	paths := s.project.Paths()
	meta := s.project.Metadata()
	return nil, venvPathOutput{
		VenvPath:      paths.Venv,
		LockPath:      paths.Lock,
		PythonVersion: meta.PythonVersion,
		Platform:      meta.PythonPlatform,
	}, nil
}

func (s *Server) handleShowLock(_ context.Context, _ *gomcp.CallToolRequest, input showLockInput) (*gomcp.CallToolResult, showLockOutput, error) {
	entries, err := s.project.LockEntries()
	if err != nil {
		return errorResult(fmt.Sprintf("reading lock: %s", err)), showLockOutput{}, nil
	}

	if input.Name != "" {
		var filtered []models.LockEntry
		for _, e := range entries {
			if sameDistribution(e.Name, input.Name) {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) == 0 {
			return errorResult(fmt.Sprintf("dependency %s not found in lock", input.Name)), showLockOutput{}, nil
		}
		entries = filtered
	}

	if entries == nil {
		entries = []models.LockEntry{}
	}
	return nil, showLockOutput{Dependencies: entries, Count: len(entries)}, nil
}

func (s *Server) handleBumpInLock(_ context.Context, _ *gomcp.CallToolRequest, input bumpInLockInput) (*gomcp.CallToolResult, bumpInLockOutput, error) {
	if input.Name == "" {
		return errorResult("name is required"), bumpInLockOutput{}, nil
	}
	if input.Version == "" {
		return errorResult("version is required"), bumpInLockOutput{}, nil
	}

	if err := s.project.BumpInLock(input.Name, input.Version, input.Git); err != nil {
		return errorResult(fmt.Sprintf("bumping %s: %s", input.Name, err)), bumpInLockOutput{}, nil
	}

	return nil, bumpInLockOutput{
		Message: fmt.Sprintf("%s bumped to %s in %s", input.Name, input.Version, s.project.Paths().Lock),
	}, nil
}

// --- Helpers ---

func sameDistribution(a, b string) bool {
	return storage.CanonicalName(a) == storage.CanonicalName(b)
}

// errorResult creates a CallToolResult that signals an error to the client.
func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
