// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes interlink tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/asakura/interlink/internal/linker"
	"github.com/asakura/interlink/internal/parser"
	"github.com/asakura/interlink/internal/postservice"
	"github.com/asakura/interlink/internal/seo"
	"github.com/asakura/interlink/internal/storage"
)

// Server wraps the MCP server with interlink tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *postservice.Service
	store storage.Provider
}

// New creates a new MCP server with all interlink tools registered.
func New(svc *postservice.Service, store storage.Provider) *Server {
	s := &Server{svc: svc, store: store}

	s.mcp = server.NewMCPServer(
		"Interlink",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through post content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read the full content of a Markdown post."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the post (e.g. _posts/2024-01-15-slug.md)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("analyze_post",
		mcp.WithDescription("Run the SEO checklist over one post and return its score, issues, and suggestions."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the post")),
	), s.analyzePost)

	s.mcp.AddTool(mcp.NewTool("annotate_posts",
		mcp.WithDescription("Run the internal-link rewrite pass over all posts. "+
			"Dry run by default; set write=true to persist the rewritten bodies. "+
			"Read the post format contract first via the get_post_contract tool or "+
			"the interlink://post-format resource."),
		mcp.WithBoolean("write", mcp.Description("Persist rewritten bodies (default false: dry run)")),
	), s.annotatePosts)

	s.mcp.AddTool(mcp.NewTool("suggest_keywords",
		mcp.WithDescription("Extract the link keywords a post title would contribute to the index."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Post title to extract keywords from")),
	), s.suggestKeywords)

	s.mcp.AddTool(mcp.NewTool("get_post_contract",
		mcp.WithDescription("Returns the canonical post format contract. "+
			"Call this before drafting or editing posts to ensure correct structure."),
	), s.getPostContract)

	// Resource: post format contract.
	s.mcp.AddResource(
		mcp.NewResource("interlink://post-format", "Post Format Contract",
			mcp.WithResourceDescription("Canonical Markdown post format that all posts must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) analyzePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	res, err := parser.Parse(data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	analysis := seo.NewAnalyzer().AnalyzePost(parser.PostFromResult(path, res))
	out, _ := json.MarshalIndent(analysis, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) annotatePosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	write := req.GetBool("write", false)

	results, err := s.svc.Annotate(ctx, write)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	inserted := 0
	for _, r := range results {
		inserted += len(r.Inserted)
	}
	out, _ := json.MarshalIndent(map[string]any{
		"write":    write,
		"inserted": inserted,
		"results":  results,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) suggestKeywords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	keywords := linker.ExtractKeywords(title)
	if len(keywords) == 0 {
		return mcp.NewToolResultText("no keywords extracted"), nil
	}
	return mcp.NewToolResultText(strings.Join(keywords, "\n")), nil
}

func (s *Server) getPostContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "interlink://post-format",
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}
