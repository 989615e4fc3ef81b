// Package mcpserver exposes the registry tools over the Model Context
// Protocol (streamable HTTP) with static bearer-token auth.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	tools "tech-translator/tools"
	"tech-translator/utility"
)

const serverName = "Tech Translator MCP Server"
const serverVersion = "1.0.0"

type contextKey string

// authHeaderKey carries the original Authorization header from the HTTP
// request into tool handlers.
const authHeaderKey contextKey = "authorization"

// New builds the MCP server with all registry tools attached. authToken is
// the static bearer token every caller must present.
func New(authToken string) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTool(mcp.NewTool("validate",
		mcp.WithDescription("Return the owner phone number for the liveness/identity check"),
	), guard(authToken, handleValidate))

	s.AddTool(mcp.NewTool("tech_translator",
		mcp.WithDescription("Explains any technical or non-technical term in multiple ways: plain English, TL;DR, ELI5, and a diagram"),
		mcp.WithString("text", mcp.Required(), mcp.Description("Any term, phrase, or sentence to explain")),
	), guard(authToken, handleTechTranslator))

	s.AddTool(mcp.NewTool("web_fetch",
		mcp.WithDescription("Fetch a web page and extract its readable text as simplified markdown"),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL to fetch")),
		mcp.WithNumber("max_length", mcp.Description("Maximum content length in characters (default 50000)")),
	), guard(authToken, handleJSONTool("web_fetch")))

	s.AddTool(mcp.NewTool("web_search",
		mcp.WithDescription("Search the web and return result links with titles and snippets"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithNumber("max_results", mcp.Description("Maximum number of results (default 5, max 10)")),
	), guard(authToken, handleJSONTool("web_search")))

	return s
}

// NewHTTPServer wraps the MCP server in a streamable HTTP transport that
// stashes the Authorization header in the request context.
func NewHTTPServer(s *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return context.WithValue(ctx, authHeaderKey, r.Header.Get("Authorization"))
		}),
	)
}

// guard rejects calls whose bearer token does not match before running the
// wrapped handler.
func guard(authToken string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		header, _ := ctx.Value(authHeaderKey).(string)
		got := utility.ParseBearerToken(header)
		if !utility.SecureCompare(got, authToken) {
			log.Printf("[MCP] rejected %s: invalid bearer token", req.Params.Name)
			return mcp.NewToolResultError("unauthorized"), nil
		}
		return h(ctx, req)
	}
}

func handleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := tools.Execute("validate", nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return mcp.NewToolResultError(resp.Error), nil
	}
	number, _ := resp.Data.(string)
	return mcp.NewToolResultText(number), nil
}

// handleTechTranslator returns one text content item per emitted section,
// in canonical order.
func handleTechTranslator(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp, err := tools.Execute("tech_translator", map[string]interface{}{"text": text})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return mcp.NewToolResultError(resp.Error), nil
	}
	items, err := decodeContentItems(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tool output: %w", err)
	}
	content := make([]mcp.Content, 0, len(items))
	for _, item := range items {
		content = append(content, mcp.NewTextContent(item.Text))
	}
	return &mcp.CallToolResult{Content: content}, nil
}

// handleJSONTool returns a handler that executes the named registry tool and
// renders its data payload as one JSON text item.
func handleJSONTool(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := tools.Execute(name, req.GetArguments())
		if err != nil {
			return nil, err
		}
		if !resp.Success {
			return mcp.NewToolResultError(resp.Error), nil
		}
		b, err := json.MarshalIndent(resp.Data, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode tool output: %w", err)
		}
		return mcp.NewToolResultText(string(b)), nil
	}
}

func decodeContentItems(data interface{}) ([]tools.ContentItem, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Content []tools.ContentItem `json:"content"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, err
	}
	return payload.Content, nil
}
