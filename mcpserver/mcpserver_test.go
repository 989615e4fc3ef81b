package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func callReq(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	var sb strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

func TestGuard_RejectsMissingToken(t *testing.T) {
	h := guard("expected-token", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t.Fatalf("handler must not run without auth")
		return nil, nil
	})
	res, err := h(context.Background(), callReq("validate", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected error result for missing token")
	}
	if got := resultText(t, res); !strings.Contains(got, "unauthorized") {
		t.Fatalf("expected unauthorized message, got %q", got)
	}
}

func TestGuard_RejectsWrongToken(t *testing.T) {
	h := guard("expected-token", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t.Fatalf("handler must not run with a bad token")
		return nil, nil
	})
	ctx := context.WithValue(context.Background(), authHeaderKey, "Bearer nope")
	res, err := h(ctx, callReq("validate", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected error result for wrong token")
	}
}

func TestGuard_AllowsValidToken(t *testing.T) {
	called := false
	h := guard("expected-token", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("ok"), nil
	})
	ctx := context.WithValue(context.Background(), authHeaderKey, "Bearer expected-token")
	res, err := h(ctx, callReq("validate", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("handler should have run")
	}
	if res.IsError {
		t.Fatalf("expected success result")
	}
}

func TestDecodeContentItems(t *testing.T) {
	data := map[string]interface{}{
		"content": []map[string]string{
			{"type": "text", "text": "first"},
			{"type": "text", "text": "second"},
		},
		"sections": 2,
	}
	items, err := decodeContentItems(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Text != "first" || items[1].Text != "second" {
		t.Fatalf("unexpected items: %#v", items)
	}
}

func TestNew_RegistersTools(t *testing.T) {
	s := New("token")
	if s == nil {
		t.Fatalf("expected server instance")
	}
}
