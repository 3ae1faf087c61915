package testutil

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewCallToolRequest creates a CallToolRequest for testing tool handlers
func NewCallToolRequest(name string, params map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: params,
		},
	}
}

// NewReadResourceRequest creates a ReadResourceRequest for uri.
func NewReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Request: mcp.Request{
			Method: "resources/read",
		},
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// ResultText joins the text content of a tool result.
func ResultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("nil tool result")
	}
	var parts []string
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
