// Package tools defines the MCP tools exposed by kanjiclaw: basic search,
// advanced search, and kanji detail lookup. Each tool validates its input
// before touching the network, calls the Kanji Alive client, and renders the
// result as markdown for the model.
//
// Every failure becomes a tool result with isError=true carrying only the
// classified, user-safe message; raw detail stays in the logs. The caller
// never sees a protocol-level error from a tool body.
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roelfdiedericks/kanjiclaw/internal/kanjialive"
	. "github.com/roelfdiedericks/kanjiclaw/internal/logging"
)

// Register adds all kanjiclaw tools to the MCP server.
func Register(s *server.MCPServer, client *kanjialive.Client) {
	basic := NewBasicSearchTool(client)
	advanced := NewAdvancedSearchTool(client)
	details := NewDetailsTool(client)

	s.AddTool(basic.Definition(), basic.Handle)
	s.AddTool(advanced.Definition(), advanced.Handle)
	s.AddTool(details.Definition(), details.Handle)
}

// toolError converts any failure into an isError tool result with a safe
// message, classifying it first if it is not already classified.
func toolError(tool string, err error) *mcp.CallToolResult {
	ce := kanjialive.ClassifyUnexpected(err)
	L_warn("tool failed", "tool", tool, "kind", ce.Kind, "detail", ce.Detail())
	return mcp.NewToolResultError(ce.Message)
}

// asResultList normalizes a search payload into a list of result objects.
// The client has already verified the container shape; a nil payload means
// zero results.
func asResultList(payload any) []map[string]any {
	switch v := payload.(type) {
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]any:
		return []map[string]any{v}
	default:
		return nil
	}
}
