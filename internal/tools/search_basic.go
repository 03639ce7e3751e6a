package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roelfdiedericks/kanjiclaw/internal/kanjialive"
	. "github.com/roelfdiedericks/kanjiclaw/internal/logging"
	"github.com/roelfdiedericks/kanjiclaw/internal/validate"
)

// BasicSearchTool searches Kanji Alive with a single free-text term.
type BasicSearchTool struct {
	client *kanjialive.Client
}

// NewBasicSearchTool creates a new basic search tool
func NewBasicSearchTool(client *kanjialive.Client) *BasicSearchTool {
	return &BasicSearchTool{client: client}
}

func (t *BasicSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("kanjialive_search_basic",
		mcp.WithDescription(
			"Search for kanji using a simple search term. Valid terms: a single kanji "+
				"character (親), an Onyomi reading in katakana (シン), a Kunyomi reading in "+
				"hiragana (おや), or an English meaning (parent). The database contains 1,235 "+
				"kanji taught in Japanese elementary schools."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search term: a single kanji character (親), an Onyomi (on) reading "+
				"in katakana (シン), a Kunyomi (kun) reading in hiragana (おや), or an English "+
				"meaning (parent)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func (t *BasicSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query, err := validate.Query(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	L_debug("search_basic: executing", "query", query)

	payload, info, err := t.client.Get(ctx, "search/"+url.PathEscape(query), nil)
	if err != nil {
		return toolError("kanjialive_search_basic", err), nil
	}

	if cerr := kanjialive.CheckNotEmpty(payload, fmt.Sprintf("query '%s'", query)); cerr != nil {
		return toolError("kanjialive_search_basic", cerr), nil
	}

	results := asResultList(payload)
	meta := newSearchMetadata(results, map[string]string{"query": query}, info)

	L_debug("search_basic: done", "results", meta.ResultsReturned)
	return mcp.NewToolResultText(formatSearchResults(results, meta)), nil
}
