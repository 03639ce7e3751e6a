package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roelfdiedericks/kanjiclaw/internal/kanjialive"
	. "github.com/roelfdiedericks/kanjiclaw/internal/logging"
	"github.com/roelfdiedericks/kanjiclaw/internal/validate"
)

// AdvancedSearchTool searches Kanji Alive with up to eleven structured
// filters that can be combined: readings, meanings, stroke counts, radical
// properties, grade level, and study lists.
type AdvancedSearchTool struct {
	client *kanjialive.Client
}

// NewAdvancedSearchTool creates a new advanced search tool
func NewAdvancedSearchTool(client *kanjialive.Client) *AdvancedSearchTool {
	return &AdvancedSearchTool{client: client}
}

func (t *AdvancedSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("kanjialive_search_advanced",
		mcp.WithDescription(
			"Search for kanji using multiple filter criteria. Filters can be combined for "+
				"precise searches, e.g. all 5-stroke kanji taught in grade 1, or all kanji "+
				"using a specific radical. At least one filter must be provided; for simple "+
				"searches use kanjialive_search_basic instead."),
		mcp.WithString("on",
			mcp.Description("Onyomi (on) reading in romaji or katakana (shin, シン)")),
		mcp.WithString("kun",
			mcp.Description("Kunyomi (kun) reading in romaji or hiragana (oya, おや)")),
		mcp.WithString("kem",
			mcp.Description("Kanji English meaning (parent, see)")),
		mcp.WithNumber("ks",
			mcp.Description("Kanji stroke number (1-30)"),
			mcp.Min(1), mcp.Max(30)),
		mcp.WithString("kanji",
			mcp.Description("Kanji character (親, 見)")),
		mcp.WithString("rjn",
			mcp.Description("Radical Japanese name in romaji or hiragana (miru, みる)")),
		mcp.WithString("rem",
			mcp.Description("Radical English meaning (see, fire, water)")),
		mcp.WithNumber("rs",
			mcp.Description("Radical stroke number (1-17)"),
			mcp.Min(1), mcp.Max(17)),
		mcp.WithString("rpos",
			mcp.Description("Radical position: hen, tsukuri, kanmuri, ashi, kamae, tare, nyou, or in hiragana")),
		mcp.WithNumber("grade",
			mcp.Description("School grade level (1-6) where kanji is taught in Japanese elementary schools"),
			mcp.Min(1), mcp.Max(6)),
		mcp.WithString("list",
			mcp.Description("Study list to search within: 'ap' (Advanced Placement Exam), "+
				"'mac' (Macquarie University), optionally with chapter: 'ap:c3', 'mac:c12'")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func (t *AdvancedSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := validate.AdvancedSearch{
		On:    req.GetString("on", ""),
		Kun:   req.GetString("kun", ""),
		Kem:   req.GetString("kem", ""),
		Kanji: req.GetString("kanji", ""),
		Rjn:   req.GetString("rjn", ""),
		Rem:   req.GetString("rem", ""),
		Rpos:  req.GetString("rpos", ""),
		List:  req.GetString("list", ""),
		Ks:    req.GetInt("ks", 0),
		Rs:    req.GetInt("rs", 0),
		Grade: req.GetInt("grade", 0),
	}

	// Validation and the at-least-one-filter gate run before any request
	// is constructed.
	params, err := filters.QueryParams()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	queryParams := map[string]string{}
	for k := range params {
		queryParams[k] = params.Get(k)
	}
	L_debug("search_advanced: executing", "filters", queryParams)

	payload, info, err := t.client.Get(ctx, "search/advanced", params)
	if err != nil {
		return toolError("kanjialive_search_advanced", err), nil
	}

	// An empty result set here is a legitimate zero-match outcome.
	results := asResultList(payload)
	meta := newSearchMetadata(results, queryParams, info)

	L_debug("search_advanced: done", "results", meta.ResultsReturned)
	return mcp.NewToolResultText(formatSearchResults(results, meta)), nil
}
