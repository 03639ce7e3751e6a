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

// DetailsTool retrieves the complete record for one kanji: readings,
// radical, dictionary references, example words, stroke order media.
type DetailsTool struct {
	client *kanjialive.Client
}

// NewDetailsTool creates a new kanji details tool
func NewDetailsTool(client *kanjialive.Client) *DetailsTool {
	return &DetailsTool{client: client}
}

func (t *DetailsTool) Definition() mcp.Tool {
	return mcp.NewTool("kanjialive_get_kanji_details",
		mcp.WithDescription(
			"Get comprehensive information about a specific kanji character: meaning, stroke "+
				"count, grade level, Onyomi and Kunyomi readings in kana and romaji, radical "+
				"information, dictionary references (Kodansha, Classic Nelson), example words "+
				"with audio, and stroke order video."),
		mcp.WithString("character",
			mcp.Required(),
			mcp.Description("The kanji character to look up (親, 見, 日)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func (t *DetailsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("character")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	character, err := validate.KanjiCharacter("character", raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	L_debug("get_kanji_details: executing", "character", character)

	payload, info, err := t.client.Get(ctx, "kanji/"+url.PathEscape(character), nil)
	if err != nil {
		return toolError("kanjialive_get_kanji_details", err), nil
	}

	if cerr := kanjialive.CheckNotEmpty(payload, fmt.Sprintf("kanji '%s'", character)); cerr != nil {
		return toolError("kanjialive_get_kanji_details", cerr), nil
	}

	record, ok := payload.(map[string]any)
	if !ok {
		return toolError("kanjialive_get_kanji_details",
			fmt.Errorf("detail payload is %T, expected object", payload)), nil
	}

	filtered := filterKanjiDetail(record)
	meta := DetailMetadata{Endpoint: info.Endpoint, Timestamp: info.Timestamp}

	return mcp.NewToolResultText(formatKanjiDetail(filtered, meta)), nil
}

// filterKanjiDetail reduces a raw API record to the documented response
// contract. The upstream response also carries internal database fields
// (_id, *_search indices) and licensing-restricted data (textbook chapters,
// mnemonic hints); none of that may reach the caller.
//
// Documented fields:
//   - kanji: character, meaning, strokes (int), onyomi, kunyomi, video
//   - radical: character, strokes, image, position, name, meaning, animation
//   - references: grade, kodansha, classic_nelson
//   - examples: japanese, meaning, audio
func filterKanjiDetail(raw map[string]any) map[string]any {
	filtered := map[string]any{}

	if kanjiRaw, ok := raw["kanji"].(map[string]any); ok {
		kanji := map[string]any{}
		for _, key := range []string{"character", "meaning", "onyomi", "kunyomi", "video"} {
			if v, ok := kanjiRaw[key]; ok {
				kanji[key] = v
			}
		}
		// strokes arrives as {count, timings, images} from the raw API but
		// as a bare integer in the documented format; flatten objects.
		if strokes, ok := kanjiRaw["strokes"]; ok {
			if obj, isObj := strokes.(map[string]any); isObj {
				kanji["strokes"] = obj["count"]
			} else {
				kanji["strokes"] = strokes
			}
		}
		filtered["kanji"] = kanji
	}

	if radical, ok := raw["radical"].(map[string]any); ok {
		filtered["radical"] = radical
	}
	if refs, ok := raw["references"].(map[string]any); ok {
		filtered["references"] = refs
	}

	if examples, ok := raw["examples"].([]any); ok {
		kept := make([]any, 0, len(examples))
		for _, item := range examples {
			ex, ok := item.(map[string]any)
			if !ok {
				continue
			}
			entry := map[string]any{}
			for _, key := range []string{"japanese", "meaning", "audio"} {
				if v, ok := ex[key]; ok {
					entry[key] = v
				}
			}
			if len(entry) > 0 {
				kept = append(kept, entry)
			}
		}
		if len(kept) > 0 {
			filtered["examples"] = kept
		}
	}

	return filtered
}
