package tools

import (
	"testing"
)

func rawDetailResponse() map[string]any {
	return map[string]any{
		"_id": "5f6e...",
		"kanji": map[string]any{
			"character": "親",
			"meaning":   map[string]any{"english": "parent"},
			"strokes": map[string]any{
				"count":   float64(16),
				"timings": []any{0.1, 0.2},
				"images":  []any{"stroke1.svg"},
			},
			"onyomi":  map[string]any{"katakana": "シン", "romaji": "shin"},
			"kunyomi": map[string]any{"hiragana": "おや", "romaji": "oya"},
			"video":   map[string]any{"mp4": "https://example/oya.mp4"},
			"deck":    "internal-deck-id",
		},
		"kstroke":  float64(16),
		"kmeaning": "parent",
		"radical": map[string]any{
			"character": "⾒",
			"strokes":   float64(7),
		},
		"references": map[string]any{
			"grade":    float64(2),
			"kodansha": "1410",
		},
		"examples": []any{
			map[string]any{
				"japanese": "親切（しんせつ）",
				"meaning":  map[string]any{"english": "kind"},
				"audio":    map[string]any{"mp3": "https://example/shinsetsu.mp3"},
				"opposite": []any{"冷たい"},
			},
		},
		"mn_hint": "restricted mnemonic text",
	}
}

func TestFilterKanjiDetailDropsUndocumentedFields(t *testing.T) {
	filtered := filterKanjiDetail(rawDetailResponse())

	for _, key := range []string{"_id", "kstroke", "kmeaning", "mn_hint"} {
		if _, ok := filtered[key]; ok {
			t.Errorf("undocumented top-level field %q survived filtering", key)
		}
	}

	kanji, ok := filtered["kanji"].(map[string]any)
	if !ok {
		t.Fatal("kanji block missing")
	}
	if _, ok := kanji["deck"]; ok {
		t.Error("undocumented kanji field survived filtering")
	}

	examples := filtered["examples"].([]any)
	ex := examples[0].(map[string]any)
	if _, ok := ex["opposite"]; ok {
		t.Error("undocumented example field survived filtering")
	}
}

func TestFilterKanjiDetailFlattensStrokes(t *testing.T) {
	filtered := filterKanjiDetail(rawDetailResponse())
	kanji := filtered["kanji"].(map[string]any)

	strokes, ok := kanji["strokes"].(float64)
	if !ok {
		t.Fatalf("strokes not flattened to a number: %#v", kanji["strokes"])
	}
	if strokes != 16 {
		t.Errorf("strokes = %v, want 16", strokes)
	}
}

func TestFilterKanjiDetailKeepsScalarStrokes(t *testing.T) {
	raw := rawDetailResponse()
	raw["kanji"].(map[string]any)["strokes"] = float64(7)

	filtered := filterKanjiDetail(raw)
	if got := filtered["kanji"].(map[string]any)["strokes"]; got != float64(7) {
		t.Errorf("scalar strokes mangled: %#v", got)
	}
}

func TestFilterKanjiDetailKeepsDocumentedBlocks(t *testing.T) {
	filtered := filterKanjiDetail(rawDetailResponse())

	if _, ok := filtered["radical"].(map[string]any); !ok {
		t.Error("radical block dropped")
	}
	if _, ok := filtered["references"].(map[string]any); !ok {
		t.Error("references block dropped")
	}
	kanji := filtered["kanji"].(map[string]any)
	for _, key := range []string{"character", "meaning", "onyomi", "kunyomi", "video"} {
		if _, ok := kanji[key]; !ok {
			t.Errorf("documented kanji field %q dropped", key)
		}
	}
}

func TestFilterKanjiDetailEmptyInput(t *testing.T) {
	filtered := filterKanjiDetail(map[string]any{})
	if len(filtered) != 0 {
		t.Errorf("empty input produced %#v", filtered)
	}
}
