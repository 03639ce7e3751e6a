package tools

import (
	"fmt"
	"regexp"
	"strings"
)

// Markdown characters escaped in untrusted API text. Conservative: some of
// these only matter in certain contexts, but escaping everywhere keeps
// upstream data from breaking table or link syntax.
var mdSpecial = regexp.MustCompile("([\\\\`*_{}\\[\\]()#+\\-.!|><~])")

func escapeMarkdown(text string) string {
	return mdSpecial.ReplaceAllString(text, `\$1`)
}

// Example words shown per kanji before truncating.
const maxExamples = 15

// formatSearchResults renders search results as a markdown table with a
// metadata header. The API exposes no canonical total count, so the number
// of returned results is what gets displayed.
func formatSearchResults(results []map[string]any, meta SearchMetadata) string {
	if len(results) == 0 {
		return "No kanji found matching your search criteria."
	}

	var b strings.Builder
	b.WriteString("# Kanji Search Results\n\n")
	b.WriteString(meta.markdownHeader())

	// The search API returns minimal data: character, stroke count, radical.
	b.WriteString("| Kanji | Strokes | Radical | Rad. Strokes | Rad. # |\n")
	b.WriteString("|-------|---------|---------|--------------|--------|\n")

	for _, result := range results {
		kanji := getMap(result, "kanji")
		radical := getMap(result, "radical")
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			getStr(kanji, "character", "?"),
			getNum(kanji, "stroke"),
			getStr(radical, "character", "N/A"),
			getNum(radical, "stroke"),
			getNum(radical, "order"),
		)
	}

	fmt.Fprintf(&b, "\n**Total Results Shown:** %d\n", len(results))
	return b.String()
}

// formatKanjiDetail renders one kanji's full record as markdown.
// Expects a response already filtered to the documented contract.
func formatKanjiDetail(kanji map[string]any, meta DetailMetadata) string {
	info := getMap(kanji, "kanji")
	char := getStr(info, "character", "?")
	meaning := getStr(getMap(info, "meaning"), "english", "N/A")
	refs := getMap(kanji, "references")

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - Kanji Details\n\n", char)
	fmt.Fprintf(&b, "**Meaning:** %s\n\n", escapeMarkdown(meaning))

	b.WriteString("## Basic Information\n\n")
	fmt.Fprintf(&b, "- **Strokes:** %s\n", getNum(info, "strokes"))
	if grade := getNum(refs, "grade"); grade != "N/A" {
		fmt.Fprintf(&b, "- **Grade:** %s\n", grade)
	} else {
		b.WriteString("- **Grade:** Not taught in elementary school\n")
	}
	if mp4 := getStr(getMap(info, "video"), "mp4", ""); mp4 != "" {
		fmt.Fprintf(&b, "- **Stroke Order Video:** <%s>\n", mp4)
	}
	b.WriteString("\n")

	b.WriteString("## Readings\n\n")
	writeReadings(&b, "Onyomi (音読み)", getMap(info, "onyomi"), "katakana")
	writeReadings(&b, "Kunyomi (訓読み)", getMap(info, "kunyomi"), "hiragana")

	if radical := getMap(kanji, "radical"); len(radical) > 0 {
		b.WriteString("## Radical\n\n")
		fmt.Fprintf(&b, "- **Character:** %s\n", getStr(radical, "character", "N/A"))
		fmt.Fprintf(&b, "- **Meaning:** %s\n",
			escapeMarkdown(getStr(getMap(radical, "meaning"), "english", "N/A")))
		fmt.Fprintf(&b, "- **Name:** %s (%s)\n",
			getStr(getMap(radical, "name"), "hiragana", "N/A"),
			escapeMarkdown(getStr(getMap(radical, "name"), "romaji", "N/A")))
		fmt.Fprintf(&b, "- **Strokes:** %s\n", getNum(radical, "strokes"))
		if pos := getStr(getMap(radical, "position"), "hiragana", ""); pos != "" {
			fmt.Fprintf(&b, "- **Position:** %s\n", pos)
		}
		b.WriteString("\n")
	}

	if len(refs) > 0 {
		b.WriteString("## Dictionary References\n\n")
		if v := getStr(refs, "kodansha", ""); v != "" {
			fmt.Fprintf(&b, "- **Kodansha:** %s\n", v)
		}
		if v := getStr(refs, "classic_nelson", ""); v != "" {
			fmt.Fprintf(&b, "- **Classic Nelson:** %s\n", v)
		}
		b.WriteString("\n")
	}

	writeExamples(&b, kanji)

	fmt.Fprintf(&b, "*Retrieved from `%s` at %s*\n",
		meta.Endpoint, meta.Timestamp.Format("2006-01-02T15:04:05"))
	return b.String()
}

// writeReadings renders paired kana/romaji readings. The API returns
// comma-separated strings (kunyomi uses the Japanese comma 、), not arrays.
func writeReadings(b *strings.Builder, title string, reading map[string]any, kanaKey string) {
	kana := getStr(reading, kanaKey, "")
	if kana == "" {
		return
	}
	romaji := getStr(reading, "romaji", "")

	kanaParts := splitReadings(kana)
	romajiParts := splitReadings(romaji)

	fmt.Fprintf(b, "**%s:**\n", title)
	for i, k := range kanaParts {
		if i < len(romajiParts) && romajiParts[i] != "" {
			fmt.Fprintf(b, "- %s (%s)\n", k, romajiParts[i])
		} else {
			fmt.Fprintf(b, "- %s\n", k)
		}
	}
	b.WriteString("\n")
}

func splitReadings(s string) []string {
	s = strings.ReplaceAll(s, "、", ",")
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func writeExamples(b *strings.Builder, kanji map[string]any) {
	raw, _ := kanji["examples"].([]any)
	if len(raw) == 0 {
		return
	}

	total := len(raw)
	shown := raw
	if total > maxExamples {
		shown = raw[:maxExamples]
		fmt.Fprintf(b, "## Example Words (showing %d of %d)\n\n", maxExamples, total)
	} else {
		b.WriteString("## Example Words\n\n")
	}

	for _, item := range shown {
		ex, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fmt.Fprintf(b, "### %s\n", escapeMarkdown(getStr(ex, "japanese", "")))
		fmt.Fprintf(b, "**Meaning:** %s\n",
			escapeMarkdown(getStr(getMap(ex, "meaning"), "english", "")))
		if mp3 := getStr(getMap(ex, "audio"), "mp3", ""); mp3 != "" {
			fmt.Fprintf(b, "**Audio:** <%s>\n", mp3)
		}
		b.WriteString("\n")
	}

	if total > maxExamples {
		fmt.Fprintf(b, "*... and %d more examples not shown.*\n\n", total-maxExamples)
	}
}

// JSON navigation helpers. The payload is opaque decoded JSON; these keep
// the formatters readable without panicking on missing or oddly typed data.

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]any)
	return v
}

func getStr(m map[string]any, key, fallback string) string {
	if m == nil {
		return fallback
	}
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// getNum formats a JSON number as an integer where possible, "N/A" when
// absent. Some fields arrive as strings in older API records.
func getNum(m map[string]any, key string) string {
	if m == nil {
		return "N/A"
	}
	switch v := m[key].(type) {
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case string:
		if v != "" {
			return v
		}
	}
	return "N/A"
}
