// Command radicals-convert turns the Kanji Alive all-radicals.csv export
// into the clean JSON bundle embedded by internal/radicals.
//
// It strips HTML from the Position and Notes columns, extracts variant
// references, parses the encoding blocks, flags Private Use Area glyphs
// and gives them a plain-text fallback display.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// PUA ranges used by Kanji Alive for custom radical glyphs.
var puaRanges = [][2]rune{
	{0xE700, 0xE759},
	{0xE766, 0xE767},
}

var (
	htmlTagRe   = regexp.MustCompile(`<[^>]+>`)
	variantRe   = regexp.MustCompile(`a variant of\s+(\S+)（`)
	hrefRe      = regexp.MustCompile(`href="#([^"]+)"`)
	unicodeRe   = regexp.MustCompile(`Unicode:\s*(U\+[0-9A-Fa-f]+(?:\s*\([^)]+\))?)`)
	utf8Re      = regexp.MustCompile(`UTF-8:\s*([0-9A-Fa-f]{2}(?:\s+[0-9A-Fa-f]{2})*)`)
	shiftJISRe  = regexp.MustCompile(`Shift-JIS:\s*([0-9A-Fa-f]+)`)
	codepointRe = regexp.MustCompile(`^U\+([0-9A-Fa-f]+)`)
)

type encoding struct {
	Name     string `json:"name,omitempty"`
	Unicode  string `json:"unicode,omitempty"`
	UTF8     string `json:"utf8,omitempty"`
	ShiftJIS string `json:"shift_jis,omitempty"`
}

type reading struct {
	Japanese string `json:"japanese,omitempty"`
	Romaji   string `json:"romaji,omitempty"`
}

type position struct {
	Japanese string `json:"japanese,omitempty"`
	Romaji   string `json:"romaji,omitempty"`
}

type radical struct {
	SortOrder       int       `json:"sort_order"`
	Strokes         int       `json:"strokes"`
	Character       string    `json:"character,omitempty"`
	Meaning         string    `json:"meaning,omitempty"`
	Reading         reading   `json:"reading"`
	Position        *position `json:"position"`
	Important       bool      `json:"important"`
	Origin          string    `json:"origin"`
	Encoding        *encoding `json:"encoding"`
	VariantOf       string    `json:"variant_of,omitempty"`
	PUAEncoded      bool      `json:"pua_encoded,omitempty"`
	PUACodepoint    string    `json:"pua_codepoint,omitempty"`
	FallbackDisplay string    `json:"fallback_display,omitempty"`
}

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// extractVariantOf pulls the base radical character out of notes like
// `<a href="#⼑">a variant of ⼑（かたな）</a>`.
func extractVariantOf(notes string) string {
	if notes == "" {
		return ""
	}
	if m := variantRe.FindStringSubmatch(notes); m != nil {
		return m[1]
	}
	if m := hrefRe.FindStringSubmatch(notes); m != nil {
		return m[1]
	}
	return ""
}

// parseEncoding splits a block like
//
//	CJK RADICAL KNIFE TWO
//	Unicode: U+2E89, UTF-8: E2 BA 89
//
// into its structured parts.
func parseEncoding(s string) *encoding {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	enc := &encoding{}
	lines := strings.SplitN(s, "\n", 2)
	enc.Name = strings.TrimSpace(lines[0])
	if m := unicodeRe.FindStringSubmatch(s); m != nil {
		enc.Unicode = strings.TrimSpace(m[1])
	}
	if m := utf8Re.FindStringSubmatch(s); m != nil {
		enc.UTF8 = strings.TrimSpace(m[1])
	}
	if m := shiftJISRe.FindStringSubmatch(s); m != nil {
		enc.ShiftJIS = strings.TrimSpace(m[1])
	}
	return enc
}

func isPUAEncoded(enc *encoding) bool {
	if enc == nil || enc.Unicode == "" {
		return false
	}
	m := codepointRe.FindStringSubmatch(enc.Unicode)
	if m == nil {
		return false
	}
	cp, err := strconv.ParseInt(m[1], 16, 32)
	if err != nil {
		return false
	}
	for _, r := range puaRanges {
		if rune(cp) >= r[0] && rune(cp) <= r[1] {
			return true
		}
	}
	return false
}

// fallbackDisplay renders a PUA radical as readable text, e.g.
// "⼝ → くちへん (kuchihen) — mouth, left position".
func fallbackDisplay(r *radical) string {
	var b strings.Builder
	if r.VariantOf != "" {
		b.WriteString(r.VariantOf)
		b.WriteString(" → ")
	}
	if r.Reading.Japanese != "" {
		b.WriteString(r.Reading.Japanese)
		if r.Reading.Romaji != "" {
			fmt.Fprintf(&b, " (%s)", r.Reading.Romaji)
		}
	}
	posDesc := ""
	if r.Position != nil {
		posDesc = r.Position.Romaji
	}
	if r.Meaning != "" || posDesc != "" {
		b.WriteString(" — ")
		if r.Meaning != "" {
			b.WriteString(r.Meaning)
		}
		if posDesc != "" {
			if r.Meaning != "" {
				b.WriteString(", ")
			}
			b.WriteString(posDesc)
			b.WriteString(" position")
		}
	}
	return b.String()
}

func convertRow(row map[string]string) *radical {
	variantOf := extractVariantOf(row["Notes"])

	origin := "variant"
	if strings.TrimSpace(row["Origin"]) == "Kangxi" {
		origin = "kangxi"
	}

	enc := parseEncoding(row["Encoding"])

	r := &radical{
		Character: strings.TrimSpace(row["Radical"]),
		Meaning:   strings.TrimSpace(row["Meaning"]),
		Reading: reading{
			Japanese: strings.TrimSpace(row["Reading"]),
			Romaji:   strings.TrimSpace(row["Reading-R"]),
		},
		Important: strings.EqualFold(strings.TrimSpace(row["Importance"]), "important"),
		Origin:    origin,
		Encoding:  enc,
		VariantOf: variantOf,
	}
	r.SortOrder, _ = strconv.Atoi(strings.TrimSpace(row["Sort Order"]))
	r.Strokes, _ = strconv.Atoi(strings.TrimSpace(row["Stroke#"]))

	posJ := stripHTML(row["Position-J"])
	posR := stripHTML(row["Position-R"])
	if posJ != "" || posR != "" {
		r.Position = &position{Japanese: posJ, Romaji: posR}
	}

	if isPUAEncoded(enc) {
		r.PUAEncoded = true
		if m := codepointRe.FindStringSubmatch(enc.Unicode); m != nil {
			r.PUACodepoint = "U+" + strings.ToUpper(m[1])
		}
		r.FallbackDisplay = fallbackDisplay(r)
	}

	return r
}

func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func main() {
	in := flag.String("in", "all-radicals.csv", "source CSV file")
	out := flag.String("out", "internal/radicals/data/japanese-radicals.json", "output JSON file")
	flag.Parse()

	rows, err := readCSV(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "radicals-convert: %v\n", err)
		os.Exit(1)
	}

	radicals := make([]*radical, 0, len(rows))
	for _, row := range rows {
		radicals = append(radicals, convertRow(row))
	}
	sort.Slice(radicals, func(i, j int) bool {
		return radicals[i].SortOrder < radicals[j].SortOrder
	})

	var kangxi, variants, important, pua int
	for _, r := range radicals {
		switch r.Origin {
		case "kangxi":
			kangxi++
		case "variant":
			variants++
		}
		if r.Important {
			important++
		}
		if r.PUAEncoded {
			pua++
		}
	}

	output := map[string]any{
		"description":   "The 214 traditional Kangxi radicals with position variants",
		"source":        "https://kanjialive.com/214-traditional-kanji-radicals/",
		"license":       "Creative Commons CC-BY",
		"repository":    "https://github.com/kanjialive/kanji-data-media",
		"total_entries": len(radicals),
		"statistics": map[string]int{
			"kangxi_radicals": kangxi,
			"variants":        variants,
			"important":       important,
			"pua_encoded":     pua,
		},
		"font_requirement": map[string]any{
			"note": fmt.Sprintf("%d position variants use Private Use Area (PUA) Unicode encoding "+
				"and require the Kanji Alive radicals font to display correctly. "+
				"These entries include a fallback_display field for readability without the font.", pua),
			"affected_count":   pua,
			"pua_range":        "U+E700–U+E759, U+E766–U+E767",
			"font_url":         "https://github.com/kanjialive/kanji-data-media/tree/master/radicals-font",
			"visual_reference": "https://raw.githubusercontent.com/kanjialive/kanji-data-media/master/radicals-font/60-custom-glyphs.png",
			"font_license":     "Apache 2.0",
		},
		"positions": map[string]any{
			"hen":     map[string]string{"japanese": "へん", "description": "Left side of kanji"},
			"tsukuri": map[string]string{"japanese": "つくり", "description": "Right side of kanji"},
			"kanmuri": map[string]string{"japanese": "かんむり", "description": "Top/crown of kanji"},
			"ashi":    map[string]string{"japanese": "あし", "description": "Bottom/legs of kanji"},
			"kamae":   map[string]string{"japanese": "かまえ", "description": "Enclosure/frame of kanji"},
			"tare":    map[string]string{"japanese": "たれ", "description": "Top-left hanging element"},
			"nyou":    map[string]string{"japanese": "にょう", "description": "Bottom-left to right element"},
		},
		"radicals": radicals,
	}

	buf, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "radicals-convert: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, append(buf, '\n'), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "radicals-convert: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Converted %d radicals\n", len(radicals))
	fmt.Printf("  - Kangxi originals: %d\n", kangxi)
	fmt.Printf("  - Variants: %d\n", variants)
	fmt.Printf("  - Important: %d\n", important)
	fmt.Printf("  - PUA-encoded (need font): %d\n", pua)
	fmt.Printf("Output: %s\n", *out)
}
