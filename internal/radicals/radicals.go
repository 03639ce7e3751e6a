// Package radicals serves the bundled Japanese radicals reference data as a
// read-only MCP resource.
//
// The dataset is generated offline by cmd/radicals-convert and embedded at
// build time. It is parsed and sanity-checked once at startup; a corrupt
// file is fatal rather than served degraded.
package radicals

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	. "github.com/roelfdiedericks/kanjiclaw/internal/logging"
)

// URI is the resource identifier exposed to MCP clients.
const URI = "kanjialive://info/radicals"

//go:embed data/japanese-radicals.json
var rawData []byte

// Data is the loaded radicals dataset. Immutable after Load; the raw JSON is
// served verbatim so clients see exactly what the generator produced.
type Data struct {
	raw []byte

	TotalEntries int        `json:"total_entries"`
	Statistics   Statistics `json:"statistics"`
	Radicals     []Radical  `json:"radicals"`
}

type Statistics struct {
	KangxiRadicals int `json:"kangxi_radicals"`
	Variants       int `json:"variants"`
	Important      int `json:"important"`
	PuaEncoded     int `json:"pua_encoded"`
}

// Radical is one dataset entry. Only the fields needed for validation and
// lookups are typed; the served JSON carries the full records.
type Radical struct {
	SortOrder int      `json:"sort_order"`
	Strokes   int      `json:"strokes"`
	Character string   `json:"character"`
	Meaning   string   `json:"meaning"`
	Reading   Reading  `json:"reading"`
	Important bool     `json:"important"`
	Origin    string   `json:"origin"`
	VariantOf string   `json:"variant_of,omitempty"`
	PUA       bool     `json:"pua_encoded,omitempty"`
	Fallback  string   `json:"fallback_display,omitempty"`
	Position  *NamePos `json:"position"`
}

type Reading struct {
	Japanese string `json:"japanese"`
	Romaji   string `json:"romaji"`
}

type NamePos struct {
	Japanese string `json:"japanese"`
	Romaji   string `json:"romaji"`
}

// Load parses the embedded dataset and verifies its internal consistency.
// Called once at startup; any error here should abort the process.
func Load() (*Data, error) {
	d := &Data{raw: rawData}
	if err := json.Unmarshal(rawData, d); err != nil {
		return nil, fmt.Errorf("corrupt radicals dataset: %w", err)
	}
	if len(d.Radicals) == 0 {
		return nil, fmt.Errorf("radicals dataset has no entries")
	}
	if d.TotalEntries != len(d.Radicals) {
		return nil, fmt.Errorf("radicals dataset inconsistent: total_entries=%d but %d records",
			d.TotalEntries, len(d.Radicals))
	}

	var kangxi, variants, important, pua int
	for _, r := range d.Radicals {
		switch r.Origin {
		case "kangxi":
			kangxi++
		case "variant":
			variants++
		default:
			return nil, fmt.Errorf("radical %q has unknown origin %q", r.Character, r.Origin)
		}
		if r.Important {
			important++
		}
		if r.PUA {
			pua++
		}
	}
	got := Statistics{KangxiRadicals: kangxi, Variants: variants, Important: important, PuaEncoded: pua}
	if got != d.Statistics {
		return nil, fmt.Errorf("radicals dataset statistics do not match records: have %+v, computed %+v",
			d.Statistics, got)
	}

	L_info("radicals: dataset loaded", "entries", d.TotalEntries,
		"kangxi", kangxi, "variants", variants)
	return d, nil
}

// JSON returns the dataset exactly as bundled.
func (d *Data) JSON() []byte {
	return d.raw
}

// Register exposes the dataset as a static MCP resource.
func Register(s *server.MCPServer, d *Data) {
	res := mcp.NewResource(URI, "Japanese Radicals Reference",
		mcp.WithResourceDescription(
			"Reference data on the traditional Kangxi radicals and their position variants: "+
				"character, meaning, stroke count, Japanese and romaji readings, position "+
				"(hen, tsukuri, kanmuri, ...), origin, and for variants the base radical. "+
				"PUA-encoded entries carry a fallback_display field for use without the "+
				"Kanji Alive radicals font."),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(res, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      URI,
				MIMEType: "application/json",
				Text:     string(d.JSON()),
			},
		}, nil
	})
}
