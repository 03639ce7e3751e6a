package tools

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/roelfdiedericks/kanjiclaw/internal/kanjialive"
)

// SearchMetadata describes one search call: how many results came back,
// which top-level fields they carry, and what was asked when.
type SearchMetadata struct {
	ResultsReturned int
	FieldsIncluded  []string
	QueryParameters map[string]string
	Timestamp       time.Time
}

// DetailMetadata describes one detail lookup.
type DetailMetadata struct {
	Endpoint  string
	Timestamp time.Time
}

// newSearchMetadata derives metadata from the actual result set rather than
// assuming a response structure.
func newSearchMetadata(results []map[string]any, params map[string]string, info kanjialive.RequestInfo) SearchMetadata {
	fields := map[string]bool{}
	for _, r := range results {
		for k := range r {
			fields[k] = true
		}
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	return SearchMetadata{
		ResultsReturned: len(results),
		FieldsIncluded:  names,
		QueryParameters: params,
		Timestamp:       info.Timestamp,
	}
}

func (m SearchMetadata) markdownHeader() string {
	keys := make([]string, 0, len(m.QueryParameters))
	for k := range m.QueryParameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, m.QueryParameters[k]))
	}

	return fmt.Sprintf(
		"## Search Information\n\n"+
			"- **Results Returned:** %d\n"+
			"- **Fields Included:** %s\n"+
			"- **Query Parameters:** %s\n"+
			"- **Generated:** %s\n\n",
		m.ResultsReturned,
		strings.Join(m.FieldsIncluded, ", "),
		strings.Join(pairs, ", "),
		m.Timestamp.Format("2006-01-02T15:04:05"),
	)
}
