// Package validate enforces the syntactic contract of Kanji Alive search
// parameters before anything reaches the network layer.
//
// All free-text input is NFKC-normalized first so half-width katakana,
// decomposed kana and similar encoding variants collapse to one canonical
// form, and control characters are rejected outright. Each field's rule
// (script class, range, enum) lives in one place here instead of being
// repeated per tool.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Error is a validation failure. Message explains the accepted format.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Script patterns. Katakana includes the middle dot and iteration marks;
// hiragana additionally allows combining marks and okurigana dots. Romaji
// allows hyphens for compound readings, plus dots for okurigana in kun
// readings and radical names.
var (
	katakanaRe  = regexp.MustCompile(`^[\x{30A0}-\x{30FF}・]+$`)
	onRomajiRe  = regexp.MustCompile(`^[a-zA-Z-]+$`)
	hiraganaRe  = regexp.MustCompile(`^[\x{3040}-\x{309F}\x{3099}-\x{309C}.・]+$`)
	kunRomajiRe = regexp.MustCompile(`^[a-zA-Z.\-]+$`)
	chapterRe   = regexp.MustCompile(`^c[0-9]+$`)
)

// Radical positions accepted in romaji or hiragana; hiragana is normalized
// to romaji for the API.
var radicalPositions = map[string]string{
	"hen": "hen", "tsukuri": "tsukuri", "kanmuri": "kanmuri", "ashi": "ashi",
	"kamae": "kamae", "tare": "tare", "nyou": "nyou",
	"へん": "hen", "つくり": "tsukuri", "かんむり": "kanmuri", "あし": "ashi",
	"かまえ": "kamae", "たれ": "tare", "にょう": "nyou",
}

// NFKC returns the Unicode compatibility-composed form of s.
func NFKC(s string) string {
	return norm.NFKC.String(s)
}

// checkControlChars rejects C0 control codes (except TAB, LF, CR) and the
// U+007F-U+009F range. These break URLs and HTTP headers downstream and must
// never reach the network layer.
func checkControlChars(field, s string) error {
	for i, r := range s {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' || r >= 0x7F && r <= 0x9F {
			return &Error{
				Field: field,
				Message: fmt.Sprintf("Invalid %s: contains control character (U+%04X) at position %d. "+
					"Please use only printable characters.", field, r, i),
			}
		}
	}
	return nil
}

// Query validates the basic-search term: 1-100 characters after trimming,
// no control characters, NFKC normalized.
func Query(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", &Error{Field: "query", Message: "Search query must not be empty."}
	}
	if utf8.RuneCountInString(q) > 100 {
		return "", &Error{Field: "query", Message: "Search query must be at most 100 characters."}
	}
	if err := checkControlChars("query", q); err != nil {
		return "", err
	}
	return NFKC(q), nil
}

// Onyomi validates an on reading: pure katakana or pure romaji, never both.
// Romaji is lowercased for canonical comparison.
func Onyomi(v string) (string, error) {
	v = NFKC(strings.TrimSpace(v))
	if err := checkControlChars("on", v); err != nil {
		return "", err
	}
	switch {
	case katakanaRe.MatchString(v):
		return v, nil
	case onRomajiRe.MatchString(v):
		return strings.ToLower(v), nil
	default:
		return "", &Error{
			Field: "on",
			Message: fmt.Sprintf("Invalid Onyomi reading '%s'. "+
				"Must be either romaji (e.g., 'shin') or katakana (e.g., 'シン'). "+
				"Do not mix scripts or use hiragana for Onyomi.", v),
		}
	}
}

// HiraganaOrRomaji validates a kun reading or radical Japanese name: pure
// hiragana or pure romaji. Romaji is lowercased.
func HiraganaOrRomaji(field, v string) (string, error) {
	v = NFKC(strings.TrimSpace(v))
	if err := checkControlChars(field, v); err != nil {
		return "", err
	}
	switch {
	case hiraganaRe.MatchString(v):
		return v, nil
	case kunRomajiRe.MatchString(v):
		return strings.ToLower(v), nil
	default:
		return "", &Error{
			Field: field,
			Message: fmt.Sprintf("Invalid reading '%s'. "+
				"Must be either romaji (e.g., 'oya') or hiragana (e.g., 'おや'). "+
				"Do not mix scripts or use katakana.", v),
		}
	}
}

// KanjiCharacter validates that v is exactly one CJK ideograph: one code
// point in the CJK Unified Ideographs block (U+4E00-U+9FFF) or Extension A
// (U+3400-U+4DBF).
func KanjiCharacter(field, v string) (string, error) {
	v = NFKC(strings.TrimSpace(v))
	r, size := utf8.DecodeRuneInString(v)
	single := size > 0 && size == len(v)
	if !single || !isKanji(r) {
		return "", &Error{
			Field: field,
			Message: fmt.Sprintf("Invalid kanji character '%s'. "+
				"Must be a CJK ideograph (e.g., 親, 見, 日). "+
				"Hiragana, katakana, romaji, and other characters are not accepted.", v),
		}
	}
	return v, nil
}

func isKanji(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF || r >= 0x3400 && r <= 0x4DBF
}

// Meaning validates an English meaning field: trimmed, printable.
func Meaning(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if err := checkControlChars(field, v); err != nil {
		return "", err
	}
	return v, nil
}

// IntRange validates a bounded numeric field against its closed range.
func IntRange(field string, v, min, max int) (int, error) {
	if v < min || v > max {
		return 0, &Error{
			Field:   field,
			Message: fmt.Sprintf("Invalid %s value %d. Must be between %d and %d.", field, v, min, max),
		}
	}
	return v, nil
}

// RadicalPosition validates the rpos enum and normalizes hiragana names to
// their romaji form.
func RadicalPosition(v string) (string, error) {
	key := strings.ToLower(NFKC(strings.TrimSpace(v)))
	if pos, ok := radicalPositions[key]; ok {
		return pos, nil
	}
	return "", &Error{
		Field: "rpos",
		Message: fmt.Sprintf("Invalid radical position '%s'. "+
			"Valid romaji: hen, tsukuri, kanmuri, ashi, kamae, tare, nyou. "+
			"Valid hiragana: へん, つくり, かんむり, あし, かまえ, たれ, にょう", v),
	}
}

// StudyList validates the study list filter: "ap" or "mac", optionally with
// a chapter suffix like "ap:c3".
func StudyList(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	base, chapter, hasChapter := strings.Cut(v, ":")
	if base != "ap" && base != "mac" {
		return "", &Error{
			Field: "list",
			Message: fmt.Sprintf("Invalid study list '%s'. "+
				"Valid lists: 'ap' (Advanced Placement), 'mac' (Macquarie). "+
				"Chapters use the format 'ap:c3' or 'mac:c12'.", v),
		}
	}
	if hasChapter && !chapterRe.MatchString(chapter) {
		return "", &Error{
			Field: "list",
			Message: fmt.Sprintf("Invalid chapter format '%s'. "+
				"Use format 'c1', 'c2', 'c12', etc.", chapter),
		}
	}
	return v, nil
}

// AdvancedSearch holds the optional filters of the advanced search tool.
// Zero values mean "not supplied".
type AdvancedSearch struct {
	On    string
	Kun   string
	Kem   string
	Kanji string
	Rjn   string
	Rem   string
	Rpos  string
	List  string
	Ks    int
	Rs    int
	Grade int
}

// QueryParams validates every supplied filter and assembles the upstream
// query parameters. At least one filter must be present; the check runs
// before any request is constructed.
func (p *AdvancedSearch) QueryParams() (url.Values, error) {
	stringRules := []struct {
		name     string
		value    string
		validate func(string) (string, error)
	}{
		{"on", p.On, Onyomi},
		{"kun", p.Kun, func(v string) (string, error) { return HiraganaOrRomaji("kun", v) }},
		{"kem", p.Kem, func(v string) (string, error) { return Meaning("kem", v) }},
		{"kanji", p.Kanji, func(v string) (string, error) { return KanjiCharacter("kanji", v) }},
		{"rjn", p.Rjn, func(v string) (string, error) { return HiraganaOrRomaji("rjn", v) }},
		{"rem", p.Rem, func(v string) (string, error) { return Meaning("rem", v) }},
		{"rpos", p.Rpos, RadicalPosition},
		{"list", p.List, StudyList},
	}
	intRules := []struct {
		name     string
		value    int
		min, max int
	}{
		{"ks", p.Ks, 1, 30},
		{"rs", p.Rs, 1, 17},
		{"grade", p.Grade, 1, 6},
	}

	params := url.Values{}
	for _, rule := range stringRules {
		if rule.value == "" {
			continue
		}
		v, err := rule.validate(rule.value)
		if err != nil {
			return nil, err
		}
		params.Set(rule.name, v)
	}
	for _, rule := range intRules {
		if rule.value == 0 {
			continue
		}
		v, err := IntRange(rule.name, rule.value, rule.min, rule.max)
		if err != nil {
			return nil, err
		}
		params.Set(rule.name, strconv.Itoa(v))
	}

	if len(params) == 0 {
		return nil, &Error{
			Field: "filters",
			Message: "At least one search parameter must be provided. " +
				"Available parameters: on, kun, kem, ks, kanji, rjn, rem, rs, rpos, grade, list. " +
				"For simple searches, use kanjialive_search_basic instead.",
		}
	}
	return params, nil
}
