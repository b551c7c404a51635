package swimtime

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Stroke names as they appear in bilingual result pages. Relay titles
// map onto the leg stroke.
var strokeMap = map[string]string{
	"pillangó":     "FLY",
	"hát":          "BACK",
	"mell":         "BREAST",
	"gyors":        "FREE",
	"vegyes":       "IM",
	"gyorsváltó":   "FREE",
	"vegyesváltó":  "IM",
	"butterfly":    "FLY",
	"backstroke":   "BACK",
	"breaststroke": "BREAST",
	"freestyle":    "FREE",
	"medley":       "IM",
}

// genderKeys are checked in order; "women" must precede "men".
var genderKeys = []struct {
	key  string
	code string
}{
	{"férfi", "M"},
	{"női", "F"},
	{"mix", "X"},
	{"women", "F"},
	{"men", "M"},
}

var distancePattern = regexp.MustCompile(`(\d+)\s*m`)

// ParseEventTitle extracts stroke, distance and gender from a free-text
// event title such as "1.- 200 m férfi pillangó". Unknown parts fall
// back to FREE / 0 / X.
func ParseEventTitle(title string) (stroke string, distance int, gender string) {
	title = strings.ToLower(title)

	stroke = "FREE"
	distance = 0
	gender = "X"

	if m := distancePattern.FindStringSubmatch(title); m != nil {
		distance, _ = strconv.Atoi(m[1])
	}
	// Relay variants contain the base stroke name, so longer keys first.
	for _, key := range []string{"gyorsváltó", "vegyesváltó"} {
		if strings.Contains(title, key) {
			return strokeMap[key], distance, findGender(title)
		}
	}
	for key, s := range strokeMap {
		if strings.Contains(title, key) {
			stroke = s
			break
		}
	}
	return stroke, distance, findGender(title)
}

func findGender(title string) string {
	for _, g := range genderKeys {
		if strings.Contains(title, g.key) {
			return g.code
		}
	}
	return "X"
}

var sessionDatePattern = regexp.MustCompile(`(\d{4})\.(\d{2})\.(\d{2})`)

// ParseSessionDate parses dotted dates like "2023.01.28." as used on
// program pages.
func ParseSessionDate(s string) (time.Time, bool) {
	m := sessionDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// dateLayouts accepted by ParseDate, most common first.
var dateLayouts = []string{"2006-01-02", "02.01.2006", "02/01/2006"}

// ParseDate parses attribute dates from the structured format. Only the
// first ten characters are considered.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var splitPattern = regexp.MustCompile(`(\d+)\s*m\**\s*(\d{1,2}):(\d{2})\.(\d{2})`)

// SplitMark is one cumulative intermediate time extracted from text.
type SplitMark struct {
	Distance   int
	Hundredths int
}

// ParseSplits pattern-matches repeated "<distance>m<time>" tokens, the
// textual fallback when no structured split container is present.
func ParseSplits(text string) []SplitMark {
	var splits []SplitMark
	for _, m := range splitPattern.FindAllStringSubmatch(text, -1) {
		dist, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		sec, _ := strconv.Atoi(m[3])
		hund, _ := strconv.Atoi(m[4])
		splits = append(splits, SplitMark{
			Distance:   dist,
			Hundredths: mins*6000 + sec*100 + hund,
		})
	}
	return splits
}
