// Package swimtime converts swim-time text to hundredths of a second and
// back, and holds the shared free-text parsing helpers both ingestion
// adapters rely on (event titles, session dates, status tokens).
package swimtime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// nonFinishTokens are recognized placeholders that carry no time value.
// Parsing them yields "no time", not an error.
var nonFinishTokens = map[string]bool{
	"NT": true, "DNS": true, "DSQ": true, "DQ": true,
	"SCR": true, "VL": true, "-": true, "": true,
}

var clockPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})\.(\d{2})`)

// Parse converts swim-time text to hundredths of a second.
// Accepted forms: SS[.hh], MM:SS[.hh], HH:MM:SS[.hh], with '.' or ','
// as the fractional separator. The fractional part is right-padded or
// truncated to exactly two digits ("9" -> 90 hundredths, "875" -> 87).
// Returns ok=false for non-finish tokens and for anything that does not
// parse; malformed cells are common in both sources and must never abort
// an import.
func Parse(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if nonFinishTokens[strings.ToUpper(s)] {
		return 0, false
	}

	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ":")

	var hours, minutes int
	var secPart string
	var err error

	switch len(parts) {
	case 1:
		secPart = parts[0]
	case 2:
		minutes, err = strconv.Atoi(parts[0])
		secPart = parts[1]
	case 3:
		hours, err = strconv.Atoi(parts[0])
		if err == nil {
			minutes, err = strconv.Atoi(parts[1])
		}
		secPart = parts[2]
	default:
		return 0, false
	}
	if err != nil || hours < 0 || minutes < 0 {
		return 0, false
	}

	sec, hund, ok := parseSeconds(secPart)
	if !ok {
		return 0, false
	}

	return hours*360000 + minutes*6000 + sec*100 + hund, true
}

// parseSeconds splits "40.09" / "40" into whole seconds and hundredths.
func parseSeconds(s string) (sec, hund int, ok bool) {
	whole, frac, hasFrac := strings.Cut(s, ".")

	sec, err := strconv.Atoi(whole)
	if err != nil || sec < 0 {
		return 0, 0, false
	}

	if hasFrac {
		// Pad on the right, then truncate: "9" -> "90", "875" -> "87".
		frac = (frac + "00")[:2]
		hund, err = strconv.Atoi(frac)
		if err != nil || hund < 0 {
			return 0, 0, false
		}
	}

	return sec, hund, true
}

// Format renders hundredths as MM:SS.hh, or HH:MM:SS.hh past the hour.
func Format(hundredths int) string {
	if hundredths < 0 {
		hundredths = 0
	}
	hours := hundredths / 360000
	rem := hundredths % 360000
	minutes := rem / 6000
	rem = rem % 6000
	sec := rem / 100
	hund := rem % 100

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, sec, hund)
	}
	return fmt.Sprintf("%d:%02d.%02d", minutes, sec, hund)
}

// FirstClock extracts the first MM:SS.hh-shaped substring of a cell,
// ignoring trailing decoration. Returns "" when no clock pattern appears.
func FirstClock(s string) string {
	return clockPattern.FindString(s)
}

var reactionPattern = regexp.MustCompile(`(?i)R:(\d+)\.(\d{2})`)

// ParseReaction extracts a reaction time from an R:SS.hh-shaped substring.
func ParseReaction(s string) (int, bool) {
	m := reactionPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	sec, err1 := strconv.Atoi(m[1])
	hund, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return sec*100 + hund, true
}

// statusVocabulary is ordered; the first token found in a cell wins.
var statusVocabulary = []string{"DNS", "DSQ", "DQ", "DNF", "SCR", "NT"}

// StatusFromText returns the first recognized status keyword found
// anywhere in the cell text, or "".
func StatusFromText(s string) string {
	upper := strings.ToUpper(s)
	for _, st := range statusVocabulary {
		if strings.Contains(upper, st) {
			return st
		}
	}
	return ""
}

// StatusFromToken classifies a whole time token (structured path): only
// an exact match counts, a time like "1:02.50" carries no status.
func StatusFromToken(s string) string {
	switch tok := strings.ToUpper(strings.TrimSpace(s)); tok {
	case "DQ", "DSQ", "DNS", "SCR":
		return tok
	}
	return ""
}
