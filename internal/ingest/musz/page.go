package musz

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/soosb/aquafeed/internal/swimtime"
	"golang.org/x/net/html"
)

// meetInfo is the competition metadata scraped from the eventdata page.
type meetInfo struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	HasDates  bool
	Course    string
}

var dateRangePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s*-\s*\d{4}-\d{2}-\d{2}`)

// parseMeetInfo pulls name, date range and course out of the eventdata
// page. The page carries no structured markup for any of these, so each
// is a heuristic over heading text.
func parseMeetInfo(doc *goquery.Document) meetInfo {
	info := meetInfo{Name: "Unknown", Course: "LCM"}

	doc.Find("h4, h5, h6").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		t := strings.TrimSpace(h.Text())
		if t != "" && strings.Contains(t, " - ") && len(t) < 200 {
			info.Name = strings.TrimSpace(strings.SplitN(t, " - ", 2)[0])
			return false
		}
		return true
	})

	doc.Find("h6").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		t := strings.TrimSpace(h.Text())
		if !dateRangePattern.MatchString(t) {
			return true
		}
		parts := strings.SplitN(t, " - ", 2)
		if len(parts) == 2 {
			start, okStart := swimtime.ParseDate(parts[0])
			end, okEnd := swimtime.ParseDate(parts[1])
			if okStart && okEnd {
				info.StartDate = start
				info.EndDate = end
				info.HasDates = true
			}
		}
		return false
	})

	body := doc.Text()
	if strings.Contains(body, "50m") || strings.Contains(body, "50 m") {
		info.Course = "SCM"
	}

	return info
}

// progKey addresses an event within the program, in source numbering.
type progKey struct {
	Session int
	Event   int
}

// program holds what a one-time read of the program page yields: the
// free-text title per (session, event) and the date per session.
type program struct {
	Titles       map[progKey]string
	SessionDates map[int]time.Time
}

// parseProgram harvests event titles and session dates from the program
// page. Session dates sit in free text above the event links, so each
// link walks its preceding text nodes until a dated session header turns
// up.
func parseProgram(doc *goquery.Document) *program {
	prog := &program{
		Titles:       make(map[progKey]string),
		SessionDates: make(map[int]time.Time),
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.ReplaceAll(href, "&amp;", "&")
		if !strings.Contains(href, "event/summary") {
			return
		}
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		q := u.Query()
		sid, err := strconv.Atoi(q.Get("SessionId"))
		if err != nil {
			return
		}
		eid, err := strconv.Atoi(q.Get("EventId"))
		if err != nil {
			return
		}

		prog.Titles[progKey{Session: sid, Event: eid}] = strings.TrimSpace(a.Text())

		if _, ok := prog.SessionDates[sid]; !ok {
			if d, ok := sessionDateBefore(a); ok {
				prog.SessionDates[sid] = d
			}
		}
	})

	return prog
}

// sessionDateBefore scans the text preceding a link, in reverse document
// order, for a session header carrying a dotted date.
func sessionDateBefore(a *goquery.Selection) (time.Time, bool) {
	if len(a.Nodes) == 0 {
		return time.Time{}, false
	}
	for n := prevNode(a.Nodes[0]); n != nil; n = prevNode(n) {
		if n.Type != html.TextNode {
			continue
		}
		text := strings.TrimSpace(n.Data)
		if text == "" || !strings.Contains(strings.ToUpper(text), "SESSION") {
			continue
		}
		if d, ok := swimtime.ParseSessionDate(text); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// prevNode steps backwards through the parse tree in document order.
func prevNode(n *html.Node) *html.Node {
	if n.PrevSibling != nil {
		n = n.PrevSibling
		for n.LastChild != nil {
			n = n.LastChild
		}
		return n
	}
	return n.Parent
}

// eventOption is one entry of the result page's event selector.
type eventOption struct {
	ID    int
	Title string
}

// parseEventOptions reads the first selector that is not the heat
// selector and has numeric option values.
func parseEventOptions(doc *goquery.Document) []eventOption {
	var options []eventOption
	doc.Find("select").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.HasClass("heatSelect") {
			return true
		}
		sel.Find("option[value]").Each(func(_ int, opt *goquery.Selection) {
			val, _ := opt.Attr("value")
			id, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return
			}
			options = append(options, eventOption{ID: id, Title: strings.TrimSpace(opt.Text())})
		})
		return len(options) == 0
	})
	return options
}

// parseHeatOptions reads the heat ids out of the first heat selector.
func parseHeatOptions(doc *goquery.Document) []int {
	var heats []int
	doc.Find("select.heatSelect").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		sel.Find("option[value]").Each(func(_ int, opt *goquery.Selection) {
			val, _ := opt.Attr("value")
			if id, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				heats = append(heats, id)
			}
		})
		return false
	})
	return heats
}

// columnMap maps semantic roles to column indexes for one table. No
// fixed column order is assumed; the map is rebuilt per table from the
// bilingual header keywords, falling back to positional defaults.
type columnMap struct {
	Rank int
	Name int
	Time int
	Lane int
	Fina int
}

// findResultTable locates the first table whose headers carry rank-like,
// name-like and time-like labels, and builds its column map.
func findResultTable(doc *goquery.Document) (*goquery.Selection, columnMap, bool) {
	var (
		table *goquery.Selection
		cols  columnMap
		found bool
	)

	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		var headers []string
		t.Find("th").Each(func(_ int, th *goquery.Selection) {
			h := strings.ToUpper(strings.TrimSpace(th.Text()))
			if len(h) > 20 {
				h = h[:20]
			}
			headers = append(headers, h)
		})

		if !headersMatch(headers, "RK", "HELY") ||
			!headersMatch(headers, "NAME", "NEV") ||
			!headersMatch(headers, "TIME", "IDŐ") {
			return true
		}

		cols = columnMap{Rank: 0, Name: 1, Time: 3, Lane: -1, Fina: -1}
		for i, h := range headers {
			switch {
			case strings.Contains(h, "RK") || strings.Contains(h, "HELY"):
				cols.Rank = i
			case strings.Contains(h, "LN"):
				cols.Lane = i
			case strings.Contains(h, "NAME") || strings.Contains(h, "NEV"):
				cols.Name = i
			case strings.Contains(h, "TIME") || strings.Contains(h, "IDŐ"):
				cols.Time = i
			case strings.Contains(h, "FINA"):
				cols.Fina = i
			}
		}

		table = t
		found = true
		return false
	})

	return table, cols, found
}

func headersMatch(headers []string, keywords ...string) bool {
	for _, h := range headers {
		for _, kw := range keywords {
			if strings.Contains(h, kw) {
				return true
			}
		}
	}
	return false
}

// athleteLink is the parsed form of the name-cell link: the numeric
// athlete id from the query string plus the "Name (YYYY) Club" text.
type athleteLink struct {
	UMK       int64
	FirstName string
	LastName  string
	Club      string
	BirthYear int
}

var athleteTextPattern = regexp.MustCompile(`^(.+?)\s*\((\d{4})\)\s*(.*)$`)

// parseAthleteLink extracts athlete identity from the name-cell link.
// Rows whose link carries no numeric id cannot be resolved and are
// dropped by the caller.
func parseAthleteLink(a *goquery.Selection) (athleteLink, bool) {
	href, _ := a.Attr("href")
	href = strings.ReplaceAll(href, "&amp;", "&")
	u, err := url.Parse(href)
	if err != nil {
		return athleteLink{}, false
	}
	umk, err := strconv.ParseInt(u.Query().Get("UMK"), 10, 64)
	if err != nil || umk <= 0 {
		return athleteLink{}, false
	}

	link := athleteLink{UMK: umk}
	text := strings.TrimSpace(a.Text())

	fullName := text
	if m := athleteTextPattern.FindStringSubmatch(text); m != nil {
		fullName = strings.TrimSpace(m[1])
		link.BirthYear, _ = strconv.Atoi(m[2])
		link.Club = strings.TrimSpace(m[3])
	}

	// Names render surname-first.
	parts := strings.Fields(fullName)
	if len(parts) > 0 {
		link.LastName = parts[0]
		link.FirstName = strings.Join(parts[1:], " ")
	}

	return link, true
}

var birthYearPattern = regexp.MustCompile(`\((\d{4})\)`)

// parseBirthYear extracts a plausible birth year from a swimmer page
// body.
func parseBirthYear(body string) (int, bool) {
	m := birthYearPattern.FindStringSubmatch(body)
	if m == nil {
		return 0, false
	}
	y, _ := strconv.Atoi(m[1])
	if y < 1900 || y > 2030 {
		return 0, false
	}
	return y, true
}
