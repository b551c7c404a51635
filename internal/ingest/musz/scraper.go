package musz

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/soosb/aquafeed/internal/resolve"
	"github.com/soosb/aquafeed/internal/store"
	"github.com/soosb/aquafeed/internal/swimtime"
	"go.uber.org/zap"
)

// BirthYears memoizes athlete birth-year lookups so repeated swimmer
// page fetches are avoided across competitions.
type BirthYears interface {
	GetBirthYear(ctx context.Context, athleteID int64) (int, bool)
	SetBirthYear(ctx context.Context, athleteID int64, year int)
}

// Scraper walks the live site's result pages for one competition and
// writes what it finds into the canonical schema.
type Scraper struct {
	client *Client
	gw     store.Gateway
	years  BirthYears
	log    *zap.Logger
}

// NewScraper creates a scraper. years may be nil when no cache is
// configured.
func NewScraper(client *Client, gw store.Gateway, years BirthYears, log *zap.Logger) *Scraper {
	return &Scraper{
		client: client,
		gw:     gw,
		years:  years,
		log:    log,
	}
}

// traversal is the per-run discovery state: the session/event cursors
// plus the seen-sets that make repeated pages idempotent within a run.
// One traversal serves one competition; independent runs never share it.
type traversal struct {
	sessionID   int
	nextEventID int

	seenEvents  map[progKey]bool
	seenRows    map[rowKey]bool
	sessionRows map[int]bool
}

// rowKey dedups result rows; the source repeats the same swimmer across
// category tabs of one heat page.
type rowKey struct {
	EventRowID int64
	HeatNumber int
	UMK        int64
}

func newTraversal() *traversal {
	return &traversal{
		sessionID:   1,
		nextEventID: 1,
		seenEvents:  make(map[progKey]bool),
		seenRows:    make(map[rowKey]bool),
		sessionRows: make(map[int]bool),
	}
}

// Run scrapes one competition. The returned error is non-nil only for
// irrecoverable failures: the eventdata or program page being
// unreachable, or a storage write failing. Individual page failures
// inside the traversal skip their subtree.
func (s *Scraper) Run(ctx context.Context, onlineEventID int64) error {
	meetID := onlineEventID
	m := s.client.metrics

	edPage, err := s.client.FetchEventData(ctx, onlineEventID)
	if err != nil {
		m.Scrapes.WithLabelValues("failed").Inc()
		return err
	}
	info := parseMeetInfo(edPage)

	meet := &store.Meet{
		ID:         meetID,
		Name:       info.Name,
		Course:     info.Course,
		DataSource: store.SourceScraped,
	}
	if info.HasDates {
		meet.StartDate = sql.NullTime{Time: info.StartDate, Valid: true}
		meet.EndDate = sql.NullTime{Time: info.EndDate, Valid: true}
	}
	if err := s.gw.UpsertMeet(ctx, meet); err != nil {
		m.Scrapes.WithLabelValues("failed").Inc()
		return err
	}

	progPage, err := s.client.FetchProgram(ctx, onlineEventID)
	if err != nil {
		m.Scrapes.WithLabelValues("failed").Inc()
		return err
	}
	prog := parseProgram(progPage)
	s.log.Info("program harvested",
		zap.Int64("competition", onlineEventID),
		zap.Int("events", len(prog.Titles)))

	resolver := resolve.New(s.gw, s.log)
	tr := newTraversal()

	if err := s.traverse(ctx, resolver, tr, prog, onlineEventID, meetID); err != nil {
		m.Scrapes.WithLabelValues("failed").Inc()
		return err
	}

	m.Scrapes.WithLabelValues("completed").Inc()
	return nil
}

func (s *Scraper) traverse(ctx context.Context, resolver *resolve.Resolver, tr *traversal, prog *program, onlineEventID, meetID int64) error {
	for {
		page, err := s.client.FetchResultPage(ctx, onlineEventID, tr.sessionID, tr.nextEventID)
		if err != nil {
			s.log.Warn("session discovery fetch failed, stopping",
				zap.Int("session", tr.sessionID), zap.Error(err))
			return nil
		}

		if len(parseHeatOptions(page)) == 0 {
			// Probe the next session before giving up; event numbering
			// is continuous across sessions, so the probe starts at the
			// lowest event id the program lists for it.
			probeEvent := prog.firstEventOf(tr.sessionID+1, tr.nextEventID+1)
			probePage, err := s.client.FetchResultPage(ctx, onlineEventID, tr.sessionID+1, probeEvent)
			if err != nil || len(parseHeatOptions(probePage)) == 0 {
				s.log.Info("traversal done",
					zap.Int("last_session", tr.sessionID))
				return nil
			}
			tr.sessionID++
			tr.nextEventID = probeEvent
			page = probePage
		}

		options := parseEventOptions(page)
		if len(options) == 0 {
			options = prog.eventsOf(tr.sessionID)
		}
		if len(options) == 0 {
			s.log.Info("no events for session, stopping", zap.Int("session", tr.sessionID))
			return nil
		}
		sort.Slice(options, func(i, j int) bool { return options[i].ID < options[j].ID })

		if !tr.sessionRows[tr.sessionID] {
			sess := &store.Session{
				MeetID:        meetID,
				SessionNumber: sql.NullInt32{Int32: int32(tr.sessionID), Valid: true},
			}
			if d, ok := prog.SessionDates[tr.sessionID]; ok {
				sess.SessionDate = sql.NullTime{Time: d, Valid: true}
			}
			if err := s.gw.CreateSession(ctx, sess); err != nil {
				return err
			}
			tr.sessionRows[tr.sessionID] = true
		}

		maxEvent := tr.nextEventID
		for _, opt := range options {
			if opt.ID > maxEvent {
				maxEvent = opt.ID
			}
			key := progKey{Session: tr.sessionID, Event: opt.ID}
			if tr.seenEvents[key] {
				continue
			}
			tr.seenEvents[key] = true

			if err := s.scrapeEvent(ctx, resolver, tr, prog, onlineEventID, meetID, key, opt.Title); err != nil {
				return err
			}
		}

		tr.nextEventID = maxEvent + 1
		tr.sessionID++
	}
}

func (s *Scraper) scrapeEvent(ctx context.Context, resolver *resolve.Resolver, tr *traversal, prog *program, onlineEventID, meetID int64, key progKey, optTitle string) error {
	title := prog.Titles[key]
	if title == "" {
		title = optTitle
	}
	stroke, distance, gender := swimtime.ParseEventTitle(title)

	event := &store.Event{
		MeetID:   meetID,
		Stroke:   stroke,
		Distance: distance,
		Round:    sql.NullString{String: "TIM", Valid: true},
		Gender:   gender,
	}
	if err := s.gw.CreateEvent(ctx, event); err != nil {
		return err
	}

	page, err := s.client.FetchResultPage(ctx, onlineEventID, key.Session, key.Event)
	if err != nil {
		s.log.Warn("event fetch failed, skipping",
			zap.Int("session", key.Session), zap.Int("event", key.Event), zap.Error(err))
		return nil
	}

	for i, heatID := range parseHeatOptions(page) {
		heatNumber := i + 1
		heatPage, err := s.client.FetchHeatPage(ctx, onlineEventID, key.Session, key.Event, heatID)
		if err != nil {
			s.log.Warn("heat fetch failed, skipping",
				zap.Int("event", key.Event), zap.Int("heat", heatID), zap.Error(err))
			continue
		}
		if err := s.scrapeHeat(ctx, resolver, tr, heatPage, onlineEventID, event.ID, heatNumber); err != nil {
			return err
		}
	}

	return nil
}

func (s *Scraper) scrapeHeat(ctx context.Context, resolver *resolve.Resolver, tr *traversal, page *goquery.Document, onlineEventID, eventRowID int64, heatNumber int) error {
	m := s.client.metrics

	table, cols, ok := findResultTable(page)
	if !ok {
		return nil
	}

	required := cols.Rank
	for _, idx := range []int{cols.Name, cols.Time, cols.Fina} {
		if idx > required {
			required = idx
		}
	}

	var rowErr error
	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i == 0 {
			return true
		}
		tds := row.Find("td")
		if tds.Length() <= required {
			return true
		}

		rankText := strings.TrimSpace(strings.ReplaceAll(cellText(tds, cols.Rank), "*", ""))
		timeRaw := strings.TrimSpace(strings.ReplaceAll(cellText(tds, cols.Time), "*", ""))

		timeToken := swimtime.FirstClock(timeRaw)
		if timeToken == "" {
			if fields := strings.Fields(timeRaw); len(fields) > 0 {
				timeToken = fields[0]
			}
		}
		timeHund, hasTime := swimtime.Parse(timeToken)
		status := swimtime.StatusFromText(timeRaw)

		a := tds.Eq(cols.Name).Find("a[href]").First()
		if a.Length() == 0 {
			m.RowsSkipped.Inc()
			return true
		}
		link, ok := parseAthleteLink(a)
		if !ok {
			m.RowsSkipped.Inc()
			return true
		}

		key := rowKey{EventRowID: eventRowID, HeatNumber: heatNumber, UMK: link.UMK}
		if tr.seenRows[key] {
			return true
		}
		if !hasTime && status == "" {
			m.RowsSkipped.Inc()
			return true
		}
		tr.seenRows[key] = true

		clubID, err := resolver.ResolveClub(ctx, resolve.ClubCode("", link.Club), link.Club, "HUN")
		if err != nil {
			rowErr = err
			return false
		}

		if !resolver.KnownAthlete(link.UMK) {
			if err := s.resolveScrapedAthlete(ctx, resolver, onlineEventID, link); err != nil {
				rowErr = err
				return false
			}
		}

		result := &store.Result{
			AthleteID:  link.UMK,
			EventID:    sql.NullInt64{Int64: eventRowID, Valid: true},
			HeatNumber: sql.NullInt32{Int32: int32(heatNumber), Valid: true},
			ClubID:     sql.NullInt64{Int64: clubID, Valid: true},
		}
		if hasTime {
			result.TimeHundredths = sql.NullInt32{Int32: int32(timeHund), Valid: true}
		}
		if status != "" {
			result.Status = sql.NullString{String: status, Valid: true}
		}
		if isDigits(rankText) {
			if n, err := strconv.Atoi(rankText); err == nil {
				result.Rank = sql.NullInt32{Int32: int32(n), Valid: true}
			}
		}
		if rt, ok := swimtime.ParseReaction(timeRaw); ok {
			result.ReactionTime = sql.NullInt32{Int32: int32(rt), Valid: true}
		}
		if cols.Fina >= 0 && cols.Fina < tds.Length() {
			if pts, err := strconv.ParseFloat(strings.TrimSpace(cellText(tds, cols.Fina)), 64); err == nil {
				result.FinaPoints = sql.NullInt32{Int32: int32(pts), Valid: true}
			}
		}
		if cols.Lane >= 0 && cols.Lane < tds.Length() {
			laneText := strings.TrimSpace(cellText(tds, cols.Lane))
			if isDigits(laneText) {
				if n, err := strconv.Atoi(laneText); err == nil {
					result.Lane = sql.NullInt32{Int32: int32(n), Valid: true}
				}
			}
		}

		if err := s.gw.InsertResult(ctx, result); err != nil {
			rowErr = err
			return false
		}
		m.ResultsIngested.WithLabelValues(store.SourceScraped).Inc()

		marks := splitMarks(row)
		for _, mark := range marks {
			split := &store.Split{
				ResultID:       result.ID,
				Distance:       mark.Distance,
				TimeHundredths: mark.Hundredths,
			}
			if err := s.gw.InsertSplit(ctx, split); err != nil {
				rowErr = err
				return false
			}
			m.SplitsIngested.WithLabelValues(store.SourceScraped).Inc()
		}

		return true
	})

	return rowErr
}

// resolveScrapedAthlete upserts an athlete first seen in this run,
// recovering the birth year from the cache or a swimmer page fetch when
// the name cell did not embed it. A missing birth year is never fatal.
func (s *Scraper) resolveScrapedAthlete(ctx context.Context, resolver *resolve.Resolver, onlineEventID int64, link athleteLink) error {
	year := link.BirthYear
	if year == 0 && s.years != nil {
		if y, ok := s.years.GetBirthYear(ctx, link.UMK); ok {
			year = y
		}
	}
	if year == 0 {
		// A swimmer persisted by an earlier run already carries whatever
		// birth year was recoverable; only new swimmers warrant the
		// secondary page fetch.
		exists, err := s.gw.AthleteExists(ctx, link.UMK)
		if err != nil {
			return err
		}
		if !exists {
			body, err := s.client.FetchSwimmerPage(ctx, onlineEventID, link.UMK)
			if err != nil {
				s.log.Warn("swimmer page fetch failed",
					zap.Int64("athlete", link.UMK), zap.Error(err))
			} else if y, ok := parseBirthYear(body); ok {
				year = y
				if s.years != nil {
					s.years.SetBirthYear(ctx, link.UMK, year)
				}
			}
		}
	}

	// Result pages carry no gender; leave it null so a later structured
	// import can fill it.
	athlete := &store.Athlete{
		ID:        link.UMK,
		FirstName: nullString(link.FirstName),
		LastName:  nullString(link.LastName),
	}
	if year > 0 {
		athlete.BirthDate = sql.NullTime{
			Time:  time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			Valid: true,
		}
	}
	return resolver.ResolveAthlete(ctx, athlete)
}

// splitMarks reads intermediate times: the structured split container in
// the following sibling row when present, otherwise repeated
// distance+time tokens in the row's own text.
func splitMarks(row *goquery.Selection) []swimtime.SplitMark {
	sibling := row.Next()
	if sibling.Length() > 0 {
		div := sibling.Find(`div[class*="splittimes"]`)
		if div.Length() > 0 {
			if marks := swimtime.ParseSplits(div.Text()); len(marks) > 0 {
				return marks
			}
		}
	}
	return swimtime.ParseSplits(row.Text())
}

// firstEventOf returns the lowest program event id for a session, or the
// fallback when the program lists none.
func (p *program) firstEventOf(session, fallback int) int {
	first := 0
	for key := range p.Titles {
		if key.Session != session {
			continue
		}
		if first == 0 || key.Event < first {
			first = key.Event
		}
	}
	if first == 0 {
		return fallback
	}
	return first
}

// eventsOf lists the program's events for a session, the fallback when
// the result page renders no event selector.
func (p *program) eventsOf(session int) []eventOption {
	var options []eventOption
	for key, title := range p.Titles {
		if key.Session == session {
			options = append(options, eventOption{ID: key.Event, Title: title})
		}
	}
	return options
}

func cellText(tds *goquery.Selection, idx int) string {
	return tds.Eq(idx).Text()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
