package lenex

import (
	"context"
	"database/sql"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/soosb/aquafeed/internal/metrics"
	"github.com/soosb/aquafeed/internal/resolve"
	"github.com/soosb/aquafeed/internal/store"
	"github.com/soosb/aquafeed/internal/swimtime"
	"go.uber.org/zap"
)

// Importer writes LENEX documents into the canonical schema. Each insert
// commits immediately; a fatal mid-document error leaves a partial but
// internally consistent set of rows.
type Importer struct {
	gw      store.Gateway
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewImporter creates an importer over a gateway.
func NewImporter(gw store.Gateway, m *metrics.Metrics, log *zap.Logger) *Importer {
	return &Importer{gw: gw, metrics: m, log: log}
}

// ImportFile imports one LENEX file for the competition identified by
// meetID. Structural failures and missing required identifiers abort the
// whole document.
func (imp *Importer) ImportFile(ctx context.Context, path string, meetID int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return imp.Import(ctx, f, meetID)
}

// Import decodes and imports one LENEX document.
func (imp *Importer) Import(ctx context.Context, r io.Reader, meetID int64) error {
	if meetID <= 0 {
		return fmt.Errorf("meet id must be a positive integer, got %d", meetID)
	}

	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		imp.metrics.Documents.WithLabelValues("failed").Inc()
		return fmt.Errorf("invalid LENEX document: %w", err)
	}

	if len(doc.Meets) == 0 {
		imp.metrics.Documents.WithLabelValues("failed").Inc()
		return fmt.Errorf("no MEET element in document")
	}

	if err := imp.importMeet(ctx, &doc.Meets[0], meetID); err != nil {
		imp.metrics.Documents.WithLabelValues("failed").Inc()
		return err
	}

	imp.metrics.Documents.WithLabelValues("processed").Inc()
	return nil
}

func (imp *Importer) importMeet(ctx context.Context, meetXML *MeetXML, meetID int64) error {
	name := meetXML.Name
	if name == "" {
		name = "Unknown"
	}
	course := strings.ToUpper(meetXML.Course)
	if course == "" {
		course = "LCM"
	}

	meet := &store.Meet{
		ID:         meetID,
		Name:       name,
		Course:     course,
		DataSource: store.SourceLenex,
	}
	if err := imp.gw.UpsertMeet(ctx, meet); err != nil {
		return err
	}

	// Document-local keys are not globally unique; resolve them through
	// maps built within this same pass.
	eventIDs := make(map[string]int64)
	heatIDs := make(map[string]int64)

	for i := range meetXML.Sessions {
		sessXML := &meetXML.Sessions[i]

		sess := &store.Session{MeetID: meetID}
		if n, err := strconv.Atoi(strings.TrimSpace(sessXML.Number)); err == nil {
			sess.SessionNumber = sql.NullInt32{Int32: int32(n), Valid: true}
		}
		if d, ok := swimtime.ParseDate(sessXML.Date); ok {
			sess.SessionDate = sql.NullTime{Time: d, Valid: true}
		}
		if err := imp.gw.CreateSession(ctx, sess); err != nil {
			return err
		}

		for j := range sessXML.Events {
			evXML := &sessXML.Events[j]

			evKey := evXML.EventID
			if evKey == "" {
				evKey = evXML.Number
			}

			event := &store.Event{
				MeetID: meetID,
				Stroke: "FREE",
				Gender: genderCode(evXML.Gender),
			}
			if evXML.Round != "" {
				event.Round = sql.NullString{String: evXML.Round, Valid: true}
			}
			if evXML.SwimStyle != nil {
				if evXML.SwimStyle.Stroke != "" {
					event.Stroke = strings.ToUpper(evXML.SwimStyle.Stroke)
				}
				if d, err := strconv.Atoi(strings.TrimSpace(evXML.SwimStyle.Distance)); err == nil {
					event.Distance = d
				}
			}
			if err := imp.gw.CreateEvent(ctx, event); err != nil {
				return err
			}
			eventIDs[evKey] = event.ID

			for k := range evXML.Heats {
				heatXML := &evXML.Heats[k]

				heatKey := heatXML.HeatID
				if heatKey == "" {
					heatKey = heatXML.Number
				}

				heat := &store.Heat{EventID: event.ID, SessionID: sess.ID}
				if n, err := strconv.Atoi(strings.TrimSpace(heatXML.Number)); err == nil {
					heat.HeatNumber = sql.NullInt32{Int32: int32(n), Valid: true}
				}
				if err := imp.gw.CreateHeat(ctx, heat); err != nil {
					return err
				}
				heatIDs[heatKey] = heat.ID
			}
		}
	}

	// Repair the meet's date bounds from its sessions; runs even when no
	// session had a date, in which case both bounds become null.
	if err := imp.gw.RecomputeMeetDates(ctx, meetID); err != nil {
		return err
	}

	resolver := resolve.New(imp.gw, imp.log)

	for i := range meetXML.Clubs {
		if err := imp.importClub(ctx, resolver, &meetXML.Clubs[i], meetID, eventIDs, heatIDs); err != nil {
			return err
		}
	}

	return nil
}

func (imp *Importer) importClub(ctx context.Context, resolver *resolve.Resolver, clubXML *ClubXML, meetID int64, eventIDs, heatIDs map[string]int64) error {
	code := resolve.ClubCode(clubXML.Code, clubXML.Name)
	clubID, err := resolver.ResolveClub(ctx, code, clubXML.Name, clubXML.Nation)
	if err != nil {
		return err
	}

	for i := range clubXML.Athletes {
		athXML := &clubXML.Athletes[i]

		// Athlete identity is load-bearing for cross-meet history; a
		// missing or non-numeric id fails the whole document.
		if strings.TrimSpace(athXML.AthleteID) == "" {
			return fmt.Errorf("athlete missing athleteid (firstname=%q lastname=%q)",
				athXML.FirstName, athXML.LastName)
		}
		athleteID, err := strconv.ParseInt(strings.TrimSpace(athXML.AthleteID), 10, 64)
		if err != nil {
			return fmt.Errorf("athlete athleteid must be numeric, got %q (firstname=%q lastname=%q)",
				athXML.AthleteID, athXML.FirstName, athXML.LastName)
		}

		athlete := &store.Athlete{
			ID:        athleteID,
			FirstName: nullString(athXML.FirstName),
			LastName:  nullString(athXML.LastName),
		}
		if g := strings.TrimSpace(athXML.Gender); g != "" {
			athlete.Gender = sql.NullString{String: genderCode(g), Valid: true}
		}
		if d, ok := swimtime.ParseDate(athXML.BirthDate); ok {
			athlete.BirthDate = sql.NullTime{Time: d, Valid: true}
		}
		if err := resolver.ResolveAthlete(ctx, athlete); err != nil {
			return err
		}

		aff := &store.ClubAffiliation{
			AthleteID:    athleteID,
			ClubID:       clubID,
			SourceMeetID: meetID,
			ValidFrom:    athlete.BirthDate,
		}
		if err := imp.gw.EnsureAffiliation(ctx, aff); err != nil {
			return err
		}

		for j := range athXML.Results {
			if err := imp.importResult(ctx, &athXML.Results[j], athleteID, clubID, eventIDs, heatIDs); err != nil {
				return err
			}
		}
	}

	return nil
}

func (imp *Importer) importResult(ctx context.Context, resXML *ResultXML, athleteID, clubID int64, eventIDs, heatIDs map[string]int64) error {
	if resXML.EventID == "" || resXML.HeatID == "" {
		return nil
	}
	_, okEvent := eventIDs[resXML.EventID]
	heatID, okHeat := heatIDs[resXML.HeatID]
	if !okEvent || !okHeat {
		// Dangling cross-reference; drop this one result and continue.
		imp.log.Warn("skipping result with unresolvable keys",
			zap.Int64("athlete", athleteID),
			zap.String("eventid", resXML.EventID),
			zap.String("heatid", resXML.HeatID))
		return nil
	}

	result := &store.Result{
		AthleteID: athleteID,
		HeatID:    sql.NullInt64{Int64: heatID, Valid: true},
		ClubID:    sql.NullInt64{Int64: clubID, Valid: true},
	}

	if n, err := strconv.Atoi(strings.TrimSpace(resXML.Lane)); err == nil {
		result.Lane = sql.NullInt32{Int32: int32(n), Valid: true}
	}
	if h, ok := swimtime.Parse(resXML.SwimTime); ok {
		result.TimeHundredths = sql.NullInt32{Int32: int32(h), Valid: true}
	}

	status := resXML.Status
	if status == "" {
		status = resXML.Disqualified
	}
	if status == "" {
		status = swimtime.StatusFromToken(resXML.SwimTime)
	}
	if status != "" {
		if len(status) > 10 {
			status = status[:10]
		}
		result.Status = sql.NullString{String: status, Valid: true}
	}

	rank := resXML.Place
	if rank == "" {
		rank = resXML.Rank
	}
	if n, err := strconv.Atoi(strings.TrimSpace(rank)); err == nil {
		result.Rank = sql.NullInt32{Int32: int32(n), Valid: true}
	}
	if h, ok := swimtime.Parse(resXML.ReactionTime); ok {
		result.ReactionTime = sql.NullInt32{Int32: int32(h), Valid: true}
	}

	if err := imp.gw.InsertResult(ctx, result); err != nil {
		return err
	}
	imp.metrics.ResultsIngested.WithLabelValues(store.SourceLenex).Inc()

	for _, spXML := range resXML.Splits {
		dist, err := strconv.Atoi(strings.TrimSpace(spXML.Distance))
		if err != nil {
			continue
		}
		h, ok := swimtime.Parse(spXML.SwimTime)
		if !ok {
			continue
		}
		split := &store.Split{ResultID: result.ID, Distance: dist, TimeHundredths: h}
		if err := imp.gw.InsertSplit(ctx, split); err != nil {
			return err
		}
		imp.metrics.SplitsIngested.WithLabelValues(store.SourceLenex).Inc()
	}

	return nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

// genderCode normalizes a gender attribute to its one-letter code.
func genderCode(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "X"
	}
	return s[:1]
}
