package lenex

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/soosb/aquafeed/internal/metrics"
	"github.com/soosb/aquafeed/internal/store"
	"github.com/soosb/aquafeed/internal/store/memstore"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const basicDoc = `<?xml version="1.0" encoding="UTF-8"?>
<LENEX version="3.0">
  <MEETS>
    <MEET name="Spring Nationals" course="SCM">
      <SESSIONS>
        <SESSION number="1" date="2024-03-15">
          <EVENTS>
            <EVENT eventid="E1" number="1" gender="M" round="FIN">
              <SWIMSTYLE stroke="FREE" distance="100"/>
              <HEATS>
                <HEAT heatid="H1" number="4"/>
              </HEATS>
            </EVENT>
          </EVENTS>
        </SESSION>
        <SESSION number="2" date="2024-03-16">
          <EVENTS/>
        </SESSION>
      </SESSIONS>
      <CLUBS>
        <CLUB code="AQC" name="Aqua Club" nation="HUN">
          <ATHLETES>
            <ATHLETE athleteid="77" firstname="Anna" lastname="Kiss" birthdate="2004-06-01" gender="F">
              <RESULTS>
                <RESULT eventid="E1" heatid="H1" lane="3" swimtime="1:02.50" place="2" reactiontime="0.68">
                  <SPLITS>
                    <SPLIT distance="50" swimtime="29.80"/>
                  </SPLITS>
                </RESULT>
              </RESULTS>
            </ATHLETE>
          </ATHLETES>
        </CLUB>
      </CLUBS>
    </MEET>
  </MEETS>
</LENEX>`

func newTestImporter(gw store.Gateway) *Importer {
	return NewImporter(gw, metrics.NewForTest(), zap.NewNop())
}

func TestImportBasicDocument(t *testing.T) {
	gw := memstore.New()
	imp := newTestImporter(gw)

	err := imp.Import(context.Background(), strings.NewReader(basicDoc), 500)
	require.NoError(t, err)

	meet, ok := gw.Meets[500]
	require.True(t, ok)
	require.Equal(t, "Spring Nationals", meet.Name)
	require.Equal(t, "SCM", meet.Course)
	require.Equal(t, store.SourceLenex, meet.DataSource)
	require.True(t, meet.StartDate.Valid)
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), meet.StartDate.Time)
	require.True(t, meet.EndDate.Valid)
	require.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), meet.EndDate.Time)

	require.Len(t, gw.Sessions, 2)
	require.Len(t, gw.Events, 1)
	ev := gw.Events[0]
	require.Equal(t, "FREE", ev.Stroke)
	require.Equal(t, 100, ev.Distance)
	require.Equal(t, "M", ev.Gender)
	require.Equal(t, "FIN", ev.Round.String)

	require.Len(t, gw.Heats, 1)
	require.Equal(t, ev.ID, gw.Heats[0].EventID)
	require.Equal(t, int32(4), gw.Heats[0].HeatNumber.Int32)

	club, ok := gw.Clubs["AQC"]
	require.True(t, ok)
	require.Equal(t, "Aqua Club", club.Name)
	require.Equal(t, "HUN", club.Nation.String)

	ath, ok := gw.Athletes[77]
	require.True(t, ok)
	require.Equal(t, "Anna", ath.FirstName.String)
	require.Equal(t, "Kiss", ath.LastName.String)
	require.Equal(t, "F", ath.Gender.String)
	require.Equal(t, time.Date(2004, 6, 1, 0, 0, 0, 0, time.UTC), ath.BirthDate.Time)

	require.Len(t, gw.Affiliations, 1)
	require.Equal(t, int64(77), gw.Affiliations[0].AthleteID)
	require.Equal(t, club.ID, gw.Affiliations[0].ClubID)
	require.Equal(t, int64(500), gw.Affiliations[0].SourceMeetID)

	require.Len(t, gw.Results, 1)
	res := gw.Results[0]
	require.Equal(t, int64(77), res.AthleteID)
	require.True(t, res.HeatID.Valid)
	require.Equal(t, gw.Heats[0].ID, res.HeatID.Int64)
	require.False(t, res.EventID.Valid)
	require.Equal(t, int32(6250), res.TimeHundredths.Int32)
	require.Equal(t, int32(3), res.Lane.Int32)
	require.Equal(t, int32(2), res.Rank.Int32)
	require.Equal(t, int32(68), res.ReactionTime.Int32)
	require.False(t, res.Status.Valid)

	require.Len(t, gw.Splits, 1)
	require.Equal(t, res.ID, gw.Splits[0].ResultID)
	require.Equal(t, 50, gw.Splits[0].Distance)
	require.Equal(t, 2980, gw.Splits[0].TimeHundredths)
}

func TestImportFillsGenderAfterScrape(t *testing.T) {
	gw := memstore.New()

	// A scraped sighting knows names and birth year but never gender.
	err := gw.UpsertAthlete(context.Background(), &store.Athlete{
		ID:        77,
		FirstName: sql.NullString{String: "Anna", Valid: true},
		LastName:  sql.NullString{String: "Kiss", Valid: true},
		BirthDate: sql.NullTime{Time: time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC), Valid: true},
	})
	require.NoError(t, err)

	imp := newTestImporter(gw)
	err = imp.Import(context.Background(), strings.NewReader(basicDoc), 500)
	require.NoError(t, err)

	ath := gw.Athletes[77]
	require.Equal(t, "F", ath.Gender.String)
	require.Equal(t, "Anna", ath.FirstName.String)
	require.Equal(t, 2004, ath.BirthDate.Time.Year())
}

func TestImportLeavesGenderNullWhenAbsent(t *testing.T) {
	gw := memstore.New()
	imp := newTestImporter(gw)

	doc := `<LENEX><MEETS><MEET name="M">
	  <CLUBS><CLUB code="AQC"><ATHLETES>
	    <ATHLETE athleteid="11" firstname="Sam" lastname="Toth"/>
	  </ATHLETES></CLUB></CLUBS>
	</MEET></MEETS></LENEX>`
	err := imp.Import(context.Background(), strings.NewReader(doc), 9)
	require.NoError(t, err)

	require.False(t, gw.Athletes[11].Gender.Valid)
}

func TestImportDefaultsNameAndCourse(t *testing.T) {
	gw := memstore.New()
	imp := newTestImporter(gw)

	doc := `<LENEX><MEETS><MEET></MEET></MEETS></LENEX>`
	err := imp.Import(context.Background(), strings.NewReader(doc), 9)
	require.NoError(t, err)

	require.Equal(t, "Unknown", gw.Meets[9].Name)
	require.Equal(t, "LCM", gw.Meets[9].Course)
}

func TestImportRejectsNonLenexRoot(t *testing.T) {
	gw := memstore.New()
	imp := newTestImporter(gw)

	err := imp.Import(context.Background(), strings.NewReader(`<OTHER/>`), 9)
	require.Error(t, err)
	require.Empty(t, gw.Meets)
}

func TestImportRejectsEmptyMeets(t *testing.T) {
	gw := memstore.New()
	imp := newTestImporter(gw)

	err := imp.Import(context.Background(), strings.NewReader(`<LENEX><MEETS/></LENEX>`), 9)
	require.Error(t, err)
	require.Empty(t, gw.Meets)
}

func TestImportMissingAthleteIDAborts(t *testing.T) {
	gw := memstore.New()
	imp := newTestImporter(gw)

	doc := `<LENEX><MEETS><MEET name="M">
      <CLUBS>
        <CLUB code="AAA" name="First Club">
          <ATHLETES><ATHLETE athleteid="1" lastname="Ok"/></ATHLETES>
        </CLUB>
        <CLUB code="BBB" name="Second Club">
          <ATHLETES><ATHLETE lastname="Broken"/></ATHLETES>
        </CLUB>
      </CLUBS>
    </MEET></MEETS></LENEX>`

	err := imp.Import(context.Background(), strings.NewReader(doc), 9)
	require.Error(t, err)
	require.Contains(t, err.Error(), "athleteid")

	// Rows written before the failure stay committed.
	require.Contains(t, gw.Clubs, "AAA")
	require.Contains(t, gw.Athletes, int64(1))
	require.NotContains(t, gw.Athletes, int64(0))
}

func TestImportSkipsUnresolvableResultKeys(t *testing.T) {
	gw := memstore.New()
	imp := newTestImporter(gw)

	doc := `<LENEX><MEETS><MEET name="M">
      <SESSIONS><SESSION number="1">
        <EVENTS><EVENT eventid="E1"><HEATS><HEAT heatid="H1"/></HEATS></EVENT></EVENTS>
      </SESSION></SESSIONS>
      <CLUBS><CLUB code="AQC"><ATHLETES>
        <ATHLETE athleteid="1"><RESULTS>
          <RESULT eventid="E9" heatid="H1" swimtime="30.00"/>
          <RESULT eventid="E1" heatid="H9" swimtime="30.00"/>
          <RESULT heatid="H1" swimtime="30.00"/>
          <RESULT eventid="E1" heatid="H1" swimtime="30.00"/>
        </RESULTS></ATHLETE>
      </ATHLETES></CLUB></CLUBS>
    </MEET></MEETS></LENEX>`

	err := imp.Import(context.Background(), strings.NewReader(doc), 9)
	require.NoError(t, err)
	require.Len(t, gw.Results, 1)
}

func TestImportStatusFromToken(t *testing.T) {
	gw := memstore.New()
	imp := newTestImporter(gw)

	doc := `<LENEX><MEETS><MEET name="M">
      <SESSIONS><SESSION number="1">
        <EVENTS><EVENT eventid="E1"><HEATS><HEAT heatid="H1"/></HEATS></EVENT></EVENTS>
      </SESSION></SESSIONS>
      <CLUBS><CLUB code="AQC"><ATHLETES>
        <ATHLETE athleteid="1"><RESULTS>
          <RESULT eventid="E1" heatid="H1" swimtime="DNS"/>
          <RESULT eventid="E1" heatid="H1" swimtime="NT" status="DSQ"/>
        </RESULTS></ATHLETE>
      </ATHLETES></CLUB></CLUBS>
    </MEET></MEETS></LENEX>`

	err := imp.Import(context.Background(), strings.NewReader(doc), 9)
	require.NoError(t, err)
	require.Len(t, gw.Results, 2)

	require.False(t, gw.Results[0].TimeHundredths.Valid)
	require.Equal(t, "DNS", gw.Results[0].Status.String)
	require.Equal(t, "DSQ", gw.Results[1].Status.String)
}

func TestImportEventIdentityFallsBackToNumber(t *testing.T) {
	gw := memstore.New()
	imp := newTestImporter(gw)

	doc := `<LENEX><MEETS><MEET name="M">
      <SESSIONS><SESSION number="1">
        <EVENTS><EVENT number="12"><HEATS><HEAT number="2"/></HEATS></EVENT></EVENTS>
      </SESSION></SESSIONS>
      <CLUBS><CLUB code="AQC"><ATHLETES>
        <ATHLETE athleteid="1"><RESULTS>
          <RESULT eventid="12" heatid="2" swimtime="31.00"/>
        </RESULTS></ATHLETE>
      </ATHLETES></CLUB></CLUBS>
    </MEET></MEETS></LENEX>`

	err := imp.Import(context.Background(), strings.NewReader(doc), 9)
	require.NoError(t, err)
	require.Len(t, gw.Results, 1)
	require.Equal(t, int32(3100), gw.Results[0].TimeHundredths.Int32)
}
