package memstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/soosb/aquafeed/internal/store"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) sql.NullTime {
	return sql.NullTime{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func TestUpsertMeetFillsOnlyUnsetFields(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.UpsertMeet(ctx, &store.Meet{
		ID: 500, Name: "Spring Nationals", Course: "LCM", DataSource: store.SourceLenex,
	}))
	require.NoError(t, s.UpsertMeet(ctx, &store.Meet{
		ID: 500, Name: "Other Name", Course: "SCM", DataSource: store.SourceScraped,
		StartDate: date(2024, 3, 15),
	}))

	meet := s.Meets[500]
	require.Equal(t, "Spring Nationals", meet.Name)
	require.Equal(t, "LCM", meet.Course)
	// A structured provenance tag is never downgraded.
	require.Equal(t, store.SourceLenex, meet.DataSource)
	// The unset date gets filled by the later touch.
	require.Equal(t, date(2024, 3, 15), meet.StartDate)
}

func TestUpsertMeetUpgradesProvenance(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.UpsertMeet(ctx, &store.Meet{
		ID: 500, Name: "", Course: "", DataSource: store.SourceScraped,
	}))
	require.NoError(t, s.UpsertMeet(ctx, &store.Meet{
		ID: 500, Name: "Spring Nationals", Course: "LCM", DataSource: store.SourceLenex,
	}))

	meet := s.Meets[500]
	require.Equal(t, "Spring Nationals", meet.Name)
	require.Equal(t, store.SourceLenex, meet.DataSource)
}

func TestRecomputeMeetDates(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.UpsertMeet(ctx, &store.Meet{ID: 500, Name: "M", Course: "LCM", DataSource: store.SourceLenex}))
	require.NoError(t, s.CreateSession(ctx, &store.Session{MeetID: 500, SessionDate: date(2024, 3, 16)}))
	require.NoError(t, s.CreateSession(ctx, &store.Session{MeetID: 500, SessionDate: date(2024, 3, 15)}))
	require.NoError(t, s.CreateSession(ctx, &store.Session{MeetID: 500}))

	require.NoError(t, s.RecomputeMeetDates(ctx, 500))
	require.Equal(t, date(2024, 3, 15), s.Meets[500].StartDate)
	require.Equal(t, date(2024, 3, 16), s.Meets[500].EndDate)
}

func TestRecomputeMeetDatesNoDatedSessions(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.UpsertMeet(ctx, &store.Meet{
		ID: 500, Name: "M", Course: "LCM", DataSource: store.SourceLenex,
		StartDate: date(2024, 1, 1),
	}))
	require.NoError(t, s.CreateSession(ctx, &store.Session{MeetID: 500}))

	require.NoError(t, s.RecomputeMeetDates(ctx, 500))
	require.False(t, s.Meets[500].StartDate.Valid)
	require.False(t, s.Meets[500].EndDate.Valid)
}

func TestEnsureAffiliationDedups(t *testing.T) {
	s := New()
	ctx := context.Background()

	aff := store.ClubAffiliation{AthleteID: 77, ClubID: 1, SourceMeetID: 500}
	first := aff
	second := aff
	require.NoError(t, s.EnsureAffiliation(ctx, &first))
	require.NoError(t, s.EnsureAffiliation(ctx, &second))
	require.Len(t, s.Affiliations, 1)

	other := store.ClubAffiliation{AthleteID: 77, ClubID: 1, SourceMeetID: 501}
	require.NoError(t, s.EnsureAffiliation(ctx, &other))
	require.Len(t, s.Affiliations, 2)
}
