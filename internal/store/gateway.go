package store

import "context"

// Gateway is the idempotent write contract both ingestion adapters rely
// on. Identifying keys (meet id, club code, athlete id) are stable
// across reruns; event, heat, result and split rows are append-only.
// Each call commits before it returns, so a failure mid-import leaves a
// partial but internally consistent set of rows.
type Gateway interface {
	// UpsertMeet creates the meet on first touch and thereafter fills
	// only unset fields. A lenex provenance tag is never downgraded to
	// scraped.
	UpsertMeet(ctx context.Context, m *Meet) error

	// RecomputeMeetDates sets the meet's start/end dates to the min/max
	// of its sessions' dates; both become null when no session has one.
	RecomputeMeetDates(ctx context.Context, meetID int64) error

	// CreateSession inserts a session row and fills s.ID.
	CreateSession(ctx context.Context, s *Session) error

	// CreateEvent inserts an event row and fills e.ID.
	CreateEvent(ctx context.Context, e *Event) error

	// CreateHeat inserts a heat row and fills h.ID.
	CreateHeat(ctx context.Context, h *Heat) error

	// FindClubByCode returns the club bound to code, or (nil, nil) on a
	// miss.
	FindClubByCode(ctx context.Context, code string) (*Club, error)

	// CreateClub inserts a club row and fills c.ID.
	CreateClub(ctx context.Context, c *Club) error

	// AthleteExists reports whether the athlete id already has a row.
	AthleteExists(ctx context.Context, id int64) (bool, error)

	// UpsertAthlete creates the athlete on first sight; on repeat sight
	// only currently-null fields are filled (COALESCE merge).
	UpsertAthlete(ctx context.Context, a *Athlete) error

	// EnsureAffiliation inserts the (athlete, club, meet) triple unless
	// an identical one already exists.
	EnsureAffiliation(ctx context.Context, aff *ClubAffiliation) error

	// InsertResult appends a result row and fills r.ID.
	InsertResult(ctx context.Context, r *Result) error

	// InsertSplit appends a split row.
	InsertSplit(ctx context.Context, sp *Split) error
}

// SourceStore is the processing-status contract shared with the
// discovery collaborator.
type SourceStore interface {
	ListByStatus(ctx context.Context, statuses ...string) ([]*SourceRecord, error)
	UpdateStatus(ctx context.Context, onlineEventID int64, status string) error
}
