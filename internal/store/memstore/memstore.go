// Package memstore is an in-memory implementation of the persistence
// gateway, used by tests and by the dry-run scrape binary. It mirrors
// the SQL implementation's merge semantics exactly.
package memstore

import (
	"context"
	"sync"

	"github.com/soosb/aquafeed/internal/store"
)

// Store holds all canonical entities in process memory.
type Store struct {
	mu sync.Mutex

	nextID int64

	Meets        map[int64]*store.Meet
	Sessions     []*store.Session
	Events       []*store.Event
	Heats        []*store.Heat
	Clubs        map[string]*store.Club
	Athletes     map[int64]*store.Athlete
	Affiliations []*store.ClubAffiliation
	Results      []*store.Result
	Splits       []*store.Split
}

var _ store.Gateway = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		Meets:    make(map[int64]*store.Meet),
		Clubs:    make(map[string]*store.Club),
		Athletes: make(map[int64]*store.Athlete),
	}
}

func (s *Store) nextSequence() int64 {
	s.nextID++
	return s.nextID
}

// UpsertMeet applies the fill-only-unset merge of the SQL gateway.
func (s *Store) UpsertMeet(_ context.Context, m *store.Meet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.Meets[m.ID]
	if !ok {
		cp := *m
		s.Meets[m.ID] = &cp
		return nil
	}

	if existing.Name == "" {
		existing.Name = m.Name
	}
	if !existing.StartDate.Valid {
		existing.StartDate = m.StartDate
	}
	if !existing.EndDate.Valid {
		existing.EndDate = m.EndDate
	}
	if existing.Course == "" {
		existing.Course = m.Course
	}
	if existing.DataSource != store.SourceLenex {
		existing.DataSource = m.DataSource
	}
	return nil
}

// RecomputeMeetDates sets the meet bounds to the min/max session date.
func (s *Store) RecomputeMeetDates(_ context.Context, meetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.Meets[meetID]
	if !ok {
		return nil
	}

	m.StartDate.Valid = false
	m.EndDate.Valid = false
	for _, sess := range s.Sessions {
		if sess.MeetID != meetID || !sess.SessionDate.Valid {
			continue
		}
		d := sess.SessionDate.Time
		if !m.StartDate.Valid || d.Before(m.StartDate.Time) {
			m.StartDate.Time = d
			m.StartDate.Valid = true
		}
		if !m.EndDate.Valid || d.After(m.EndDate.Time) {
			m.EndDate.Time = d
			m.EndDate.Valid = true
		}
	}
	return nil
}

// CreateSession appends a session row.
func (s *Store) CreateSession(_ context.Context, sess *store.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.ID = s.nextSequence()
	cp := *sess
	s.Sessions = append(s.Sessions, &cp)
	return nil
}

// CreateEvent appends an event row.
func (s *Store) CreateEvent(_ context.Context, e *store.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextSequence()
	cp := *e
	s.Events = append(s.Events, &cp)
	return nil
}

// CreateHeat appends a heat row.
func (s *Store) CreateHeat(_ context.Context, h *store.Heat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h.ID = s.nextSequence()
	cp := *h
	s.Heats = append(s.Heats, &cp)
	return nil
}

// FindClubByCode returns the bound club or (nil, nil).
func (s *Store) FindClubByCode(_ context.Context, code string) (*store.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.Clubs[code]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// CreateClub binds a code to a new club row.
func (s *Store) CreateClub(_ context.Context, c *store.Club) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.nextSequence()
	cp := *c
	s.Clubs[c.ClubCode] = &cp
	return nil
}

// AthleteExists reports whether the athlete id already has a row.
func (s *Store) AthleteExists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.Athletes[id]
	return ok, nil
}

// UpsertAthlete fills only null fields on repeat sight.
func (s *Store) UpsertAthlete(_ context.Context, a *store.Athlete) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.Athletes[a.ID]
	if !ok {
		cp := *a
		s.Athletes[a.ID] = &cp
		return nil
	}

	if !existing.FirstName.Valid {
		existing.FirstName = a.FirstName
	}
	if !existing.LastName.Valid {
		existing.LastName = a.LastName
	}
	if !existing.BirthDate.Valid {
		existing.BirthDate = a.BirthDate
	}
	if !existing.Gender.Valid {
		existing.Gender = a.Gender
	}
	return nil
}

// EnsureAffiliation inserts the triple only when absent.
func (s *Store) EnsureAffiliation(_ context.Context, aff *store.ClubAffiliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.Affiliations {
		if existing.AthleteID == aff.AthleteID &&
			existing.ClubID == aff.ClubID &&
			existing.SourceMeetID == aff.SourceMeetID {
			return nil
		}
	}

	aff.ID = s.nextSequence()
	cp := *aff
	s.Affiliations = append(s.Affiliations, &cp)
	return nil
}

// InsertResult appends a result row.
func (s *Store) InsertResult(_ context.Context, res *store.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res.ID = s.nextSequence()
	cp := *res
	s.Results = append(s.Results, &cp)
	return nil
}

// InsertSplit appends a split row.
func (s *Store) InsertSplit(_ context.Context, sp *store.Split) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp.ID = s.nextSequence()
	cp := *sp
	s.Splits = append(s.Splits, &cp)
	return nil
}
