package repository

import (
	"context"
	"fmt"

	"github.com/soosb/aquafeed/internal/store"
)

// CreateSession inserts a session row and fills s.ID.
func (r *Repository) CreateSession(ctx context.Context, s *store.Session) error {
	query := `
		INSERT INTO session (meetid, sessionnumber, sessiondate)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		s.MeetID, s.SessionNumber, s.SessionDate,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("inserting session for meet %d: %w", s.MeetID, err)
	}
	return nil
}

// CreateEvent inserts an event row and fills e.ID.
func (r *Repository) CreateEvent(ctx context.Context, e *store.Event) error {
	query := `
		INSERT INTO event (meetid, stroke, distance, round, gender)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		e.MeetID, e.Stroke, e.Distance, e.Round, e.Gender,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("inserting event for meet %d: %w", e.MeetID, err)
	}
	return nil
}

// CreateHeat inserts a heat row and fills h.ID.
func (r *Repository) CreateHeat(ctx context.Context, h *store.Heat) error {
	query := `
		INSERT INTO heat (eventid, sessionid, heatnumber)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		h.EventID, h.SessionID, h.HeatNumber,
	).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("inserting heat for event %d: %w", h.EventID, err)
	}
	return nil
}
