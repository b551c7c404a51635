package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/soosb/aquafeed/internal/store"
)

// UpsertMeet creates the meet on first sight; later touches fill only
// unset fields and never downgrade a lenex provenance tag to scraped.
func (r *Repository) UpsertMeet(ctx context.Context, m *store.Meet) error {
	query := `
		INSERT INTO meet (id, name, startdate, enddate, course, datasource)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = COALESCE(NULLIF(meet.name, ''), EXCLUDED.name),
			startdate = COALESCE(meet.startdate, EXCLUDED.startdate),
			enddate = COALESCE(meet.enddate, EXCLUDED.enddate),
			course = COALESCE(NULLIF(meet.course, ''), EXCLUDED.course),
			datasource = CASE
				WHEN meet.datasource = 'lenex' THEN meet.datasource
				ELSE EXCLUDED.datasource
			END,
			updated_at = NOW()
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		m.ID, m.Name, m.StartDate, m.EndDate, m.Course, m.DataSource,
	)
	if err != nil {
		return fmt.Errorf("upserting meet %d: %w", m.ID, err)
	}
	return nil
}

// RecomputeMeetDates repairs the meet's date bounds from its sessions.
// Runs unconditionally after a structured import; both bounds go null
// when no session carries a date.
func (r *Repository) RecomputeMeetDates(ctx context.Context, meetID int64) error {
	query := `
		UPDATE meet SET
			startdate = (SELECT MIN(sessiondate) FROM session WHERE meetid = $1),
			enddate = (SELECT MAX(sessiondate) FROM session WHERE meetid = $1),
			updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.DB().ExecContext(ctx, query, meetID); err != nil {
		return fmt.Errorf("recomputing meet %d dates: %w", meetID, err)
	}
	return nil
}

// GetMeet returns one meet row, or (nil, nil) when absent.
func (r *Repository) GetMeet(ctx context.Context, meetID int64) (*store.Meet, error) {
	query := `SELECT id, name, startdate, enddate, course, datasource FROM meet WHERE id = $1`

	m := &store.Meet{}
	err := r.db.DB().QueryRowContext(ctx, query, meetID).Scan(
		&m.ID, &m.Name, &m.StartDate, &m.EndDate, &m.Course, &m.DataSource,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying meet %d: %w", meetID, err)
	}
	return m, nil
}

// ListMeets returns all meets, most recent start date first.
func (r *Repository) ListMeets(ctx context.Context) ([]*store.Meet, error) {
	query := `
		SELECT id, name, startdate, enddate, course, datasource
		FROM meet
		ORDER BY startdate DESC NULLS LAST, id
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying meets: %w", err)
	}
	defer rows.Close()

	var meets []*store.Meet
	for rows.Next() {
		m := &store.Meet{}
		if err := rows.Scan(&m.ID, &m.Name, &m.StartDate, &m.EndDate, &m.Course, &m.DataSource); err != nil {
			return nil, fmt.Errorf("scanning meet: %w", err)
		}
		meets = append(meets, m)
	}
	return meets, rows.Err()
}

// CountMeetResults returns the number of result rows attributable to a
// meet through either the heat (structured) or event (scraped) link.
func (r *Repository) CountMeetResults(ctx context.Context, meetID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM result res
		LEFT JOIN heat h ON res.heatid = h.id
		LEFT JOIN event eh ON h.eventid = eh.id
		LEFT JOIN event ev ON res.eventid = ev.id
		WHERE eh.meetid = $1 OR ev.meetid = $1
	`

	var n int
	if err := r.db.DB().QueryRowContext(ctx, query, meetID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting results for meet %d: %w", meetID, err)
	}
	return n, nil
}
