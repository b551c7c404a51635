package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/soosb/aquafeed/internal/store"
)

// FindClubByCode looks up the club bound to a source code. A miss is
// (nil, nil), not an error.
func (r *Repository) FindClubByCode(ctx context.Context, code string) (*store.Club, error) {
	query := `SELECT id, clubcode, name, nation FROM club WHERE clubcode = $1`

	c := &store.Club{}
	err := r.db.DB().QueryRowContext(ctx, query, code).Scan(&c.ID, &c.ClubCode, &c.Name, &c.Nation)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying club %q: %w", code, err)
	}
	return c, nil
}

// CreateClub inserts a club row and fills c.ID. First writer wins for
// the code binding: a concurrent insert of the same code surfaces as a
// unique-violation error for the loser.
func (r *Repository) CreateClub(ctx context.Context, c *store.Club) error {
	query := `
		INSERT INTO club (clubcode, name, nation)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query, c.ClubCode, c.Name, c.Nation).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("inserting club %q: %w", c.ClubCode, err)
	}
	return nil
}

// AthleteExists reports whether the athlete id already has a row.
func (r *Repository) AthleteExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM athlete WHERE id = $1)`
	if err := r.db.DB().QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking athlete %d: %w", id, err)
	}
	return exists, nil
}

// UpsertAthlete creates the athlete on first sight; on conflict only
// null columns are filled, so a later observation never clobbers better
// data with worse.
func (r *Repository) UpsertAthlete(ctx context.Context, a *store.Athlete) error {
	query := `
		INSERT INTO athlete (id, firstname, lastname, birthdate, gender)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			firstname = COALESCE(athlete.firstname, EXCLUDED.firstname),
			lastname = COALESCE(athlete.lastname, EXCLUDED.lastname),
			birthdate = COALESCE(athlete.birthdate, EXCLUDED.birthdate),
			gender = COALESCE(athlete.gender, EXCLUDED.gender),
			updated_at = NOW()
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		a.ID, a.FirstName, a.LastName, a.BirthDate, a.Gender,
	)
	if err != nil {
		return fmt.Errorf("upserting athlete %d: %w", a.ID, err)
	}
	return nil
}

// EnsureAffiliation inserts the (athlete, club, meet) triple unless an
// identical one exists already.
func (r *Repository) EnsureAffiliation(ctx context.Context, aff *store.ClubAffiliation) error {
	query := `
		INSERT INTO athleteclubaffiliation (athleteid, clubid, sourcemeetid, validfrom, validto)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (
			SELECT 1 FROM athleteclubaffiliation
			WHERE athleteid = $1 AND clubid = $2 AND sourcemeetid = $3
		)
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		aff.AthleteID, aff.ClubID, aff.SourceMeetID, aff.ValidFrom, aff.ValidTo,
	)
	if err != nil {
		return fmt.Errorf("inserting affiliation athlete=%d club=%d meet=%d: %w",
			aff.AthleteID, aff.ClubID, aff.SourceMeetID, err)
	}
	return nil
}
