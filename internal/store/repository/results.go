package repository

import (
	"context"
	"fmt"

	"github.com/soosb/aquafeed/internal/store"
)

// InsertResult appends a result row and fills r.ID. Result rows are
// deliberately append-only; per-run dedup is the adapters' job.
func (r *Repository) InsertResult(ctx context.Context, res *store.Result) error {
	query := `
		INSERT INTO result (athleteid, heatid, eventid, heatnumber, clubid, lane,
			timehundredths, status, rank, reactiontimehundredths, finapoints)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		res.AthleteID, res.HeatID, res.EventID, res.HeatNumber, res.ClubID, res.Lane,
		res.TimeHundredths, res.Status, res.Rank, res.ReactionTime, res.FinaPoints,
	).Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("inserting result for athlete %d: %w", res.AthleteID, err)
	}
	return nil
}

// InsertSplit appends a split row.
func (r *Repository) InsertSplit(ctx context.Context, sp *store.Split) error {
	query := `
		INSERT INTO split (resultid, distance, timehundredths)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		sp.ResultID, sp.Distance, sp.TimeHundredths,
	).Scan(&sp.ID)
	if err != nil {
		return fmt.Errorf("inserting split for result %d: %w", sp.ResultID, err)
	}
	return nil
}
