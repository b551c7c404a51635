package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/soosb/aquafeed/internal/store"
)

var _ store.SourceStore = (*Repository)(nil)

// ListByStatus returns source records in any of the given states, in
// competition date order (the order the pipeline processes them).
func (r *Repository) ListByStatus(ctx context.Context, statuses ...string) ([]*store.SourceRecord, error) {
	query := `
		SELECT onlineeventid, eventname, eventdatefrom, eventdateto, filename, status, updated_at
		FROM source_record
		WHERE status = ANY($1)
		ORDER BY eventdatefrom NULLS LAST, onlineeventid
	`

	rows, err := r.db.DB().QueryContext(ctx, query, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("querying source records: %w", err)
	}
	defer rows.Close()

	var records []*store.SourceRecord
	for rows.Next() {
		rec := &store.SourceRecord{}
		err := rows.Scan(
			&rec.OnlineEventID, &rec.EventName, &rec.EventDateFrom, &rec.EventDateTo,
			&rec.Filename, &rec.Status, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning source record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateStatus writes the processing outcome back onto a source record.
func (r *Repository) UpdateStatus(ctx context.Context, onlineEventID int64, status string) error {
	query := `UPDATE source_record SET status = $2, updated_at = NOW() WHERE onlineeventid = $1`

	if _, err := r.db.DB().ExecContext(ctx, query, onlineEventID, status); err != nil {
		return fmt.Errorf("updating source record %d status: %w", onlineEventID, err)
	}
	return nil
}

// ListSources returns every source record for the status API.
func (r *Repository) ListSources(ctx context.Context) ([]*store.SourceRecord, error) {
	query := `
		SELECT onlineeventid, eventname, eventdatefrom, eventdateto, filename, status, updated_at
		FROM source_record
		ORDER BY eventdatefrom DESC NULLS LAST, onlineeventid
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying source records: %w", err)
	}
	defer rows.Close()

	var records []*store.SourceRecord
	for rows.Next() {
		rec := &store.SourceRecord{}
		err := rows.Scan(
			&rec.OnlineEventID, &rec.EventName, &rec.EventDateFrom, &rec.EventDateTo,
			&rec.Filename, &rec.Status, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning source record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
