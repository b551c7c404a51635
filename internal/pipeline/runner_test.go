package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/soosb/aquafeed/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSources is an in-memory SourceStore recording status writes.
type stubSources struct {
	records  []*store.SourceRecord
	statuses map[int64]string
}

func newStubSources(records ...*store.SourceRecord) *stubSources {
	return &stubSources{records: records, statuses: make(map[int64]string)}
}

func (s *stubSources) ListByStatus(_ context.Context, statuses ...string) ([]*store.SourceRecord, error) {
	want := make(map[string]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	var out []*store.SourceRecord
	for _, rec := range s.records {
		if want[rec.Status] {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *stubSources) UpdateStatus(_ context.Context, id int64, status string) error {
	s.statuses[id] = status
	return nil
}

type stubImporter struct {
	calls []int64
	fail  map[int64]bool
}

func (i *stubImporter) ImportFile(_ context.Context, _ string, meetID int64) error {
	i.calls = append(i.calls, meetID)
	if i.fail[meetID] {
		return errors.New("bad document")
	}
	return nil
}

type stubScraper struct {
	calls []int64
	fail  map[int64]bool
}

func (s *stubScraper) Run(_ context.Context, id int64) error {
	s.calls = append(s.calls, id)
	if s.fail[id] {
		return errors.New("site unreachable")
	}
	return nil
}

func record(id int64, status, filename string) *store.SourceRecord {
	rec := &store.SourceRecord{OnlineEventID: id, Status: status}
	if filename != "" {
		rec.Filename = sql.NullString{String: filename, Valid: true}
	}
	return rec
}

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("<LENEX/>"), 0o644))
}

func TestRunMarksOutcomes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "100.lef")
	writeFile(t, dir, "101.lef")

	sources := newStubSources(
		record(100, store.StatusDownloaded, "100.lef"),
		record(101, store.StatusBackedUp, "101.lef"),
		record(200, store.StatusLenexNotFound, ""),
		record(201, store.StatusLenexNotFound, ""),
		record(300, store.StatusProcessed, "300.lef"),
	)
	importer := &stubImporter{fail: map[int64]bool{101: true}}
	scraper := &stubScraper{fail: map[int64]bool{201: true}}

	r := New(sources, importer, scraper, dir, zap.NewNop())
	require.NoError(t, r.Run(context.Background()))

	require.Equal(t, []int64{100, 101}, importer.calls)
	require.Equal(t, []int64{200, 201}, scraper.calls)

	require.Equal(t, store.StatusProcessed, sources.statuses[100])
	require.Equal(t, store.StatusProcessingFailed, sources.statuses[101])
	require.Equal(t, store.StatusScraped, sources.statuses[200])
	require.Equal(t, store.StatusScrapeFailed, sources.statuses[201])
	require.NotContains(t, sources.statuses, int64(300))
}

func TestRunSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()

	sources := newStubSources(
		record(100, store.StatusDownloaded, "gone.lef"),
		record(101, store.StatusDownloaded, ""),
	)
	importer := &stubImporter{}
	scraper := &stubScraper{}

	r := New(sources, importer, scraper, dir, zap.NewNop())
	require.NoError(t, r.Run(context.Background()))

	// Neither record reaches the importer nor changes status.
	require.Empty(t, importer.calls)
	require.Empty(t, sources.statuses)
}
