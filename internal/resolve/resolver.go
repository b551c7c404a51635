// Package resolve maps source-specific identifiers (club codes, athlete
// ids) to canonical rows. Identity matching is strict; field merging is
// permissive, so both adapters converge on one record per real entity
// without clobbering better data with worse.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/soosb/aquafeed/internal/store"
	"go.uber.org/zap"
)

// ClubCodeMaxLen bounds the code column; name-derived fallback codes are
// truncated to fit.
const ClubCodeMaxLen = 32

// Resolver carries the per-run lookup caches. One resolver serves one
// ingestion run; it is not safe for concurrent use.
type Resolver struct {
	gw  store.Gateway
	log *zap.Logger

	clubs    map[string]int64
	athletes map[int64]bool
}

// New creates a resolver over a gateway.
func New(gw store.Gateway, log *zap.Logger) *Resolver {
	return &Resolver{
		gw:       gw,
		log:      log,
		clubs:    make(map[string]int64),
		athletes: make(map[int64]bool),
	}
}

// ClubCode derives the lookup code: the source code when present,
// otherwise the truncated name, otherwise "UNK".
func ClubCode(code, name string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		code = strings.TrimSpace(name)
	}
	if len(code) > ClubCodeMaxLen {
		code = code[:ClubCodeMaxLen]
	}
	if code == "" {
		return "UNK"
	}
	return code
}

// ResolveClub returns the canonical id for a club code, creating the row
// on first sight. First writer wins for the code binding; repeated
// resolution within a run is served from the cache.
func (r *Resolver) ResolveClub(ctx context.Context, code, name, nation string) (int64, error) {
	if id, ok := r.clubs[code]; ok {
		return id, nil
	}

	club, err := r.gw.FindClubByCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("looking up club %q: %w", code, err)
	}

	if club == nil {
		if name == "" {
			name = code
		}
		club = &store.Club{ClubCode: code, Name: name}
		if nation != "" {
			if len(nation) > 3 {
				nation = nation[:3]
			}
			club.Nation.String = nation
			club.Nation.Valid = true
		}
		if err := r.gw.CreateClub(ctx, club); err != nil {
			return 0, fmt.Errorf("creating club %q: %w", code, err)
		}
		r.log.Debug("created club", zap.String("code", code), zap.Int64("id", club.ID))
	}

	r.clubs[code] = club.ID
	return club.ID, nil
}

// ResolveAthlete upserts an athlete by its globally stable id. Existing
// non-null fields are preserved; only null fields are filled by the new
// observation.
func (r *Resolver) ResolveAthlete(ctx context.Context, a *store.Athlete) error {
	if err := r.gw.UpsertAthlete(ctx, a); err != nil {
		return fmt.Errorf("upserting athlete %d: %w", a.ID, err)
	}
	r.athletes[a.ID] = true
	return nil
}

// KnownAthlete reports whether the athlete id was already resolved in
// this run. The scrape adapter uses this to avoid a secondary page fetch
// for swimmers it has handled.
func (r *Resolver) KnownAthlete(id int64) bool {
	return r.athletes[id]
}
