// Package store persists basket value maps and rate tracks per project.
// The core engine performs no I/O; this is the persistence collaborator the
// BasketRuntime delegates to.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/schedule"
)

// ErrNotFound distinguishes "nothing saved yet" from a failure. Loading a
// basket that was never saved returns it; callers usually start from an
// empty map plus catalogue defaults.
var ErrNotFound = eris.New("store: not found")

// Store is the persistence interface for basket values and rate tracks.
// Values round-trip exactly: absent fields are omitted, never stored as
// null, so "not yet computable" survives a save/load cycle.
type Store interface {
	// Basket values
	LoadBasket(ctx context.Context, projectID, basketID string) (model.ValueMap, error)
	SaveBasket(ctx context.Context, projectID, basketID string, values model.ValueMap) error
	ListProjects(ctx context.Context) ([]string, error)

	// Rate tracks
	LoadTracks(ctx context.Context, projectID string) ([]schedule.Track, error)
	SaveTrack(ctx context.Context, projectID string, track schedule.Track) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
