// Package ranking reconciles the local usage total with a remote ranked
// store and caches the ordered ranking.
package ranking

import (
	"context"
	"errors"

	"github.com/asteroid-belt/vidtally/internal/models"
)

// ErrNotConfigured is returned when no remote ranking backend is set up.
var ErrNotConfigured = errors.New("ranking: no remote backend configured")

// RemoteStore is the remote ranked store, one record per client ID.
type RemoteStore interface {
	// SelectByID returns the record for clientID, or false when none exists.
	SelectByID(ctx context.Context, clientID string) (models.RankingRecord, bool, error)
	Insert(ctx context.Context, rec models.RankingRecord) error
	Update(ctx context.Context, rec models.RankingRecord) error
	// SelectAllOrderedByTotalDesc returns every record, highest total first.
	SelectAllOrderedByTotalDesc(ctx context.Context) ([]models.RankingRecord, error)
	Close() error
}
