package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PresenceStore tracks which users currently hold a websocket connection.
// Entries carry a TTL and are refreshed by heartbeats, so a crashed client
// ages out on its own.
type PresenceStore interface {
	SetOnline(ctx context.Context, userID uuid.UUID, ttl time.Duration) error
	SetOffline(ctx context.Context, userID uuid.UUID) error
	IsOnline(ctx context.Context, userID uuid.UUID) (bool, error)
	OnlineAmong(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}
