package storage

import (
	"context"

	"bskypromo/internal/domain"
)

// Repository defines the interface for the post-history store. The history
// is an operator-facing audit trail only: content selection never reads it,
// so each run stays an independent random draw.
type Repository interface {
	// SavePost records a successfully submitted post.
	SavePost(ctx context.Context, record domain.PostRecord) error

	// RecentPosts returns up to limit history entries, newest first.
	RecentPosts(ctx context.Context, limit int) ([]domain.PostRecord, error)

	// Close gracefully shuts down the repository connection.
	Close() error
}
