package ports

import (
	"context"

	"github.com/wildlander/launcher/internal/core/domain/feed"
)

// AnnouncementService tells subscribers about newly published posts.
type AnnouncementService interface {
	AnnouncePost(ctx context.Context, post *feed.Post) error
}
