package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/core/ports"
)

// FeedService serves and edits the posts and patrons behind /api/patreon.
type FeedService struct {
	repo     ports.FeedRepository
	announce ports.AnnouncementService
	logger   *logrus.Logger
	now      func() time.Time
}

// NewFeedService creates the backend feed service. announce may be nil.
func NewFeedService(repo ports.FeedRepository, announce ports.AnnouncementService, logger *logrus.Logger) *FeedService {
	return &FeedService{repo: repo, announce: announce, logger: logger, now: time.Now}
}

func (s *FeedService) Snapshot(ctx context.Context) (*feed.PatreonResponse, error) {
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	patrons, err := s.repo.ListPatrons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patrons: %w", err)
	}
	if posts == nil {
		posts = []feed.Post{}
	}
	if patrons == nil {
		patrons = []feed.Patron{}
	}
	return &feed.PatreonResponse{Posts: posts, Patrons: patrons}, nil
}

func (s *FeedService) LastUpdated(ctx context.Context) (feed.Freshness, error) {
	at, err := s.repo.LastUpdated(ctx)
	if err != nil {
		return feed.Freshness{}, fmt.Errorf("failed to read last updated: %w", err)
	}
	return feed.FreshnessAt(at), nil
}

func (s *FeedService) PublishPost(ctx context.Context, req *feed.CreatePostRequest) (*feed.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	post := &feed.Post{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		Published: now.Truncate(time.Second),
		URL:       req.URL,
		Tags:      req.Tags,
	}
	if req.Published != nil {
		post.Published = req.Published.UTC()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"title": post.Title}).WithError(err).Error("failed to create post in repo")
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	if err := s.touch(ctx, now); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"id": post.ID, "title": post.Title}).Info("post published")
	}
	if s.announce != nil {
		if err := s.announce.AnnouncePost(ctx, post); err != nil && s.logger != nil {
			s.logger.WithFields(logrus.Fields{"id": post.ID}).WithError(err).Warn("post announcement failed")
		}
	}
	return post, nil
}

func (s *FeedService) DeletePost(ctx context.Context, id string) error {
	if err := s.repo.DeletePost(ctx, id); err != nil {
		return err
	}
	if err := s.touch(ctx, s.now()); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"id": id}).Info("post deleted")
	}
	return nil
}

func (s *FeedService) ReplacePatrons(ctx context.Context, patrons []feed.Patron) error {
	for i, p := range patrons {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("patron %d: %w", i, err)
		}
	}
	if err := s.repo.ReplacePatrons(ctx, patrons); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Error("failed to replace patrons in repo")
		}
		return fmt.Errorf("failed to replace patrons: %w", err)
	}
	if err := s.touch(ctx, s.now()); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"count": len(patrons)}).Info("patron list replaced")
	}
	return nil
}

// touch bumps the last-updated marker the launcher's gate compares against.
func (s *FeedService) touch(ctx context.Context, at time.Time) error {
	if err := s.repo.Touch(ctx, at); err != nil {
		return fmt.Errorf("failed to bump last updated: %w", err)
	}
	return nil
}

var _ ports.FeedService = (*FeedService)(nil)
