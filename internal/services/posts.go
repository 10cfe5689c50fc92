package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/evofit/evofit-backend/internal/metrics"
	"github.com/evofit/evofit-backend/internal/models"
	"github.com/evofit/evofit-backend/internal/store"
)

// PostService runs the shared community feed.
type PostService struct {
	posts   store.PostStore
	users   store.UserStore
	hub     *FeedHub
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewPostService(posts store.PostStore, users store.UserStore, hub *FeedHub, log logrus.FieldLogger, m *metrics.Metrics) *PostService {
	return &PostService{posts: posts, users: users, hub: hub, log: log, metrics: m, now: time.Now}
}

// Create stores the post with zero likes and announces it on the live feed.
func (s *PostService) Create(ctx context.Context, owner string, req models.CreatePostRequest) (*models.Post, error) {
	if err := validatePayload(&req); err != nil {
		return nil, err
	}
	post := req.ToPost(owner, s.now().UTC())
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.metrics.PostCreated()

	if s.hub != nil {
		feedPost, err := s.withAuthors(ctx, []models.Post{*post})
		if err != nil {
			s.log.WithError(err).Warn("failed to load author for live feed event")
		} else {
			s.hub.Publish(ctx, FeedEvent{Type: EventPostCreated, Post: &feedPost[0]})
		}
	}
	return post, nil
}

// Feed returns the newest posts of all users with each author's current
// name and username.
func (s *PostService) Feed(ctx context.Context) ([]models.FeedPost, error) {
	posts, err := s.posts.ListRecentPosts(ctx, models.FeedPageSize)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return s.withAuthors(ctx, posts)
}

// withAuthors attaches the author snapshot. Posts whose author no longer
// exists get a nil User.
func (s *PostService) withAuthors(ctx context.Context, posts []models.Post) ([]models.FeedPost, error) {
	seen := make(map[string]struct{}, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.UserID]; !ok {
			seen[p.UserID] = struct{}{}
			ids = append(ids, p.UserID)
		}
	}

	authors, err := s.users.GetAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}

	out := make([]models.FeedPost, 0, len(posts))
	for _, p := range posts {
		fp := models.FeedPost{Post: p}
		if a, ok := authors[p.UserID]; ok {
			author := a
			fp.User = &author
		}
		out = append(out, fp)
	}
	return out, nil
}

// Like adds one like atomically. Any authenticated user may like any post,
// any number of times.
func (s *PostService) Like(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.IncrementLikes(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("like post: %w", err)
	}
	s.metrics.PostLiked()

	if s.hub != nil {
		s.hub.Publish(ctx, FeedEvent{Type: EventPostLiked, PostID: post.ID, Likes: post.Likes})
	}
	return post, nil
}
