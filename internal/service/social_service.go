package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"go-gin-social-graph/internal/core/cache"
	"go-gin-social-graph/internal/domain"
)

// SocialService maintains the directed follow graph.
type SocialService struct {
	users   domain.UserRepository
	follows domain.FollowRepository
	cache   cache.Store
	log     *zap.Logger
}

func NewSocialService(users domain.UserRepository, follows domain.FollowRepository, c cache.Store, log *zap.Logger) *SocialService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SocialService{users: users, follows: follows, cache: c, log: log}
}

// Follow makes actorID follow targetID. Following again is a no-op, and
// following after an unfollow revives the edge. Self-follow is not checked
// here; callers that care must reject it.
func (s *SocialService) Follow(ctx context.Context, actorID, targetID uint) error {
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return internal("find target", err)
	}
	if err := s.follows.Follow(ctx, actorID, targetID); err != nil {
		return internal("follow", err)
	}
	followEvents.WithLabelValues("follow").Inc()
	dropProfiles(ctx, s.cache, s.log, actorID, targetID)
	return nil
}

// Unfollow soft-deletes the edge. No live edge is success too.
func (s *SocialService) Unfollow(ctx context.Context, actorID, targetID uint) error {
	n, err := s.follows.Unfollow(ctx, actorID, targetID)
	if err != nil {
		return internal("unfollow", err)
	}
	if n > 0 {
		followEvents.WithLabelValues("unfollow").Inc()
		dropProfiles(ctx, s.cache, s.log, actorID, targetID)
	}
	return nil
}

func (s *SocialService) ListFollowers(ctx context.Context, userID uint) ([]domain.UserSummary, error) {
	out, err := s.follows.Followers(ctx, userID)
	if err != nil {
		return nil, internal("list followers", err)
	}
	return out, nil
}

func (s *SocialService) ListFollowing(ctx context.Context, userID uint) ([]domain.UserSummary, error) {
	out, err := s.follows.Following(ctx, userID)
	if err != nil {
		return nil, internal("list following", err)
	}
	return out, nil
}
