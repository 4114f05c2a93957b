package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"go-gin-social-graph/internal/core/cache"
	"go-gin-social-graph/internal/domain"
)

type PasswordHasher interface {
	Hash(ctx context.Context, pw string) (string, error)
	Verify(ctx context.Context, pw, hashed string) (bool, error)
}

type TokenIssuer interface {
	Issue(userID uint, role domain.Role, roleID uint) (string, error)
}

// internal marks err as an unexpected failure while keeping the cause for logs.
func internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrInternal, op, err)
}

func profileKey(id uint) string { return "profile:" + strconv.FormatUint(uint64(id), 10) }

// dropProfiles invalidates cached profiles. Failures only cost freshness
// until the TTL expires, so they are logged and not returned.
func dropProfiles(ctx context.Context, c cache.Store, log *zap.Logger, ids ...uint) {
	if c == nil {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, profileKey(id))
	}
	if err := c.Delete(ctx, keys...); err != nil {
		log.Warn("profile cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
