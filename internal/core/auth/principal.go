package auth

import (
	"context"
	"time"

	"go-gin-social-graph/internal/domain"
)

// Principal is the verified identity of the caller for one request.
type Principal struct {
	UserID    uint
	Role      domain.Role
	RoleID    uint
	ExpiresAt time.Time
}

func (p *Principal) HasRole(roles ...domain.Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
