package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-gin-social-graph/internal/core/auth"
	"go-gin-social-graph/internal/core/cache"
	"go-gin-social-graph/internal/domain"
	"go-gin-social-graph/pkg/utils"
)

type UpdateInput struct {
	FirstName *string
	LastName  *string
	Age       *int
	Country   *string
	Email     *string
	Password  *string
	Img       *string
}

type UserService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	cache  cache.Store
	ttl    time.Duration
	log    *zap.Logger
}

// NewUserService builds the profile service. c may be nil to read through
// to the store on every call.
func NewUserService(users domain.UserRepository, hasher PasswordHasher, c cache.Store, ttl time.Duration, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, hasher: hasher, cache: c, ttl: ttl, log: log}
}

func (s *UserService) Profile(ctx context.Context, id uint) (*domain.Profile, error) {
	var (
		p   *domain.Profile
		err error
	)
	if s.cache != nil {
		p, err = cache.GetOrLoadJSON(s.cache, ctx, profileKey(id), s.ttl, func(ctx context.Context) (*domain.Profile, error) {
			return s.users.Profile(ctx, id)
		})
	} else {
		p, err = s.users.Profile(ctx, id)
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, domain.ErrNotFound
	case err != nil:
		return nil, internal("load profile", err)
	case p == nil:
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return nil, internal("list users", err)
	}
	return us, nil
}

func (s *UserService) Search(ctx context.Context, name string) ([]domain.User, error) {
	us, err := s.users.SearchByFirstName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, internal("search users", err)
	}
	return us, nil
}

func canManage(p *auth.Principal, id uint) bool {
	return p != nil && (p.UserID == id || p.HasRole(domain.RoleAdmin))
}

// Update applies the non-nil fields of in. Only the owner or an ADMIN may.
func (s *UserService) Update(ctx context.Context, p *auth.Principal, id uint, in UpdateInput) (*domain.User, error) {
	if !canManage(p, id) {
		return nil, domain.ErrForbidden
	}
	patch := domain.UserPatch{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Age:       in.Age,
		Country:   in.Country,
		Img:       in.Img,
	}
	if in.Email != nil {
		e := utils.NormalizeEmail(*in.Email)
		patch.Email = &e
	}
	if in.Password != nil {
		h, err := s.hasher.Hash(ctx, *in.Password)
		if err != nil {
			return nil, internal("hash password", err)
		}
		patch.PasswordHash = &h
	}
	u, err := s.users.Update(ctx, id, patch)
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrDuplicateEmail):
		return nil, err
	case err != nil:
		return nil, internal("update user", err)
	}
	dropProfiles(ctx, s.cache, s.log, id)
	return u, nil
}

// Delete soft-deletes the account. Only the owner or an ADMIN may.
func (s *UserService) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	if !canManage(p, id) {
		return domain.ErrForbidden
	}
	err := s.users.SoftDelete(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return err
	case err != nil:
		return internal("delete user", err)
	}
	dropProfiles(ctx, s.cache, s.log, id)
	s.log.Info("user soft-deleted", zap.Uint("user_id", id), zap.Uint("by", p.UserID))
	return nil
}
