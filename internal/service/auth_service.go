package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"go-gin-social-graph/internal/domain"
	"go-gin-social-graph/pkg/utils"
)

type RegisterInput struct {
	FirstName string
	LastName  string
	Age       int
	Country   string
	Email     string
	Password  string
	RoleID    uint
	Img       string
}

type LoginResult struct {
	Token     string      `json:"token"`
	UserID    uint        `json:"userId"`
	FirstName string      `json:"first_name"`
	Img       string      `json:"img"`
	Role      domain.Role `json:"role"`
}

type AuthService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	log    *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users domain.UserRepository, hasher PasswordHasher, tokens TokenIssuer, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log}
}

// Register creates a USER (or any non-admin role) account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.RoleID == 0 {
		in.RoleID = domain.RoleUserID
	}
	role, err := domain.RoleByID(in.RoleID)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleAdmin {
		authEvents.WithLabelValues("register", "forbidden").Inc()
		return nil, domain.ErrForbidden
	}
	return s.create(ctx, in, role)
}

// RegisterAdmin is the operator path for creating ADMIN accounts.
func (s *AuthService) RegisterAdmin(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.create(ctx, in, domain.RoleAdmin)
}

func (s *AuthService) create(ctx context.Context, in RegisterInput, role domain.Role) (*domain.User, error) {
	hashed, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, internal("hash password", err)
	}
	u := &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Age:          in.Age,
		Country:      in.Country,
		Email:        utils.NormalizeEmail(in.Email),
		PasswordHash: hashed,
		Role:         role,
		RoleID:       role.ID(),
		Img:          in.Img,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			authEvents.WithLabelValues("register", "duplicate").Inc()
			return nil, domain.ErrDuplicateEmail
		}
		authEvents.WithLabelValues("register", "error").Inc()
		return nil, internal("create user", err)
	}
	authEvents.WithLabelValues("register", "ok").Inc()
	s.log.Info("user registered", zap.Uint("user_id", u.ID), zap.String("role", string(role)))
	return u, nil
}

// Login answers an unknown email and a wrong password identically, and
// still pays for one bcrypt comparison when the email is unknown.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.compareDummy(ctx, password)
		authEvents.WithLabelValues("login", "invalid").Inc()
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		authEvents.WithLabelValues("login", "error").Inc()
		return nil, internal("find user", err)
	}

	ok, err := s.hasher.Verify(ctx, password, u.PasswordHash)
	if err != nil {
		authEvents.WithLabelValues("login", "error").Inc()
		return nil, internal("verify password", err)
	}
	if !ok {
		authEvents.WithLabelValues("login", "invalid").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(u.ID, u.Role, u.RoleID)
	if err != nil {
		authEvents.WithLabelValues("login", "error").Inc()
		return nil, internal("issue token", err)
	}
	authEvents.WithLabelValues("login", "ok").Inc()
	return &LoginResult{
		Token:     tok,
		UserID:    u.ID,
		FirstName: u.FirstName,
		Img:       u.Img,
		Role:      u.Role,
	}, nil
}

func (s *AuthService) compareDummy(ctx context.Context, password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(context.Background(), "dummy-password-for-timing")
		if err != nil {
			s.log.Warn("dummy hash unavailable", zap.Error(err))
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(ctx, password, s.dummyHash)
	}
}
