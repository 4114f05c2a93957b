package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"go-gin-social-graph/internal/domain"
)

// --- in-memory stores ---

type fakeUsers struct {
	mu       sync.Mutex
	nextID   uint
	byID     map[uint]*domain.User
	err      error // forced failure for every call
	profiles int   // Profile calls
	follows  *fakeFollows
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uint]*domain.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, x := range f.byID {
		if x.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) live(id uint) (*domain.User, bool) {
	u, ok := f.byID[id]
	if !ok || u.IsDeleted {
		return nil, false
	}
	return u, true
}

func (f *fakeUsers) FindByID(_ context.Context, id uint) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.live(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Email == email && !u.IsDeleted {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) Profile(ctx context.Context, id uint) (*domain.Profile, error) {
	f.mu.Lock()
	f.profiles++
	u, ok := f.live(id)
	f.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	p := &domain.Profile{ID: u.ID, FirstName: u.FirstName, Email: u.Email, Role: u.Role, RoleID: u.RoleID, Posts: []uint{}}
	if f.follows != nil {
		followers, _ := f.follows.Followers(ctx, id)
		following, _ := f.follows.Following(ctx, id)
		p.FollowersCount, p.FollowingCount = int64(len(followers)), int64(len(following))
	}
	return p, nil
}

func (f *fakeUsers) List(context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.byID {
		if !u.IsDeleted {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) SearchByFirstName(_ context.Context, prefix string) ([]domain.User, error) {
	all, _ := f.List(context.Background())
	var out []domain.User
	for _, u := range all {
		if strings.HasPrefix(u.FirstName, prefix) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, id uint, p domain.UserPatch) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.live(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.Email != nil {
		for _, x := range f.byID {
			if x.ID != id && x.Email == *p.Email {
				return nil, domain.ErrDuplicateEmail
			}
		}
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.Country != nil {
		u.Country = *p.Country
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) SoftDelete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.live(id)
	if !ok {
		return domain.ErrNotFound
	}
	u.IsDeleted = true
	return nil
}

type edge struct {
	from, to uint
	deleted  bool
}

type fakeFollows struct {
	mu    sync.Mutex
	edges []*edge
	users *fakeUsers
	err   error
}

func (f *fakeFollows) Follow(_ context.Context, a, b uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, e := range f.edges {
		if e.from == a && e.to == b {
			e.deleted = false
			return nil
		}
	}
	f.edges = append(f.edges, &edge{from: a, to: b})
	return nil
}

func (f *fakeFollows) Unfollow(_ context.Context, a, b uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, e := range f.edges {
		if e.from == a && e.to == b && !e.deleted {
			e.deleted = true
			n++
		}
	}
	return n, nil
}

func (f *fakeFollows) list(match func(*edge) (uint, bool)) []domain.UserSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.UserSummary{}
	for _, e := range f.edges {
		if e.deleted {
			continue
		}
		if id, ok := match(e); ok {
			s := domain.UserSummary{ID: id}
			if f.users != nil {
				if u, ok := f.users.byID[id]; ok {
					s.FirstName, s.LastName = u.FirstName, u.LastName
				}
			}
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeFollows) Followers(_ context.Context, id uint) ([]domain.UserSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(e *edge) (uint, bool) { return e.from, e.to == id }), nil
}

func (f *fakeFollows) Following(_ context.Context, id uint) ([]domain.UserSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(e *edge) (uint, bool) { return e.to, e.from == id }), nil
}

// --- capabilities ---

// plainHasher stores "hashed:"+pw and counts Verify calls.
type plainHasher struct {
	mu       sync.Mutex
	verifies int
	hashErr  error
}

func (h *plainHasher) Hash(_ context.Context, pw string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + pw, nil
}

func (h *plainHasher) Verify(_ context.Context, pw, hashed string) (bool, error) {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	if !strings.HasPrefix(hashed, "hashed:") {
		return false, errors.New("malformed hash")
	}
	return hashed == "hashed:"+pw, nil
}

type stubTokens struct {
	err error
}

func (s stubTokens) Issue(userID uint, role domain.Role, _ uint) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "tok-" + string(role), nil
}
