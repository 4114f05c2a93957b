package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"go-gin-social-graph/internal/domain"
	"go-gin-social-graph/internal/feature/user"
)

type UserRepo struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewUserRepo(db *gorm.DB, timeout time.Duration) *UserRepo {
	return &UserRepo{db: db, timeout: timeout}
}

var _ domain.UserRepository = (*UserRepo)(nil)

const userColumns = `u.id, u.first_name, u.last_name, u.age, u.country, u.email, u.password,
	u.role_id, r.name AS role_name, u.img, u.is_deleted, u.created_at`

type userRow struct {
	ID        uint
	FirstName string
	LastName  string
	Age       int
	Country   string
	Email     string
	Password  string
	RoleID    uint
	RoleName  string
	Img       string
	IsDeleted bool
	CreatedAt time.Time
}

func (row userRow) toDomain() (domain.User, error) {
	role, err := domain.ParseRole(row.RoleName)
	if err != nil {
		return domain.User{}, fmt.Errorf("user %d: role %q: %w", row.ID, row.RoleName, err)
	}
	return domain.User{
		ID:           row.ID,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Age:          row.Age,
		Country:      row.Country,
		Email:        row.Email,
		PasswordHash: row.Password,
		Role:         role,
		RoleID:       row.RoleID,
		Img:          row.Img,
		IsDeleted:    row.IsDeleted,
		CreatedAt:    row.CreatedAt,
	}, nil
}

// liveUsers selects non-deleted users joined with their role.
func (r *UserRepo) liveUsers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("users AS u").
		Select(userColumns).
		Joins("JOIN roles AS r ON r.id = u.role_id").
		Scopes(alive("u"))
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	m := user.UserModel{
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Age:          u.Age,
		Country:      u.Country,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		RoleID:       u.RoleID,
		Img:          u.Img,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	u.ID = m.ID
	u.CreatedAt = m.CreatedAt
	u.IsDeleted = false
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	var row userRow
	res := r.liveUsers(ctx).Where(where, arg).Limit(1).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	u, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, "u.id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "u.email = ?", email)
}

type profileRow struct {
	ID             uint
	FirstName      string
	LastName       string
	Age            int
	Country        string
	Email          string
	Img            string
	RoleName       string
	RoleID         uint
	FollowersCount int64
	FollowingCount int64
}

// Counterpart users are joined inside the counters so a soft-deleted
// follower is not counted, matching what Followers/Following return.
const profileColumns = `u.id, u.first_name, u.last_name, u.age, u.country, u.email, u.img,
	r.name AS role_name, r.id AS role_id,
	(SELECT COUNT(*) FROM follows f1 JOIN users fu1 ON fu1.id = f1.following_user_id
		WHERE f1.followed_user_id = u.id AND f1.is_deleted = ? AND fu1.is_deleted = ?) AS followers_count,
	(SELECT COUNT(*) FROM follows f2 JOIN users fu2 ON fu2.id = f2.followed_user_id
		WHERE f2.following_user_id = u.id AND f2.is_deleted = ? AND fu2.is_deleted = ?) AS following_count`

func (r *UserRepo) Profile(ctx context.Context, id uint) (*domain.Profile, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	var row profileRow
	res := r.db.WithContext(ctx).
		Table("users AS u").
		Select(profileColumns, false, false, false, false).
		Joins("JOIN roles AS r ON r.id = u.role_id").
		Where("u.id = ?", id).
		Scopes(alive("u")).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	role, err := domain.ParseRole(row.RoleName)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", row.ID, err)
	}

	posts := []uint{}
	if err := r.db.WithContext(ctx).
		Table("posts AS p").
		Where("p.user_id = ?", id).
		Scopes(alive("p")).
		Order("p.id").
		Pluck("p.id", &posts).Error; err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []uint{}
	}

	return &domain.Profile{
		ID:             row.ID,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		Age:            row.Age,
		Country:        row.Country,
		Email:          row.Email,
		Img:            row.Img,
		Role:           role,
		RoleID:         row.RoleID,
		FollowersCount: row.FollowersCount,
		FollowingCount: row.FollowingCount,
		Posts:          posts,
	}, nil
}

func (r *UserRepo) scanUsers(q *gorm.DB) ([]domain.User, error) {
	var rows []userRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		u, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()
	return r.scanUsers(r.liveUsers(ctx).Order("u.created_at DESC, u.id DESC"))
}

func (r *UserRepo) SearchByFirstName(ctx context.Context, prefix string) ([]domain.User, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()
	return r.scanUsers(r.liveUsers(ctx).Where("u.first_name LIKE ?", prefix+"%").Order("u.id"))
}

func (r *UserRepo) Update(ctx context.Context, id uint, p domain.UserPatch) (*domain.User, error) {
	set := map[string]any{}
	if p.FirstName != nil {
		set["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		set["last_name"] = *p.LastName
	}
	if p.Age != nil {
		set["age"] = *p.Age
	}
	if p.Country != nil {
		set["country"] = *p.Country
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.PasswordHash != nil {
		set["password"] = *p.PasswordHash
	}
	if p.Img != nil {
		set["img"] = *p.Img
	}
	if len(set) > 0 {
		tctx, cancel := bounded(ctx, r.timeout)
		res := r.db.WithContext(tctx).
			Model(&user.UserModel{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(set)
		cancel()
		if res.Error != nil {
			if isDupKey(res.Error) {
				return nil, domain.ErrDuplicateEmail
			}
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, domain.ErrNotFound
		}
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepo) SoftDelete(ctx context.Context, id uint) error {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&user.UserModel{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
