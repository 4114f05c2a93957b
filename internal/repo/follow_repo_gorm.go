package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-social-graph/internal/domain"
	"go-gin-social-graph/internal/feature/user"
)

type FollowRepo struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewFollowRepo(db *gorm.DB, timeout time.Duration) *FollowRepo {
	return &FollowRepo{db: db, timeout: timeout}
}

var _ domain.FollowRepository = (*FollowRepo)(nil)

func (r *FollowRepo) Follow(ctx context.Context, actorID, targetID uint) error {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	edge := user.FollowModel{FollowingUserID: actorID, FollowedUserID: targetID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "following_user_id"}, {Name: "followed_user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"is_deleted": false,
				"updated_at": time.Now(),
			}),
		}).
		Create(&edge).Error
}

func (r *FollowRepo) Unfollow(ctx context.Context, actorID, targetID uint) (int64, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&user.FollowModel{}).
		Where("following_user_id = ? AND followed_user_id = ? AND is_deleted = ?", actorID, targetID, false).
		Update("is_deleted", true)
	return res.RowsAffected, res.Error
}

// edges lists the live counterparts of userID. own is the edge column that
// must equal userID, other is the column joined to users.
func (r *FollowRepo) edges(ctx context.Context, userID uint, own, other string) ([]domain.UserSummary, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	out := []domain.UserSummary{}
	err := r.db.WithContext(ctx).
		Table("follows AS f").
		Select("u.id, u.first_name, u.last_name").
		Joins("JOIN users AS u ON u.id = f."+other).
		Where("f."+own+" = ?", userID).
		Scopes(alive("f"), alive("u")).
		Order("f.id").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.UserSummary{}
	}
	return out, nil
}

func (r *FollowRepo) Followers(ctx context.Context, userID uint) ([]domain.UserSummary, error) {
	return r.edges(ctx, userID, "followed_user_id", "following_user_id")
}

func (r *FollowRepo) Following(ctx context.Context, userID uint) ([]domain.UserSummary, error) {
	return r.edges(ctx, userID, "following_user_id", "followed_user_id")
}
