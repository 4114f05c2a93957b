package user

import (
	"time"
)

type RoleModel struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"uniqueIndex;size:16;not null"`
}

func (RoleModel) TableName() string { return "roles" }

type UserModel struct {
	ID           uint   `gorm:"primaryKey"`
	FirstName    string `gorm:"size:64"`
	LastName     string `gorm:"size:64"`
	Age          int
	Country      string `gorm:"size:64"`
	Email        string `gorm:"uniqueIndex;size:191;not null"`
	PasswordHash string `gorm:"column:password;size:100;not null"`
	RoleID       uint   `gorm:"not null;index"`
	Img          string `gorm:"size:512"`
	IsDeleted    bool   `gorm:"not null;default:false;index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

// FollowModel is the directed edge following_user_id -> followed_user_id.
// The pair is unique; unfollow flips IsDeleted instead of removing the row.
type FollowModel struct {
	ID              uint `gorm:"primaryKey"`
	FollowingUserID uint `gorm:"not null;uniqueIndex:idx_follows_pair,priority:1"`
	FollowedUserID  uint `gorm:"not null;uniqueIndex:idx_follows_pair,priority:2;index"`
	IsDeleted       bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (FollowModel) TableName() string { return "follows" }

type PostModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	Content   string `gorm:"type:text"`
	IsDeleted bool   `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PostModel) TableName() string { return "posts" }

// Models lists every table in migration order.
func Models() []any {
	return []any{&RoleModel{}, &UserModel{}, &FollowModel{}, &PostModel{}}
}
