package domain

import (
	"context"
	"time"
)

type User struct {
	ID           uint      `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Age          int       `json:"age"`
	Country      string    `json:"country"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	RoleID       uint      `json:"role_id"`
	Img          string    `json:"img"`
	IsDeleted    bool      `json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is the counterpart row returned by follower/following lists.
type UserSummary struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Profile is the aggregate read of a user together with its graph counters
// and the ids of its live posts.
type Profile struct {
	ID             uint   `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Age            int    `json:"age"`
	Country        string `json:"country"`
	Email          string `json:"email"`
	Img            string `json:"img"`
	Role           Role   `json:"role"`
	RoleID         uint   `json:"role_id"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	Posts          []uint `json:"posts"`
}

// UserPatch carries the fields of a profile update; nil keeps the stored value.
type UserPatch struct {
	FirstName    *string
	LastName     *string
	Age          *int
	Country      *string
	Email        *string
	PasswordHash *string
	Img          *string
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Profile(ctx context.Context, id uint) (*Profile, error)
	List(ctx context.Context) ([]User, error)
	SearchByFirstName(ctx context.Context, prefix string) ([]User, error)
	Update(ctx context.Context, id uint, p UserPatch) (*User, error)
	SoftDelete(ctx context.Context, id uint) error
}

type FollowRepository interface {
	// Follow creates the (actor, target) edge or revives a soft-deleted one.
	Follow(ctx context.Context, actorID, targetID uint) error
	// Unfollow soft-deletes the live edge and reports how many rows changed.
	Unfollow(ctx context.Context, actorID, targetID uint) (int64, error)
	Followers(ctx context.Context, userID uint) ([]UserSummary, error)
	Following(ctx context.Context, userID uint) ([]UserSummary, error)
}
