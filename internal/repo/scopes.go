package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// alive filters out soft-deleted rows of the table known as alias in the
// current statement. Every joined table needs its own alive scope.
func alive(alias string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(alias+".is_deleted = ?", false)
	}
}

// bounded gives a store call its own deadline when the caller has none shorter.
func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
