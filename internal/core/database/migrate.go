package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-social-graph/internal/domain"
	"go-gin-social-graph/internal/feature/user"
)

// Migrate creates or updates the schema and seeds the closed role set.
// Safe to run on every start.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(user.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return SeedRoles(ctx, db)
}

func SeedRoles(ctx context.Context, db *gorm.DB) error {
	rows := make([]user.RoleModel, 0, len(domain.Roles()))
	for _, r := range domain.Roles() {
		rows = append(rows, user.RoleModel{ID: r.ID(), Name: string(r)})
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	return nil
}
