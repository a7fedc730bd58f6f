package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/movie-favorites/internal/favorite/domain"
)

// GormFavoriteRepository implements FavoriteRepository using GORM
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository creates a new GORM favorite repository
func NewGormFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// AutoMigrate creates or updates the favorites table
func (r *GormFavoriteRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.FavoriteRow{})
}

// ListByUser retrieves a user's favorites, most recently updated first
func (r *GormFavoriteRepository) ListByUser(ctx context.Context, userID string) ([]domain.FavoriteRow, error) {
	rows := []domain.FavoriteRow{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return rows, nil
}

// Upsert inserts the row or overwrites the existing (user_id, movie_id) row
func (r *GormFavoriteRepository) Upsert(ctx context.Context, row *domain.FavoriteRow) (*domain.FavoriteRow, error) {
	var stored domain.FavoriteRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "poster_path", "release_date", "overview", "rating", "note", "updated_at",
			}),
		}).Create(row).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ? AND movie_id = ?", row.UserID, row.MovieID).First(&stored).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save favorite: %w", err)
	}
	return &stored, nil
}

// Patch updates rating and/or note of an existing row
func (r *GormFavoriteRepository) Patch(ctx context.Context, userID string, movieID int64, patch domain.Patch) (*domain.FavoriteRow, error) {
	var row domain.FavoriteRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND movie_id = ?", userID, movieID).First(&row).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.Rating != nil {
			updates["rating"] = *patch.Rating
		}
		if patch.Note != nil {
			if *patch.Note == "" {
				updates["note"] = nil
			} else {
				updates["note"] = *patch.Note
			}
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&row).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&row, row.ID).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update favorite: %w", err)
	}
	return &row, nil
}

// Delete removes a favorite
func (r *GormFavoriteRepository) Delete(ctx context.Context, userID string, movieID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&domain.FavoriteRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the number of stored favorites across all users
func (r *GormFavoriteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FavoriteRow{}).Count(&count).Error
	return count, err
}
