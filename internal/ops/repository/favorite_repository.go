package repository

import (
	"context"
	"errors"
	"time"

	"github.com/akzente/fieldops/internal/ops/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FavoriteRepository persists the per-actor favorite overlay. Rows are keyed
// (report_id, actor_role, actor_id); different actors never contend.
type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Toggle flips the favorite flag for one (role, actor) pair and returns the
// new value. Only the report_favorites table is touched.
func (r *FavoriteRepository) Toggle(ctx context.Context, reportID, actorRole, actorID string) (bool, error) {
	var existing entity.ReportFavorite
	err := r.db.WithContext(ctx).
		Where("report_id = ? AND actor_role = ? AND actor_id = ?", reportID, actorRole, actorID).
		First(&existing).Error

	if err == nil {
		if err := r.db.WithContext(ctx).Delete(&existing).Error; err != nil {
			return true, err
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	fav := &entity.ReportFavorite{
		ID:        uuid.New().String()[:32],
		ReportID:  reportID,
		ActorRole: actorRole,
		ActorID:   actorID,
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(fav).Error; err != nil {
		return false, err
	}
	return true, nil
}

// IsFavorite reports whether the actor has favorited the report.
func (r *FavoriteRepository) IsFavorite(ctx context.Context, reportID, actorRole, actorID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ReportFavorite{}).
		Where("report_id = ? AND actor_role = ? AND actor_id = ?", reportID, actorRole, actorID).
		Count(&count).Error
	return count > 0, err
}

// ListByActor returns the report IDs an actor has favorited.
func (r *FavoriteRepository) ListByActor(ctx context.Context, actorRole, actorID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.ReportFavorite{}).
		Where("actor_role = ? AND actor_id = ?", actorRole, actorID).
		Pluck("report_id", &ids).Error
	return ids, err
}
