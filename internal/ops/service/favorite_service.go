package service

import (
	"context"

	"github.com/akzente/fieldops/internal/ops/repository"
)

// FavoriteService maintains the role-scoped favorite overlay. It never
// reads or writes report lifecycle fields.
type FavoriteService struct {
	favoriteRepo *repository.FavoriteRepository
	reportRepo   *repository.ReportRepository
}

func NewFavoriteService(favoriteRepo *repository.FavoriteRepository, reportRepo *repository.ReportRepository) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		reportRepo:   reportRepo,
	}
}

// Toggle flips the flag for one (role, actor) pair and returns the new
// value for that actor.
func (s *FavoriteService) Toggle(ctx context.Context, reportID, actorRole, actorID string) (bool, error) {
	if _, err := s.reportRepo.FindByID(ctx, reportID); err != nil {
		return false, err
	}
	return s.favoriteRepo.Toggle(ctx, reportID, actorRole, actorID)
}

// IsFavorite reports the current flag for one actor.
func (s *FavoriteService) IsFavorite(ctx context.Context, reportID, actorRole, actorID string) (bool, error) {
	return s.favoriteRepo.IsFavorite(ctx, reportID, actorRole, actorID)
}
