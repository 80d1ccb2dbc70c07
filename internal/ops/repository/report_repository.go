package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akzente/fieldops/internal/ops/entity"
	"gorm.io/gorm"
)

// ReportRepository persists reports. Status mutations go through
// UpdateStatusIf so that concurrent transitions resolve to exactly one
// winner.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// FindByID looks up a report.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*entity.Report, error) {
	var report entity.Report
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// Create inserts a new report.
func (r *ReportRepository) Create(ctx context.Context, report *entity.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// FindAll lists reports with pagination and optional filters.
func (r *ReportRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Report, int64, error) {
	var items []entity.Report
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Report{})

	if projectID := filters["project_id"]; projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if branchID := filters["branch_id"]; branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if merchandiserID := filters["merchandiser_id"]; merchandiserID != "" {
		query = query.Where("merchandiser_id = ?", merchandiserID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if group := filters["status_group"]; group != "" {
		query = query.Where("status IN ?", entity.StatusesInGroup(group))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// ListByProject returns every report of a project, newest first.
func (r *ReportRepository) ListByProject(ctx context.Context, projectID string) ([]entity.Report, error) {
	var reports []entity.Report
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

// ListDueCandidates returns reports whose deadline has elapsed and that are
// neither terminal nor already due. Reports already claimed by a previous
// tick are excluded by the status filter, which makes re-scans idempotent.
func (r *ReportRepository) ListDueCandidates(ctx context.Context, now time.Time) ([]entity.Report, error) {
	var reports []entity.Report
	err := r.db.WithContext(ctx).
		Where("report_to IS NOT NULL AND report_to < ?", now).
		Where("status NOT IN ?", []string{entity.StatusValid, entity.StatusDue}).
		Order("report_to ASC").
		Find(&reports).Error
	return reports, err
}

// UpdateStatusIf performs the conditional status write: the row is updated
// only when both the status and updated_at still match what the caller read.
// Returns (false, nil) when the row was changed underneath: the caller lost
// the race and must not treat the report as transitioned.
func (r *ReportRepository) UpdateStatusIf(ctx context.Context, id, expectedStatus string, expectedUpdatedAt time.Time, newStatus string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Report{}).
		Where("id = ? AND status = ? AND updated_at = ?", id, expectedStatus, expectedUpdatedAt).
		Updates(map[string]interface{}{
			"status":     newStatus,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("conditional status update: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// UpdateOutcome writes the merchandiser outcome fields. Lifecycle status is
// deliberately not part of this update. Nil fields are left alone; an empty
// feedback string clears it. A request carrying nothing writes nothing, so
// updated_at stays put and no concurrent claim is invalidated.
func (r *ReportRepository) UpdateOutcome(ctx context.Context, id string, isSpecCompliant *bool, feedback *string) error {
	updates := map[string]interface{}{}
	if isSpecCompliant != nil {
		updates["is_spec_compliant"] = *isSpecCompliant
	}
	if feedback != nil {
		updates["feedback"] = *feedback
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return r.db.WithContext(ctx).
		Model(&entity.Report{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// AssignMerchandiser sets the assigned merchandiser without touching status.
func (r *ReportRepository) AssignMerchandiser(ctx context.Context, id, merchandiserID string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Report{}).
		Where("id = ?", id).
		Update("merchandiser_id", merchandiserID).Error
}

// GenerateCode produces the next report code.
func (r *ReportRepository) GenerateCode(ctx context.Context) (string, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Report{}).Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("RPT-%d-%05d", time.Now().Year(), count+1), nil
}

// AddPhoto records an uploaded photo.
func (r *ReportRepository) AddPhoto(ctx context.Context, photo *entity.ReportPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

// ListPhotos returns a report's photos, oldest first.
func (r *ReportRepository) ListPhotos(ctx context.Context, reportID string) ([]entity.ReportPhoto, error) {
	var photos []entity.ReportPhoto
	err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&photos).Error
	return photos, err
}
