package service

import (
	"context"
	"fmt"

	"github.com/akzente/fieldops/internal/ops/entity"
	"github.com/akzente/fieldops/internal/ops/repository"
	"gorm.io/gorm"
)

// DashboardService computes observer-facing report counts. Counts are
// recomputed per call from raw status, bucketed through the shared status
// grouping, so they can never drift from the lifecycle state.
type DashboardService struct {
	db          *gorm.DB
	projectRepo *repository.ProjectRepository
}

func NewDashboardService(db *gorm.DB, projectRepo *repository.ProjectRepository) *DashboardService {
	return &DashboardService{db: db, projectRepo: projectRepo}
}

// ReportCounts is the three-bucket breakdown for one project.
type ReportCounts struct {
	NewReports       int `json:"new_reports"`
	OngoingReports   int `json:"ongoing_reports"`
	CompletedReports int `json:"completed_reports"`
	Total            int `json:"total"`
}

// ProjectDashboard is one project's entry in a user dashboard.
type ProjectDashboard struct {
	ProjectID    string       `json:"project_id"`
	ProjectName  string       `json:"project_name"`
	ReportCounts ReportCounts `json:"report_counts"`
}

// ProjectCounts groups a project's reports into new/ongoing/completed. The
// IN-lists are generated from the status catalog, never spelled inline.
func (s *DashboardService) ProjectCounts(ctx context.Context, projectID string) (*ReportCounts, error) {
	counts := &ReportCounts{}

	row := s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN status IN ? THEN 1 END) as new_reports,
			COUNT(CASE WHEN status IN ? THEN 1 END) as ongoing_reports,
			COUNT(CASE WHEN status IN ? THEN 1 END) as completed_reports
		FROM reports
		WHERE project_id = ?
	`,
		entity.StatusesInGroup(entity.GroupNew),
		entity.StatusesInGroup(entity.GroupOngoing),
		entity.StatusesInGroup(entity.GroupCompleted),
		projectID,
	).Row()

	if err := row.Scan(
		&counts.Total,
		&counts.NewReports,
		&counts.OngoingReports,
		&counts.CompletedReports,
	); err != nil {
		return nil, fmt.Errorf("aggregate report counts: %w", err)
	}

	return counts, nil
}

// UserDashboard returns the per-project breakdown across the projects the
// user is assigned to.
func (s *DashboardService) UserDashboard(ctx context.Context, userID string) ([]ProjectDashboard, error) {
	projects, err := s.projectRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	dashboard := make([]ProjectDashboard, 0, len(projects))
	for _, p := range projects {
		counts, err := s.ProjectCounts(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		dashboard = append(dashboard, ProjectDashboard{
			ProjectID:    p.ID,
			ProjectName:  p.Name,
			ReportCounts: *counts,
		})
	}
	return dashboard, nil
}
