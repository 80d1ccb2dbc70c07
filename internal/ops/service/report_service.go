package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akzente/fieldops/internal/ops/entity"
	"github.com/akzente/fieldops/internal/ops/lifecycle"
	"github.com/akzente/fieldops/internal/ops/repository"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ErrStaleWrite means the conditional status write lost a race against a
// concurrent transition. User callers may retry after re-reading; the
// scheduler treats it as an expected skip.
var ErrStaleWrite = errors.New("report was modified concurrently")

// ReportService owns report provisioning and the transition path around the
// lifecycle machine.
type ReportService struct {
	reportRepo  *repository.ReportRepository
	projectRepo *repository.ProjectRepository
	notifySvc   *NotifyService
}

func NewReportService(reportRepo *repository.ReportRepository, projectRepo *repository.ProjectRepository) *ReportService {
	return &ReportService{
		reportRepo:  reportRepo,
		projectRepo: projectRepo,
	}
}

// SetNotifyService injects the dispatcher. Without it transitions succeed
// silently.
func (s *ReportService) SetNotifyService(svc *NotifyService) {
	s.notifySvc = svc
}

// CreateReportRequest provisions a report.
type CreateReportRequest struct {
	ProjectID      string     `json:"project_id" binding:"required"`
	BranchID       string     `json:"branch_id"`
	MerchandiserID *string    `json:"merchandiser_id"`
	PlannedOn      *time.Time `json:"planned_on"`
	ReportTo       *time.Time `json:"report_to"`
}

// Create provisions a report in the initial status.
func (s *ReportService) Create(ctx context.Context, req *CreateReportRequest) (*entity.Report, error) {
	if _, err := s.projectRepo.FindByID(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	code, err := s.reportRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate report code: %w", err)
	}

	report := &entity.Report{
		ID:             uuid.New().String()[:32],
		Code:           code,
		ProjectID:      req.ProjectID,
		BranchID:       req.BranchID,
		MerchandiserID: req.MerchandiserID,
		Status:         entity.StatusNew,
		PlannedOn:      req.PlannedOn,
		ReportTo:       req.ReportTo,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}

// Get loads one report.
func (s *ReportService) Get(ctx context.Context, id string) (*entity.Report, error) {
	return s.reportRepo.FindByID(ctx, id)
}

// List returns reports with pagination and filters.
func (s *ReportService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Report, int64, error) {
	return s.reportRepo.FindAll(ctx, page, pageSize, filters)
}

// Transition runs one lifecycle action. On success the new status is
// persisted through a conditional write keyed on the previously read
// (status, updated_at) pair; the notification fan-out happens on a separate
// goroutine after the write, never inside it.
func (s *ReportService) Transition(ctx context.Context, reportID, actorRole, action string) (*entity.Report, error) {
	report, err := s.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	newStatus, err := lifecycle.Transition(report.Status, actorRole, action)
	if err != nil {
		return nil, err
	}

	ok, err := s.reportRepo.UpdateStatusIf(ctx, report.ID, report.Status, report.UpdatedAt, newStatus)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStaleWrite
	}

	event := TransitionEvent{
		ReportID:   report.ID,
		ReportCode: report.Code,
		FromStatus: report.Status,
		ToStatus:   newStatus,
		ActorRole:  actorRole,
		OccurredAt: time.Now(),
	}
	if s.notifySvc != nil {
		go s.notifySvc.Dispatch(context.Background(), event)
	}

	updated, err := s.reportRepo.FindByID(ctx, report.ID)
	if err != nil {
		// The write landed; fall back to the in-memory view.
		report.Status = newStatus
		return report, nil
	}
	return updated, nil
}

// Assign sets the merchandiser and moves the report to assigned. The edge is
// validated before the merchandiser write, so a rejected assign leaves the
// row untouched.
func (s *ReportService) Assign(ctx context.Context, reportID, merchandiserID, actorRole string) (*entity.Report, error) {
	report, err := s.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if _, err := lifecycle.Transition(report.Status, actorRole, entity.ActionAssign); err != nil {
		return nil, err
	}

	merch, err := s.projectRepo.FindUser(ctx, merchandiserID)
	if err != nil {
		return nil, fmt.Errorf("merchandiser lookup: %w", err)
	}
	if merch.Role != entity.RoleMerchandiser {
		return nil, fmt.Errorf("user %s is not a merchandiser", merchandiserID)
	}

	if err := s.reportRepo.AssignMerchandiser(ctx, reportID, merchandiserID); err != nil {
		return nil, fmt.Errorf("assign merchandiser: %w", err)
	}
	return s.Transition(ctx, reportID, actorRole, entity.ActionAssign)
}

// AllowedActions reports the actions the caller may take on a report.
func (s *ReportService) AllowedActions(ctx context.Context, reportID, actorRole string) ([]string, error) {
	report, err := s.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return lifecycle.AllowedActions(report.Status, actorRole), nil
}

// OutcomeRequest carries the free-form visit outcome fields. Absent fields
// are left untouched; an explicit empty feedback clears it.
type OutcomeRequest struct {
	IsSpecCompliant *bool   `json:"is_spec_compliant"`
	Feedback        *string `json:"feedback"`
}

// SubmitOutcome updates the outcome fields without touching the lifecycle.
func (s *ReportService) SubmitOutcome(ctx context.Context, reportID string, req *OutcomeRequest) (*entity.Report, error) {
	if _, err := s.reportRepo.FindByID(ctx, reportID); err != nil {
		return nil, err
	}
	if err := s.reportRepo.UpdateOutcome(ctx, reportID, req.IsSpecCompliant, req.Feedback); err != nil {
		return nil, fmt.Errorf("update outcome: %w", err)
	}
	return s.reportRepo.FindByID(ctx, reportID)
}

var reportExportHeaders = []string{
	"Code", "Branch", "Merchandiser", "Status", "Group",
	"Planned On", "Report To", "Spec Compliant", "Feedback", "Updated At",
}

// ExportProjectReports renders a project's reports as an xlsx workbook.
func (s *ReportService) ExportProjectReports(ctx context.Context, projectID string) (*excelize.File, string, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, "", err
	}

	reports, err := s.reportRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("list reports: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Reports"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range reportExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for i, r := range reports {
		row := i + 2
		merchandiser := ""
		if r.MerchandiserID != nil {
			if u, err := s.projectRepo.FindUser(ctx, *r.MerchandiserID); err == nil {
				merchandiser = u.Name
			}
		}
		compliant := ""
		if r.IsSpecCompliant != nil {
			compliant = fmt.Sprintf("%t", *r.IsSpecCompliant)
		}
		values := []interface{}{
			r.Code, r.BranchID, merchandiser, r.Status, entity.StatusGroup(r.Status),
			formatDate(r.PlannedOn), formatDate(r.ReportTo), compliant, r.Feedback,
			r.UpdatedAt.Format("2006-01-02 15:04"),
		}
		for j, v := range values {
			col, _ := excelize.ColumnNumberToName(j + 1)
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), v)
		}
	}

	fileName := fmt.Sprintf("reports_%s_%s.xlsx", project.Code, time.Now().Format("20060102"))
	return f, fileName, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
