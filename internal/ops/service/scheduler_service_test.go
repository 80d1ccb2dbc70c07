package service

import (
	"context"
	"testing"
	"time"

	"github.com/akzente/fieldops/internal/ops/entity"
	"github.com/akzente/fieldops/internal/ops/repository"
	"github.com/akzente/fieldops/internal/ops/testutil"
)

func setupSchedulerTest(t *testing.T) (*SchedulerService, *repository.Repositories) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedProject(t, db, "prj-sched", "Overdue Project")

	repos := repository.NewRepositories(db)
	reportSvc := NewReportService(repos.Report, repos.Project)
	scheduler := NewSchedulerService(repos.Report, reportSvc, time.Minute)
	return scheduler, repos
}

func seedWithDeadline(t *testing.T, repos *repository.Repositories, id, status string, reportTo time.Time) {
	t.Helper()
	ctx := context.Background()
	report := &entity.Report{
		ID:        id,
		Code:      "RPT-" + id,
		ProjectID: "prj-sched",
		Status:    status,
		ReportTo:  &reportTo,
	}
	if err := repos.Report.Create(ctx, report); err != nil {
		t.Fatalf("seed report: %v", err)
	}
}

func TestSchedulerMovesOverdueReports(t *testing.T) {
	scheduler, repos := setupSchedulerTest(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	seedWithDeadline(t, repos, "rpt-overdue", entity.StatusInProgress, past)
	seedWithDeadline(t, repos, "rpt-closed", entity.StatusValid, past)
	seedWithDeadline(t, repos, "rpt-future", entity.StatusAssigned, future)

	transitioned, skipped, err := scheduler.Tick(ctx)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if transitioned != 1 || skipped != 0 {
		t.Fatalf("Expected 1 transition and 0 skips, got %d/%d", transitioned, skipped)
	}

	report, err := repos.Report.FindByID(ctx, "rpt-overdue")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if report.Status != entity.StatusDue {
		t.Errorf("Expected due, got %s", report.Status)
	}

	// The closed report stays terminal and the future one stays untouched
	closed, _ := repos.Report.FindByID(ctx, "rpt-closed")
	if closed.Status != entity.StatusValid {
		t.Errorf("Scheduler must not touch a closed report, got %s", closed.Status)
	}
	pending, _ := repos.Report.FindByID(ctx, "rpt-future")
	if pending.Status != entity.StatusAssigned {
		t.Errorf("Scheduler must not touch a report before its deadline, got %s", pending.Status)
	}
}

func TestSchedulerTickIsIdempotent(t *testing.T) {
	scheduler, repos := setupSchedulerTest(t)
	ctx := context.Background()

	seedWithDeadline(t, repos, "rpt-once", entity.StatusDraft, time.Now().Add(-time.Hour))

	if transitioned, _, _ := scheduler.Tick(ctx); transitioned != 1 {
		t.Fatalf("Expected first tick to transition 1, got %d", transitioned)
	}
	// A due report is excluded from the next scan entirely
	if transitioned, skipped, _ := scheduler.Tick(ctx); transitioned != 0 || skipped != 0 {
		t.Fatalf("Expected second tick to do nothing, got %d/%d", transitioned, skipped)
	}
}

func TestDueReportCanStillBeFinished(t *testing.T) {
	scheduler, repos := setupSchedulerTest(t)
	ctx := context.Background()

	seedWithDeadline(t, repos, "rpt-late", entity.StatusInProgress, time.Now().Add(-time.Hour))
	if _, _, err := scheduler.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	reportSvc := scheduler.reportSvc
	report, err := reportSvc.Transition(ctx, "rpt-late", entity.RoleMerchandiser, entity.ActionFinish)
	if err != nil {
		t.Fatalf("finish from due: %v", err)
	}
	if report.Status != entity.StatusFinished {
		t.Errorf("Expected finished, got %s", report.Status)
	}
}
