package service

import (
	"context"
	"testing"
	"time"

	"github.com/akzente/fieldops/internal/ops/entity"
	"github.com/akzente/fieldops/internal/ops/repository"
	"github.com/akzente/fieldops/internal/ops/testutil"
	"gorm.io/gorm"
)

func setupReportServiceTest(t *testing.T) (*ReportService, *repository.Repositories, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedProject(t, db, "prj-svc", "Service Project")
	testutil.SeedUser(t, db, "merch-svc", "Max Merch", entity.RoleMerchandiser)
	testutil.SeedUser(t, db, "staff-svc", "Anna Staff", entity.RoleAkzente)

	repos := repository.NewRepositories(db)
	return NewReportService(repos.Report, repos.Project), repos, db
}

func TestConditionalStatusWrite(t *testing.T) {
	svc, repos, _ := setupReportServiceTest(t)
	ctx := context.Background()

	report, err := svc.Create(ctx, &CreateReportRequest{ProjectID: "prj-svc"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fresh, err := repos.Report.FindByID(ctx, report.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	// First writer with the read (status, updated_at) pair wins
	ok, err := repos.Report.UpdateStatusIf(ctx, fresh.ID, fresh.Status, fresh.UpdatedAt, entity.StatusDraft)
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	if !ok {
		t.Fatal("Expected first conditional write to win")
	}

	// A second writer holding the stale pair loses without error
	ok, err = repos.Report.UpdateStatusIf(ctx, fresh.ID, fresh.Status, fresh.UpdatedAt, entity.StatusAssigned)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if ok {
		t.Fatal("Expected stale conditional write to lose")
	}

	after, _ := repos.Report.FindByID(ctx, report.ID)
	if after.Status != entity.StatusDraft {
		t.Errorf("Expected draft to survive, got %s", after.Status)
	}
}

func TestAssignValidatesRole(t *testing.T) {
	svc, _, _ := setupReportServiceTest(t)
	ctx := context.Background()

	report, err := svc.Create(ctx, &CreateReportRequest{ProjectID: "prj-svc"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Assign(ctx, report.ID, "staff-svc", entity.RoleAkzente); err == nil {
		t.Fatal("Expected assign to reject a non-merchandiser user")
	}

	assigned, err := svc.Assign(ctx, report.ID, "merch-svc", entity.RoleAkzente)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != entity.StatusAssigned {
		t.Errorf("Expected assigned, got %s", assigned.Status)
	}
	if assigned.MerchandiserID == nil || *assigned.MerchandiserID != "merch-svc" {
		t.Errorf("Expected merchandiser merch-svc, got %v", assigned.MerchandiserID)
	}
}

func TestOutcomeLeavesLifecycleAlone(t *testing.T) {
	svc, repos, _ := setupReportServiceTest(t)
	ctx := context.Background()

	report, err := svc.Create(ctx, &CreateReportRequest{ProjectID: "prj-svc"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	compliant := false
	feedback := "Shelf layout deviates from planogram."
	updated, err := svc.SubmitOutcome(ctx, report.ID, &OutcomeRequest{
		IsSpecCompliant: &compliant,
		Feedback:        &feedback,
	})
	if err != nil {
		t.Fatalf("outcome: %v", err)
	}
	if updated.Status != entity.StatusNew {
		t.Errorf("Outcome write changed status to %s", updated.Status)
	}
	if updated.IsSpecCompliant == nil || *updated.IsSpecCompliant {
		t.Errorf("Expected is_spec_compliant false, got %v", updated.IsSpecCompliant)
	}

	// Outcome fields survive a subsequent transition untouched
	if _, err := repos.Report.FindByID(ctx, report.ID); err != nil {
		t.Fatalf("reload: %v", err)
	}
	after, err := svc.Transition(ctx, report.ID, entity.RoleMerchandiser, entity.ActionSubmit)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if after.Feedback != "Shelf layout deviates from planogram." {
		t.Errorf("Transition dropped the outcome feedback")
	}
}

func TestFailedAssignLeavesReportUntouched(t *testing.T) {
	svc, repos, db := setupReportServiceTest(t)
	ctx := context.Background()

	report, err := svc.Create(ctx, &CreateReportRequest{ProjectID: "prj-svc"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, status := range []string{entity.StatusFinished, entity.StatusValid} {
		db.Model(&entity.Report{}).Where("id = ?", report.ID).Update("status", status)

		if _, err := svc.Assign(ctx, report.ID, "merch-svc", entity.RoleAkzente); err == nil {
			t.Fatalf("Expected assign to be rejected from %s", status)
		}

		after, err := repos.Report.FindByID(ctx, report.ID)
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if after.MerchandiserID != nil {
			t.Errorf("Rejected assign from %s wrote merchandiser %v", status, *after.MerchandiserID)
		}
		if after.Status != status {
			t.Errorf("Rejected assign from %s changed status to %s", status, after.Status)
		}
	}
}

func TestOutcomeFeedbackClearAndNoOp(t *testing.T) {
	svc, repos, _ := setupReportServiceTest(t)
	ctx := context.Background()

	report, err := svc.Create(ctx, &CreateReportRequest{ProjectID: "prj-svc"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	feedback := "Initial note."
	if _, err := svc.SubmitOutcome(ctx, report.ID, &OutcomeRequest{Feedback: &feedback}); err != nil {
		t.Fatalf("set feedback: %v", err)
	}

	// An explicit empty string clears the feedback again
	empty := ""
	cleared, err := svc.SubmitOutcome(ctx, report.ID, &OutcomeRequest{Feedback: &empty})
	if err != nil {
		t.Fatalf("clear feedback: %v", err)
	}
	if cleared.Feedback != "" {
		t.Errorf("Expected feedback cleared, got %q", cleared.Feedback)
	}

	// A request carrying nothing must not bump updated_at, or it would
	// invalidate a concurrent transition's conditional write for no reason
	before, err := repos.Report.FindByID(ctx, report.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, err := svc.SubmitOutcome(ctx, report.ID, &OutcomeRequest{}); err != nil {
		t.Fatalf("empty outcome: %v", err)
	}
	after, _ := repos.Report.FindByID(ctx, report.ID)
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("Empty outcome request bumped updated_at")
	}
}

// memoryDedup is an in-process DedupStore for exercising suppression.
type memoryDedup struct {
	seen map[string]bool
}

func (d *memoryDedup) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

func TestDuplicateDispatchSuppressed(t *testing.T) {
	svc, repos, db := setupReportServiceTest(t)
	ctx := context.Background()

	db.Model(&entity.Project{}).Where("id = ?", "prj-svc").Update("akzente_staff_id", "staff-svc")

	report, err := svc.Create(ctx, &CreateReportRequest{ProjectID: "prj-svc"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	notifySvc := NewNotifyService(repos.Notification, repos.Project, repos.Report)
	notifySvc.SetDedupStore(&memoryDedup{seen: map[string]bool{}})

	event := TransitionEvent{
		ReportID:   report.ID,
		ReportCode: report.Code,
		FromStatus: entity.StatusNew,
		ToStatus:   entity.StatusDraft,
		ActorRole:  entity.RoleMerchandiser,
		OccurredAt: time.Now(),
	}
	notifySvc.Dispatch(ctx, event)
	notifySvc.Dispatch(ctx, event)

	var count int64
	db.Model(&entity.Notification{}).Where("report_id = ?", report.ID).Count(&count)
	if count != 1 {
		t.Fatalf("Expected a single notification despite double dispatch, got %d", count)
	}

	// A different target status is a new event identity, not a duplicate
	event.ToStatus = entity.StatusFinished
	notifySvc.Dispatch(ctx, event)
	db.Model(&entity.Notification{}).Where("report_id = ?", report.ID).Count(&count)
	if count != 2 {
		t.Fatalf("Expected second event to deliver, got %d notifications", count)
	}
}

func TestNotificationFanOutWritesPerRecipient(t *testing.T) {
	svc, repos, db := setupReportServiceTest(t)
	ctx := context.Background()

	staffID := "staff-svc"
	db.Model(&entity.Project{}).Where("id = ?", "prj-svc").Update("akzente_staff_id", staffID)
	testutil.SeedUser(t, db, "client-svc", "Carla Client", entity.RoleClient)
	testutil.SeedMember(t, db, "prj-svc", "client-svc", entity.RoleClient)

	report, err := svc.Create(ctx, &CreateReportRequest{ProjectID: "prj-svc"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	notifySvc := NewNotifyService(repos.Notification, repos.Project, repos.Report)
	notifySvc.Dispatch(ctx, TransitionEvent{
		ReportID:   report.ID,
		ReportCode: report.Code,
		FromStatus: entity.StatusNew,
		ToStatus:   entity.StatusDraft,
		ActorRole:  entity.RoleMerchandiser,
		OccurredAt: time.Now(),
	})

	var count int64
	db.Model(&entity.Notification{}).Where("report_id = ?", report.ID).Count(&count)
	if count != 2 {
		t.Fatalf("Expected notifications for staff and client contact, got %d", count)
	}

	items, total, err := notifySvc.Notifications(ctx, staffID, 1, 20)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("Expected 1 notification for staff, got %d", total)
	}
	if items[0].ToStatus != entity.StatusDraft {
		t.Errorf("Expected to_status draft, got %s", items[0].ToStatus)
	}

	// Read tracking
	unread, _ := notifySvc.UnreadCount(ctx, staffID)
	if unread != 1 {
		t.Fatalf("Expected 1 unread, got %d", unread)
	}
	if err := notifySvc.MarkRead(ctx, items[0].ID, staffID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, _ = notifySvc.UnreadCount(ctx, staffID)
	if unread != 0 {
		t.Fatalf("Expected 0 unread after mark, got %d", unread)
	}
}
