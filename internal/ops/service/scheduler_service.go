package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/akzente/fieldops/internal/ops/entity"
	"github.com/akzente/fieldops/internal/ops/repository"
)

// SchedulerService advances overdue reports to due on a fixed interval.
// Safe to run in multiple instances: the conditional status write makes the
// claim atomic, so racing instances produce exactly one winner per report
// and the loser skips without error.
type SchedulerService struct {
	reportRepo *repository.ReportRepository
	reportSvc  *ReportService
	interval   time.Duration
}

func NewSchedulerService(reportRepo *repository.ReportRepository, reportSvc *ReportService, interval time.Duration) *SchedulerService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SchedulerService{
		reportRepo: reportRepo,
		reportSvc:  reportSvc,
		interval:   interval,
	}
}

// Start runs the tick loop until ctx is cancelled. Called from main in its
// own goroutine.
func (s *SchedulerService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("[Scheduler] started (interval=%s)", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[Scheduler] stopped")
			return
		case <-ticker.C:
			transitioned, skipped, err := s.Tick(ctx)
			if err != nil {
				log.Printf("[Scheduler] tick failed: %v", err)
				continue
			}
			if transitioned > 0 || skipped > 0 {
				log.Printf("[Scheduler] tick done (due=%d skipped=%d)", transitioned, skipped)
			}
		}
	}
}

// Tick scans for overdue reports and moves each to due through the machine.
// Reports already in due or valid are excluded by the selection, so a killed
// or repeated tick resumes cleanly. Returns how many reports were
// transitioned and how many were skipped as lost races.
func (s *SchedulerService) Tick(ctx context.Context) (transitioned, skipped int, err error) {
	candidates, err := s.reportRepo.ListDueCandidates(ctx, time.Now())
	if err != nil {
		return 0, 0, err
	}

	for _, report := range candidates {
		_, err := s.reportSvc.Transition(ctx, report.ID, entity.RoleScheduler, entity.ActionSchedulerDue)
		switch {
		case err == nil:
			transitioned++
		case errors.Is(err, ErrStaleWrite):
			// Another instance or a user transition won; expected outcome.
			skipped++
		case errors.Is(err, repository.ErrNotFound):
			skipped++
		default:
			// A machine rejection here means the report changed between the
			// scan and the claim (e.g. approved to valid); skip it.
			skipped++
			log.Printf("[Scheduler] skip report %s: %v", report.ID, err)
		}
	}
	return transitioned, skipped, nil
}
