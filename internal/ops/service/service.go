package service

import (
	"github.com/akzente/fieldops/internal/ops/repository"
	"gorm.io/gorm"
)

// Services is the service aggregate, wired once in main. The scheduler is
// created separately because it owns a background loop.
type Services struct {
	Report       *ReportService
	Dashboard    *DashboardService
	Favorite     *FavoriteService
	Conversation *ConversationService
	Notify       *NotifyService
	Photo        *PhotoService
}

// NewServices creates the service aggregate. Optional collaborators (mailer,
// redis, minio) are injected by the caller via the Set* methods afterwards.
func NewServices(db *gorm.DB, repos *repository.Repositories) *Services {
	reportSvc := NewReportService(repos.Report, repos.Project)
	notifySvc := NewNotifyService(repos.Notification, repos.Project, repos.Report)
	reportSvc.SetNotifyService(notifySvc)

	return &Services{
		Report:       reportSvc,
		Dashboard:    NewDashboardService(db, repos.Project),
		Favorite:     NewFavoriteService(repos.Favorite, repos.Report),
		Conversation: NewConversationService(repos.Message, repos.Report),
		Notify:       notifySvc,
		Photo:        NewPhotoService(repos.Report, nil, ""),
	}
}
