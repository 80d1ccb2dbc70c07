package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories is the aggregate of all repositories, wired once in main.
type Repositories struct {
	Report       *ReportRepository
	Project      *ProjectRepository
	Message      *MessageRepository
	Favorite     *FavoriteRepository
	Notification *NotificationRepository
}

// NewRepositories creates the repository aggregate.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Report:       NewReportRepository(db),
		Project:      NewProjectRepository(db),
		Message:      NewMessageRepository(db),
		Favorite:     NewFavoriteRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
