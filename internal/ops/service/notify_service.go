package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/akzente/fieldops/internal/ops/entity"
	"github.com/akzente/fieldops/internal/ops/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Mailer is the outbound e-mail channel.
type Mailer interface {
	SendMail(ctx context.Context, to, subject, body string) error
}

// DedupStore claims an event identity exactly once within the TTL. Claim
// returns false when the key was already taken.
type DedupStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type redisDedup struct {
	rdb *redis.Client
}

func (d redisDedup) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return d.rdb.SetNX(ctx, key, time.Now().Format(time.RFC3339), ttl).Result()
}

// TransitionEvent describes one successful lifecycle transition.
type TransitionEvent struct {
	ReportID   string
	ReportCode string
	FromStatus string
	ToStatus   string
	ActorRole  string
	OccurredAt time.Time
}

// NotifyService fans a transition event out to the in-app notification store
// and the mail relay. It runs off the transition path: every failure here is
// logged and dropped, and the transition stays successful regardless.
type NotifyService struct {
	notificationRepo *repository.NotificationRepository
	projectRepo      *repository.ProjectRepository
	reportRepo       *repository.ReportRepository
	mailer           Mailer
	dedup            DedupStore
	dedupTTL         time.Duration
}

func NewNotifyService(notificationRepo *repository.NotificationRepository, projectRepo *repository.ProjectRepository, reportRepo *repository.ReportRepository) *NotifyService {
	return &NotifyService{
		notificationRepo: notificationRepo,
		projectRepo:      projectRepo,
		reportRepo:       reportRepo,
		dedupTTL:         24 * time.Hour,
	}
}

// SetMailer injects the mail channel. Without it only in-app notifications
// are written.
func (s *NotifyService) SetMailer(m Mailer) {
	s.mailer = m
}

// SetRedis injects the redis-backed dedup store. Without it duplicate
// suppression relies on the transition claim alone.
func (s *NotifyService) SetRedis(rdb *redis.Client) {
	s.dedup = redisDedup{rdb: rdb}
}

// SetDedupStore injects an alternative dedup store.
func (s *NotifyService) SetDedupStore(store DedupStore) {
	s.dedup = store
}

// Dispatch delivers one event. Callers invoke it in a separate goroutine;
// it never returns an error into the transition path.
func (s *NotifyService) Dispatch(ctx context.Context, event TransitionEvent) {
	// Dedup on the event identity: the same (report, toStatus) dispatched
	// twice must not notify recipients twice.
	if s.dedup != nil {
		key := fmt.Sprintf("notify:report:%s:%s", event.ReportID, event.ToStatus)
		ok, err := s.dedup.Claim(ctx, key, s.dedupTTL)
		if err != nil {
			log.Printf("[NotifyService] dedup check failed (report=%s): %v", event.ReportID, err)
		} else if !ok {
			log.Printf("[NotifyService] duplicate event suppressed (report=%s to=%s)", event.ReportID, event.ToStatus)
			return
		}
	}

	report, err := s.reportRepo.FindByID(ctx, event.ReportID)
	if err != nil {
		log.Printf("[NotifyService] load report failed (report=%s): %v", event.ReportID, err)
		return
	}

	recipients, err := s.projectRepo.ResolveRecipients(ctx, report)
	if err != nil {
		log.Printf("[NotifyService] resolve recipients failed (report=%s): %v", event.ReportID, err)
		// recipients may still be partially resolved; continue with what we have
	}
	if recipients == nil {
		return
	}

	var users []entity.User
	if recipients.Merchandiser != nil {
		users = append(users, *recipients.Merchandiser)
	}
	if recipients.AkzenteStaff != nil {
		users = append(users, *recipients.AkzenteStaff)
	}
	users = append(users, recipients.ClientContacts...)

	title := fmt.Sprintf("Report %s: %s", event.ReportCode, event.ToStatus)
	body := fmt.Sprintf("Report %s moved from %s to %s.", event.ReportCode, event.FromStatus, event.ToStatus)

	for _, u := range users {
		s.notifyUser(ctx, u, event, title, body)
	}
}

// Notifications returns a user's in-app notifications, newest first.
func (s *NotifyService) Notifications(ctx context.Context, userID string, page, pageSize int) ([]entity.Notification, int64, error) {
	return s.notificationRepo.ListByUser(ctx, userID, page, pageSize)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotifyService) MarkRead(ctx context.Context, id, userID string) error {
	return s.notificationRepo.MarkRead(ctx, id, userID)
}

// UnreadCount returns the user's unread notification count.
func (s *NotifyService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// notifyUser writes the in-app notification and sends the mail. The two
// channels fail independently.
func (s *NotifyService) notifyUser(ctx context.Context, user entity.User, event TransitionEvent, title, body string) {
	notification := &entity.Notification{
		ID:         uuid.New().String()[:32],
		UserID:     user.ID,
		ReportID:   event.ReportID,
		Title:      title,
		Body:       body,
		FromStatus: event.FromStatus,
		ToStatus:   event.ToStatus,
		CreatedAt:  time.Now(),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("[NotifyService] store notification failed (user=%s report=%s): %v", user.ID, event.ReportID, err)
	}

	if s.mailer != nil && user.Email != "" {
		if err := s.mailer.SendMail(ctx, user.Email, title, body); err != nil {
			log.Printf("[NotifyService] send mail failed (user=%s report=%s): %v", user.ID, event.ReportID, err)
		}
	}
}
