package service

import (
	"context"
	"errors"
	"time"

	"github.com/akzente/fieldops/internal/ops/entity"
	"github.com/akzente/fieldops/internal/ops/repository"
	"github.com/google/uuid"
)

// ErrMessagingNotAllowed is returned when the sender/receiver role pairing
// is outside the permitted akzente↔client directions.
var ErrMessagingNotAllowed = errors.New("messaging not permitted for this role pairing")

// visiblePairs are the only directed pairings rendered in a thread,
// whichever role is viewing.
var visiblePairs = [][2]string{
	{entity.RoleAkzente, entity.RoleClient},
	{entity.RoleClient, entity.RoleAkzente},
}

// ConversationService filters report message threads by role pairing. It is
// independent of lifecycle status: closed reports keep a readable thread.
type ConversationService struct {
	messageRepo *repository.MessageRepository
	reportRepo  *repository.ReportRepository
}

func NewConversationService(messageRepo *repository.MessageRepository, reportRepo *repository.ReportRepository) *ConversationService {
	return &ConversationService{
		messageRepo: messageRepo,
		reportRepo:  reportRepo,
	}
}

// VisibleMessages returns the thread subset permitted for the viewer,
// ordered by timestamp. The result is the same for both participating
// roles.
func (s *ConversationService) VisibleMessages(ctx context.Context, reportID, viewerRole string) ([]entity.ReportMessage, error) {
	if _, err := s.reportRepo.FindByID(ctx, reportID); err != nil {
		return nil, err
	}
	if viewerRole != entity.RoleAkzente && viewerRole != entity.RoleClient {
		return []entity.ReportMessage{}, nil
	}
	return s.messageRepo.ListByReport(ctx, reportID, visiblePairs)
}

// PostMessage appends a message in one of the permitted directions.
func (s *ConversationService) PostMessage(ctx context.Context, reportID, senderID, senderRole, body string) (*entity.ReportMessage, error) {
	if _, err := s.reportRepo.FindByID(ctx, reportID); err != nil {
		return nil, err
	}

	var receiverRole string
	switch senderRole {
	case entity.RoleAkzente:
		receiverRole = entity.RoleClient
	case entity.RoleClient:
		receiverRole = entity.RoleAkzente
	default:
		return nil, ErrMessagingNotAllowed
	}

	msg := &entity.ReportMessage{
		ID:           uuid.New().String()[:32],
		ReportID:     reportID,
		SenderID:     senderID,
		SenderRole:   senderRole,
		ReceiverRole: receiverRole,
		Body:         body,
		CreatedAt:    time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
