package repository

import (
	"context"

	"github.com/akzente/fieldops/internal/ops/entity"
	"gorm.io/gorm"
)

// MessageRepository persists the append-only report message threads.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message to a report's thread.
func (r *MessageRepository) Create(ctx context.Context, msg *entity.ReportMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListByReport returns a report's messages restricted to the given directed
// (sender_role, receiver_role) pairs, ordered by timestamp. The query is
// restartable; there are no consumption semantics.
func (r *MessageRepository) ListByReport(ctx context.Context, reportID string, pairs [][2]string) ([]entity.ReportMessage, error) {
	query := r.db.WithContext(ctx).
		Where("report_id = ?", reportID)

	if len(pairs) > 0 {
		cond := r.db.Where("sender_role = ? AND receiver_role = ?", pairs[0][0], pairs[0][1])
		for _, p := range pairs[1:] {
			cond = cond.Or("sender_role = ? AND receiver_role = ?", p[0], p[1])
		}
		query = query.Where(cond)
	}

	var msgs []entity.ReportMessage
	err := query.
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}
