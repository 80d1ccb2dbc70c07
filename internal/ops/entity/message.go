package entity

import "time"

// ReportMessage is one entry in a report's akzente↔client message thread.
// The thread is append-only; visibility filtering happens in the service.
type ReportMessage struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	ReportID     string    `json:"report_id" gorm:"size:32;not null;index"`
	SenderID     string    `json:"sender_id" gorm:"size:32;not null"`
	SenderRole   string    `json:"sender_role" gorm:"size:20;not null"`
	ReceiverRole string    `json:"receiver_role" gorm:"size:20;not null"`
	Body         string    `json:"body" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

func (ReportMessage) TableName() string {
	return "report_messages"
}
