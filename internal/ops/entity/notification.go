package entity

import "time"

// Notification is an in-app notification produced by the lifecycle fan-out.
type Notification struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	UserID     string    `json:"user_id" gorm:"size:32;not null;index"`
	ReportID   string    `json:"report_id" gorm:"size:32;index"`
	Title      string    `json:"title" gorm:"size:200;not null"`
	Body       string    `json:"body" gorm:"type:text"`
	FromStatus string    `json:"from_status" gorm:"size:24"`
	ToStatus   string    `json:"to_status" gorm:"size:24"`
	IsRead     bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// ReportPhoto records an uploaded visit photo stored in object storage.
type ReportPhoto struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	ReportID   string    `json:"report_id" gorm:"size:32;not null;index"`
	ObjectKey  string    `json:"object_key" gorm:"size:500;not null"`
	FileName   string    `json:"file_name" gorm:"size:255"`
	Size       int64     `json:"size"`
	UploadedBy string    `json:"uploaded_by" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ReportPhoto) TableName() string {
	return "report_photos"
}
