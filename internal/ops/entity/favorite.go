package entity

import "time"

// ReportFavorite marks a report as favorite for one (role, actor) pair.
// Orthogonal to the lifecycle: toggling never touches the report row.
type ReportFavorite struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	ReportID  string    `json:"report_id" gorm:"size:32;not null;index:idx_report_favorites_key,unique"`
	ActorRole string    `json:"actor_role" gorm:"size:20;not null;index:idx_report_favorites_key,unique"`
	ActorID   string    `json:"actor_id" gorm:"size:32;not null;index:idx_report_favorites_key,unique"`
	CreatedAt time.Time `json:"created_at"`
}

func (ReportFavorite) TableName() string {
	return "report_favorites"
}
