package entity

import "time"

// Project groups branches and reports for one client engagement.
type Project struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	Code           string    `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name           string    `json:"name" gorm:"size:200;not null"`
	ClientID       *string   `json:"client_id" gorm:"size:32;index"`
	AkzenteStaffID *string   `json:"akzente_staff_id" gorm:"size:32;index"`
	Status         string    `json:"status" gorm:"size:20;default:active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// Branch is a physical retail location a report is filed against.
type Branch struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	ProjectID string    `json:"project_id" gorm:"size:32;not null;index"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	Address   string    `json:"address" gorm:"size:300"`
	City      string    `json:"city" gorm:"size:100"`
	Zip       string    `json:"zip" gorm:"size:20"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Branch) TableName() string {
	return "branches"
}

// User is a platform account: akzente staff, client contact or merchandiser.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Email     string    `json:"email" gorm:"size:200;uniqueIndex"`
	Role      string    `json:"role" gorm:"size:20;not null;index"` // merchandiser/client/akzente
	Status    string    `json:"status" gorm:"size:20;default:active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// ProjectMember links a user to a project. Client contacts and merchandisers
// are resolved through this table when fanning out notifications and when
// building the per-user dashboard.
type ProjectMember struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	ProjectID string    `json:"project_id" gorm:"size:32;not null;index:idx_project_members_pu,unique"`
	UserID    string    `json:"user_id" gorm:"size:32;not null;index:idx_project_members_pu,unique"`
	Role      string    `json:"role" gorm:"size:20;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProjectMember) TableName() string {
	return "project_members"
}
