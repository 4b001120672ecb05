package model

import "time"

// ProjectUser records plain membership of a user in a project
type ProjectUser struct {
	ProjectID int       `gorm:"column:project_id;primaryKey" json:"project_id"`
	UserID    string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ProjectUser) TableName() string {
	return "project_users"
}
