package model

import "time"

// UserRole grants a role to a user within a project. The schema allows one
// grant per (user_id, project_id).
type UserRole struct {
	UserID    string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	RoleID    int       `gorm:"column:role_id;primaryKey" json:"role_id"`
	ProjectID int       `gorm:"column:project_id;primaryKey" json:"project_id"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
