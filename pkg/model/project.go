package model

import "time"

// Project is a unit of work owned by its creator
type Project struct {
	ProjectID   int       `gorm:"column:project_id;primaryKey;autoIncrement" json:"project_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	ProjectKey  string    `gorm:"column:project_key;uniqueIndex;not null" json:"project_key"`
	CreatedBy   string    `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}
