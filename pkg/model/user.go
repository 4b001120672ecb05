package model

import "time"

// User anchors foreign keys for an identity provider subject. Profile data
// lives with the identity provider.
type User struct {
	UserID    string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
