package model

// Role is a named project role
type Role struct {
	RoleID int    `gorm:"column:role_id;primaryKey;autoIncrement" json:"role_id"`
	Name   string `gorm:"column:name;uniqueIndex;not null" json:"name"`
}

func (Role) TableName() string {
	return "roles"
}
