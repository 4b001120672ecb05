package model

// Status is a ticket status such as "todo" or "done"
type Status struct {
	StatusID int    `gorm:"column:status_id;primaryKey;autoIncrement" json:"status_id"`
	Name     string `gorm:"column:name;uniqueIndex;not null" json:"name"`
}

func (Status) TableName() string {
	return "statuses"
}
