package models

// AuditLog records mutating student operations for the activity feed.
type AuditLog struct {
	Base
	StudentID    uint   `gorm:"not null;index" json:"-"`
	Action       string `gorm:"size:50;not null" json:"action"`
	ResourceType string `gorm:"size:50;not null" json:"resource_type"`
	ResourceID   uint   `json:"resource_id"`
	IPAddress    string `gorm:"size:64" json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}

// All lists every model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&Student{},
		&Task{},
		&Expense{},
		&AuditLog{},
	}
}
