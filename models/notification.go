package models

import "time"

const (
	NotificationTypeInfo    = "info"
	NotificationTypeSuccess = "success"
	NotificationTypeWarning = "warning"
	NotificationTypeError   = "error"
	NotificationTypePayment = "payment"
	NotificationTypeTask    = "task"
	NotificationTypeSystem  = "system"
)

type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index:idx_notifications_user_read" json:"user_id"`
	Title     string     `gorm:"size:100;not null" json:"title"`
	Message   string     `gorm:"size:500;not null" json:"message"`
	Type      string     `gorm:"size:16;default:'info'" json:"type"`
	IsRead    bool       `gorm:"default:false;index:idx_notifications_user_read" json:"is_read"`
	Priority  string     `gorm:"size:10;default:'low'" json:"priority"`
	ActionURL *string    `gorm:"size:255" json:"action_url,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && now.After(*n.ExpiresAt)
}
