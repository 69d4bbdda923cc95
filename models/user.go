package models

import "time"

// Roles a user account can hold. Kept as a closed set so authorization
// checks never compare against arbitrary strings.
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Email            string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username         string     `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Password         string     `gorm:"size:255;not null" json:"-"`
	FirstName        *string    `gorm:"size:50" json:"first_name,omitempty"`
	LastName         *string    `gorm:"size:50" json:"last_name,omitempty"`
	Avatar           *string    `gorm:"size:255" json:"avatar,omitempty"`
	TelegramUsername *string    `gorm:"size:64" json:"telegram_username,omitempty"`
	WalletAddress    *string    `gorm:"size:128" json:"wallet_address,omitempty"`
	Role             string     `gorm:"size:20;default:'user';not null" json:"role"`
	IsVerified       bool       `gorm:"default:false" json:"is_verified"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	Balance          float64    `gorm:"type:decimal(18,3);default:0" json:"balance"`
	TotalEarned      float64    `gorm:"type:decimal(18,3);default:0" json:"total_earned"`
	TotalWithdrawn   float64    `gorm:"type:decimal(18,3);default:0" json:"total_withdrawn"`
	ReferralCode     string     `gorm:"size:20;uniqueIndex;not null" json:"referral_code"`
	ReferredBy       *uint      `gorm:"column:referred_by;index" json:"referred_by,omitempty"`
	ReferralCount    uint       `gorm:"default:0" json:"referral_count"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	LoginStreak      uint       `gorm:"default:0" json:"login_streak"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"-"`
}

func (User) TableName() string {
	return "users"
}

// FullName falls back to the username when first/last name are unset.
func (u *User) FullName() string {
	if u.FirstName != nil && u.LastName != nil {
		return *u.FirstName + " " + *u.LastName
	}
	return u.Username
}
