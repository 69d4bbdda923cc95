package models

import "gorm.io/gorm"

// Setting is a single-row table holding platform-wide knobs. GetSetting
// creates the row with defaults on first access.
type Setting struct {
	ID                   uint    `gorm:"primaryKey" json:"id"`
	MaintenanceMode      bool    `gorm:"default:false" json:"maintenance_mode"`
	RegistrationEnabled  bool    `gorm:"default:true" json:"registration_enabled"`
	MinWithdrawalAmount  float64 `gorm:"type:decimal(18,3);default:0.001" json:"min_withdrawal_amount"`
	MaxWithdrawalAmount  float64 `gorm:"type:decimal(18,3);default:1000" json:"max_withdrawal_amount"`
	TaskRewardMultiplier float64 `gorm:"type:decimal(6,3);default:1" json:"task_reward_multiplier"`
	ReferralBonus        float64 `gorm:"type:decimal(18,3);default:0" json:"referral_bonus"`
	MaxTasksPerUser      uint    `gorm:"default:10" json:"max_tasks_per_user"`
	SupportLink          string  `gorm:"size:255" json:"support_link"`
}

func (Setting) TableName() string {
	return "settings"
}

// DefaultSetting mirrors the values seeded on a fresh database.
func DefaultSetting() Setting {
	return Setting{
		MaintenanceMode:      false,
		RegistrationEnabled:  true,
		MinWithdrawalAmount:  0.001,
		MaxWithdrawalAmount:  1000,
		TaskRewardMultiplier: 1,
		ReferralBonus:        0,
		MaxTasksPerUser:      10,
	}
}

func GetSetting(db *gorm.DB) (*Setting, error) {
	var s Setting
	if err := db.Take(&s).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		s = DefaultSetting()
		if err := db.Create(&s).Error; err != nil {
			return nil, err
		}
	}
	return &s, nil
}
