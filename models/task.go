package models

import "time"

const (
	TaskTypeDaily       = "daily"
	TaskTypeWeekly      = "weekly"
	TaskTypeOneTime     = "one_time"
	TaskTypeReferral    = "referral"
	TaskTypeSocialMedia = "social_media"
)

const (
	TaskDifficultyEasy   = "easy"
	TaskDifficultyMedium = "medium"
	TaskDifficultyHard   = "hard"
)

func ValidTaskType(t string) bool {
	switch t {
	case TaskTypeDaily, TaskTypeWeekly, TaskTypeOneTime, TaskTypeReferral, TaskTypeSocialMedia:
		return true
	}
	return false
}

func ValidTaskDifficulty(d string) bool {
	switch d {
	case TaskDifficultyEasy, TaskDifficultyMedium, TaskDifficultyHard:
		return true
	}
	return false
}

type Task struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Title              string     `gorm:"size:100;not null" json:"title"`
	Description        string     `gorm:"size:500;not null" json:"description"`
	Type               string     `gorm:"size:20;not null;index:idx_tasks_type_active" json:"type"`
	Reward             float64    `gorm:"type:decimal(18,3);not null" json:"reward"`
	IsActive           bool       `gorm:"default:true;index:idx_tasks_type_active" json:"is_active"`
	MaxCompletions     *uint      `json:"max_completions,omitempty"`
	CurrentCompletions uint       `gorm:"default:0;not null" json:"current_completions"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Category           string     `gorm:"size:50;not null;index" json:"category"`
	Difficulty         string     `gorm:"size:10;default:'easy'" json:"difficulty"`
	EstimatedTime      uint       `gorm:"default:5" json:"estimated_time"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

/// Available reports whether the task can be completed at the given time:
// it must be active, inside its date window and under its completion cap.
func (t *Task) Available(now time.Time) bool {
	if !t.IsActive {
		return false
	}
	if t.StartDate != nil && now.Before(*t.StartDate) {
		return false
	}
	if t.EndDate != nil && now.After(*t.EndDate) {
		return false
	}
	if t.MaxCompletions != nil && t.CurrentCompletions >= *t.MaxCompletions {
		return false
	}
	return true
}

// CompletionPercentage is 0 for uncapped tasks.
func (t *Task) CompletionPercentage() int {
	if t.MaxCompletions == nil || *t.MaxCompletions == 0 {
		return 0
	}
	pct := int(float64(t.CurrentCompletions) / float64(*t.MaxCompletions) * 100)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// TaskCompletion records that a user completed a task. The unique index on
// (user_id, task_id) makes completion idempotent: the same user cannot be
// paid twice for the same task.
type TaskCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_completions_user_task" json:"user_id"`
	TaskID      uint      `gorm:"not null;uniqueIndex:idx_completions_user_task" json:"task_id"`
	Reward      float64   `gorm:"type:decimal(18,3);not null" json:"reward"`
	CompletedAt time.Time `json:"completed_at"`
}

func (TaskCompletion) TableName() string {
	return "task_completions"
}
