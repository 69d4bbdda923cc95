package admins

import (
	"net/http"
	"strconv"
	"time"

	"project/database"
	"project/middleware"
	"project/models"
	"project/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	Title          string     `json:"title" validate:"required"`
	Description    string     `json:"description" validate:"required"`
	Type           string     `json:"type" validate:"required"`
	Reward         float64    `json:"reward"`
	MaxCompletions *uint      `json:"max_completions,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Category       string     `json:"category" validate:"required"`
	Difficulty     string     `json:"difficulty,omitempty"`
	EstimatedTime  uint       `json:"estimated_time,omitempty"`
}

type UpdateTaskRequest struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Reward         *float64   `json:"reward,omitempty"`
	IsActive       *bool      `json:"is_active,omitempty"`
	MaxCompletions *uint      `json:"max_completions,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Category       *string    `json:"category,omitempty"`
	Difficulty     *string    `json:"difficulty,omitempty"`
	EstimatedTime  *uint      `json:"estimated_time,omitempty"`
}

// ListTasks returns every task including inactive ones, newest first.
func ListTasks(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := utils.ParsePagination(r)

	q := database.DB.Model(&models.Task{})
	if active := r.URL.Query().Get("active"); active != "" {
		q = q.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var tasks []models.Task
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&tasks).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"tasks":      tasks,
			"pagination": utils.Pagination{Page: page, Limit: limit, Total: total},
		},
	})
}

func CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	if !models.ValidTaskType(req.Type) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task type"})
		return
	}
	if req.Reward <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Reward must be positive"})
		return
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.TaskDifficultyEasy
	}
	if !models.ValidTaskDifficulty(difficulty) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task difficulty"})
		return
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "end_date must be after start_date"})
		return
	}

	estimated := req.EstimatedTime
	if estimated == 0 {
		estimated = 5
	}

	task := models.Task{
		Title:          req.Title,
		Description:    req.Description,
		Type:           req.Type,
		Reward:         utils.RoundAmount(req.Reward),
		IsActive:       true,
		MaxCompletions: req.MaxCompletions,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Category:       req.Category,
		Difficulty:     difficulty,
		EstimatedTime:  estimated,
	}
	if err := database.DB.Create(&task).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Task created",
		Data:    map[string]interface{}{"task": task},
	})
}

func UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}

	var req UpdateTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var task models.Task
	if err := database.DB.First(&task, uint(taskID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Reward != nil {
		if *req.Reward <= 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Reward must be positive"})
			return
		}
		updates["reward"] = utils.RoundAmount(*req.Reward)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.MaxCompletions != nil {
		// shrinking the cap below what is already completed would deadlock
		// the counter guard
		if *req.MaxCompletions < task.CurrentCompletions {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "max_completions cannot be below current completions"})
			return
		}
		updates["max_completions"] = *req.MaxCompletions
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Difficulty != nil {
		if !models.ValidTaskDifficulty(*req.Difficulty) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task difficulty"})
			return
		}
		updates["difficulty"] = *req.Difficulty
	}
	if req.EstimatedTime != nil {
		updates["estimated_time"] = *req.EstimatedTime
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nothing to update"})
		return
	}

	if err := database.DB.Model(&task).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Task updated",
		Data:    map[string]interface{}{"task": task},
	})
}

// DeleteTask removes a task that was never completed; tasks with completion
// history are deactivated instead so the ledger keeps its references.
func DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}

	var task models.Task
	if err := database.DB.First(&task, uint(taskID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var completions int64
	database.DB.Model(&models.TaskCompletion{}).Where("task_id = ?", task.ID).Count(&completions)
	if completions > 0 {
		if err := database.DB.Model(&task).Update("is_active", false).Error; err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task has completions and was deactivated instead"})
		return
	}

	if err := database.DB.Delete(&task).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task deleted"})
}
