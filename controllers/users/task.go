package users

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"project/database"
	"project/models"
	"project/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

var (
	errTaskInactive  = errors.New("task is not active")
	errTaskCapped    = errors.New("task has reached maximum completions")
	errTaskCompleted = errors.New("task already completed")
)

// ListTasks returns active tasks the caller can still see, newest first.
// Supports ?type=, ?category= and ?difficulty= filters plus pagination.
func ListTasks(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := utils.ParsePagination(r)

	// Availability lives in the query so Count and Find agree and the
	// pagination total matches what the page actually returns.
	now := time.Now()
	q := database.DB.Model(&models.Task{}).
		Where("is_active = ?", true).
		Where("(start_date IS NULL OR start_date <= ?)", now).
		Where("(end_date IS NULL OR end_date >= ?)", now).
		Where("(max_completions IS NULL OR current_completions < max_completions)")
	if t := r.URL.Query().Get("type"); t != "" {
		if !models.ValidTaskType(t) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task type"})
			return
		}
		q = q.Where("type = ?", t)
	}
	if c := r.URL.Query().Get("category"); c != "" {
		q = q.Where("category = ?", c)
	}
	if d := r.URL.Query().Get("difficulty"); d != "" {
		if !models.ValidTaskDifficulty(d) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task difficulty"})
			return
		}
		q = q.Where("difficulty = ?", d)
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

// GetTask returns a single task by id, including the caller's completion state.
func GetTask(w http.ResponseWriter, r *http.Request) {
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

	data := map[string]interface{}{
		"task":                  task,
		"available":             task.Available(time.Now()),
		"completion_percentage": task.CompletionPercentage(),
	}
	if userID, ok := utils.GetUserID(r); ok {
		var done int64
		database.DB.Model(&models.TaskCompletion{}).
			Where("user_id = ? AND task_id = ?", userID, task.ID).Count(&done)
		data["completed"] = done > 0
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Data: data})
}

// CompleteTask pays the caller for a task. The completion record, the task
// counter bump and the balance credit commit in one transaction; the counter
// update carries its own cap guard so concurrent completions cannot overshoot.
func CompleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	taskID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}

	setting, err := models.GetSetting(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var reward, newBalance float64

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, uint(taskID)).Error; err != nil {
			return err
		}

		now := time.Now()
		if !task.IsActive ||
			(task.StartDate != nil && now.Before(*task.StartDate)) ||
			(task.EndDate != nil && now.After(*task.EndDate)) {
			return errTaskInactive
		}
		if task.MaxCompletions != nil && task.CurrentCompletions >= *task.MaxCompletions {
			return errTaskCapped
		}

		var done int64
		if err := tx.Model(&models.TaskCompletion{}).
			Where("user_id = ? AND task_id = ?", userID, task.ID).Count(&done).Error; err != nil {
			return err
		}
		if done > 0 {
			return errTaskCompleted
		}

		reward = utils.RoundAmount(task.Reward * setting.TaskRewardMultiplier)

		completion := models.TaskCompletion{
			UserID:      userID,
			TaskID:      task.ID,
			Reward:      reward,
			CompletedAt: now,
		}
		// the unique (user_id, task_id) index catches the race two requests
		// from the same user can win against the count above
		if err := tx.Create(&completion).Error; err != nil {
			return errTaskCompleted
		}

		res := tx.Model(&models.Task{}).
			Where("id = ? AND (max_completions IS NULL OR current_completions < max_completions)", task.ID).
			Update("current_completions", gorm.Expr("current_completions + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errTaskCapped
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"balance":      gorm.Expr("balance + ?", reward),
			"total_earned": gorm.Expr("total_earned + ?", reward),
		}).Error; err != nil {
			return err
		}

		txid := utils.GenerateTransactionID()
		payment := models.Payment{
			UserID:        userID,
			Type:          models.PaymentTypeReward,
			Amount:        reward,
			Status:        models.PaymentStatusCompleted,
			Method:        models.PaymentMethodSystem,
			TransactionID: &txid,
			Description:   fmt.Sprintf("Reward for completing task: %s", task.Title),
			ProcessedAt:   &now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		notif := models.Notification{
			UserID:  userID,
			Title:   "Task completed",
			Message: fmt.Sprintf("You earned %.3f for completing %q", reward, task.Title),
			Type:    models.NotificationTypeTask,
		}
		if err := tx.Create(&notif).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.Select("balance").First(&user, userID).Error; err != nil {
			return err
		}
		newBalance = user.Balance
		return nil
	})

	switch {
	case err == nil:
	case err == gorm.ErrRecordNotFound:
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
		return
	case errors.Is(err, errTaskInactive):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Task is not active"})
		return
	case errors.Is(err, errTaskCapped):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Task has reached maximum completions"})
		return
	case errors.Is(err, errTaskCompleted):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Task already completed"})
		return
	default:
		log.Printf("[tasks] complete transaction failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Task completed",
		Data: map[string]interface{}{
			"reward":      reward,
			"new_balance": newBalance,
		},
	})
}

// ListCompletions returns the caller's completion history, newest first.
func ListCompletions(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	page, limit, offset := utils.ParsePagination(r)

	var total int64
	if err := database.DB.Model(&models.TaskCompletion{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var completions []models.TaskCompletion
	if err := database.DB.Where("user_id = ?", userID).
		Order("completed_at DESC").Limit(limit).Offset(offset).
		Find(&completions).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"completions": completions,
			"pagination":  utils.Pagination{Page: page, Limit: limit, Total: total},
		},
	})
}
