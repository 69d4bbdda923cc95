package admins

import (
	"net/http"
	"time"

	"project/database"
	"project/models"
	"project/utils"
)

// Dashboard aggregates platform-wide stats for the admin overview screen.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	var totalUsers, activeUsers, newUsersToday int64
	db.Model(&models.User{}).Count(&totalUsers)
	db.Model(&models.User{}).Where("is_active = ?", true).Count(&activeUsers)
	startOfDay := time.Now().Truncate(24 * time.Hour)
	db.Model(&models.User{}).Where("created_at >= ?", startOfDay).Count(&newUsersToday)

	var totalTasks, activeTasks, completionsToday int64
	db.Model(&models.Task{}).Count(&totalTasks)
	db.Model(&models.Task{}).Where("is_active = ?", true).Count(&activeTasks)
	db.Model(&models.TaskCompletion{}).Where("completed_at >= ?", startOfDay).Count(&completionsToday)

	var pendingWithdrawals int64
	var pendingWithdrawalSum float64
	db.Model(&models.Payment{}).
		Where("type = ? AND status = ?", models.PaymentTypeWithdrawal, models.PaymentStatusPending).
		Count(&pendingWithdrawals)
	db.Model(&models.Payment{}).
		Where("type = ? AND status = ?", models.PaymentTypeWithdrawal, models.PaymentStatusPending).
		Select("COALESCE(SUM(amount),0)").Scan(&pendingWithdrawalSum)

	var totalRewardsPaid, totalDeposited, totalWithdrawn float64
	db.Model(&models.Payment{}).
		Where("type = ? AND status = ?", models.PaymentTypeReward, models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount),0)").Scan(&totalRewardsPaid)
	db.Model(&models.Payment{}).
		Where("type = ? AND status = ?", models.PaymentTypeDeposit, models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount),0)").Scan(&totalDeposited)
	db.Model(&models.Payment{}).
		Where("type = ? AND status = ?", models.PaymentTypeWithdrawal, models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount),0)").Scan(&totalWithdrawn)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"users": map[string]interface{}{
				"total":     totalUsers,
				"active":    activeUsers,
				"new_today": newUsersToday,
			},
			"tasks": map[string]interface{}{
				"total":             totalTasks,
				"active":            activeTasks,
				"completions_today": completionsToday,
			},
			"payments": map[string]interface{}{
				"pending_withdrawals":    pendingWithdrawals,
				"pending_withdrawal_sum": pendingWithdrawalSum,
				"total_rewards_paid":     totalRewardsPaid,
				"total_deposited":        totalDeposited,
				"total_withdrawn":        totalWithdrawn,
			},
		},
	})
}
