package admins

import (
	"net/http"

	"project/database"
	"project/middleware"
	"project/models"
	"project/utils"
)

type UpdateSettingsRequest struct {
	MaintenanceMode      *bool    `json:"maintenance_mode,omitempty"`
	RegistrationEnabled  *bool    `json:"registration_enabled,omitempty"`
	MinWithdrawalAmount  *float64 `json:"min_withdrawal_amount,omitempty"`
	MaxWithdrawalAmount  *float64 `json:"max_withdrawal_amount,omitempty"`
	TaskRewardMultiplier *float64 `json:"task_reward_multiplier,omitempty"`
	ReferralBonus        *float64 `json:"referral_bonus,omitempty"`
	MaxTasksPerUser      *uint    `json:"max_tasks_per_user,omitempty"`
	SupportLink          *string  `json:"support_link,omitempty"`
}

func GetSettings(w http.ResponseWriter, r *http.Request) {
	setting, err := models.GetSetting(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Data:    map[string]interface{}{"settings": setting},
	})
}

func UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	setting, err := models.GetSetting(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	updates := map[string]interface{}{}
	if req.MaintenanceMode != nil {
		updates["maintenance_mode"] = *req.MaintenanceMode
	}
	if req.RegistrationEnabled != nil {
		updates["registration_enabled"] = *req.RegistrationEnabled
	}
	if req.MinWithdrawalAmount != nil {
		if *req.MinWithdrawalAmount < 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "min_withdrawal_amount cannot be negative"})
			return
		}
		updates["min_withdrawal_amount"] = *req.MinWithdrawalAmount
	}
	if req.MaxWithdrawalAmount != nil {
		if *req.MaxWithdrawalAmount <= 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "max_withdrawal_amount must be positive"})
			return
		}
		updates["max_withdrawal_amount"] = *req.MaxWithdrawalAmount
	}
	if req.TaskRewardMultiplier != nil {
		if *req.TaskRewardMultiplier <= 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "task_reward_multiplier must be positive"})
			return
		}
		updates["task_reward_multiplier"] = *req.TaskRewardMultiplier
	}
	if req.ReferralBonus != nil {
		if *req.ReferralBonus < 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "referral_bonus cannot be negative"})
			return
		}
		updates["referral_bonus"] = *req.ReferralBonus
	}
	if req.MaxTasksPerUser != nil {
		updates["max_tasks_per_user"] = *req.MaxTasksPerUser
	}
	if req.SupportLink != nil {
		updates["support_link"] = *req.SupportLink
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nothing to update"})
		return
	}

	minAmount := setting.MinWithdrawalAmount
	maxAmount := setting.MaxWithdrawalAmount
	if req.MinWithdrawalAmount != nil {
		minAmount = *req.MinWithdrawalAmount
	}
	if req.MaxWithdrawalAmount != nil {
		maxAmount = *req.MaxWithdrawalAmount
	}
	if minAmount > maxAmount {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "min_withdrawal_amount cannot exceed max_withdrawal_amount"})
		return
	}

	if err := database.DB.Model(setting).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if err := database.DB.Take(setting).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Settings updated",
		Data:    map[string]interface{}{"settings": setting},
	})
}
