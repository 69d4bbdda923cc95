package admins

import (
	"net/http"
	"strconv"
	"strings"

	"project/database"
	"project/middleware"
	"project/models"
	"project/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type UpdateUserRequest struct {
	Role       *string `json:"role,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
	IsVerified *bool   `json:"is_verified,omitempty"`
}

// ListUsers returns all accounts with optional ?search= (email or username)
// and ?role=/?active= filters.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := utils.ParsePagination(r)

	q := database.DB.Model(&models.User{})
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		like := "%" + search + "%"
		q = q.Where("email LIKE ? OR username LIKE ?", like, like)
	}
	if role := r.URL.Query().Get("role"); role != "" {
		if !models.ValidRole(role) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid role"})
			return
		}
		q = q.Where("role = ?", role)
	}
	if active := r.URL.Query().Get("active"); active != "" {
		q = q.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var users []models.User
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"users":      users,
			"pagination": utils.Pagination{Page: page, Limit: limit, Total: total},
		},
	})
}

// GetUser returns one account with its payment and completion counts.
func GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, uint(userID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var completions, payments int64
	database.DB.Model(&models.TaskCompletion{}).Where("user_id = ?", user.ID).Count(&completions)
	database.DB.Model(&models.Payment{}).Where("user_id = ?", user.ID).Count(&payments)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"user":            user,
			"completed_tasks": completions,
			"payment_count":   payments,
		},
	})
}

// UpdateUser changes role, active or verified flags. An admin cannot
// deactivate or demote their own account.
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	var req UpdateUserRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	callerID, _ := utils.GetUserID(r)
	if uint(targetID) == callerID && ((req.IsActive != nil && !*req.IsActive) || (req.Role != nil && *req.Role != models.RoleAdmin)) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "You cannot deactivate or demote your own account"})
		return
	}

	updates := map[string]interface{}{}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid role"})
			return
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsVerified != nil {
		updates["is_verified"] = *req.IsVerified
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nothing to update"})
		return
	}

	res := database.DB.Model(&models.User{}).Where("id = ?", uint(targetID)).Updates(updates)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	var user models.User
	database.DB.First(&user, uint(targetID))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "User updated",
		Data:    map[string]interface{}{"user": user},
	})
}

// DeactivateUser is the delete operation for accounts: the row stays so the
// ledger keeps its references, the account just loses access.
func DeactivateUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	callerID, _ := utils.GetUserID(r)
	if uint(targetID) == callerID {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "You cannot deactivate or demote your own account"})
		return
	}

	res := database.DB.Model(&models.User{}).Where("id = ?", uint(targetID)).Update("is_active", false)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "User deactivated"})
}
