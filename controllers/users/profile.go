package users

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"project/database"
	"project/middleware"
	"project/models"
	"project/utils"

	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	TelegramUsername *string `json:"telegram_username,omitempty"`
	WalletAddress    *string `json:"wallet_address,omitempty" validate:"wallet"`
}

// GetProfile returns the caller's account with earnings and referral stats.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var completedTasks int64
	database.DB.Model(&models.TaskCompletion{}).Where("user_id = ?", userID).Count(&completedTasks)

	var pendingWithdrawals float64
	database.DB.Model(&models.Payment{}).
		Where("user_id = ? AND type = ? AND status = ?", userID, models.PaymentTypeWithdrawal, models.PaymentStatusPending).
		Select("COALESCE(SUM(amount),0)").Scan(&pendingWithdrawals)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"user":                user,
			"completed_tasks":     completedTasks,
			"pending_withdrawals": pendingWithdrawals,
		},
	})
}

// UpdateProfile changes the caller's mutable profile fields. Email, username,
// role and balances are never updatable through this endpoint.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.TelegramUsername != nil {
		updates["telegram_username"] = strings.TrimPrefix(*req.TelegramUsername, "@")
	}
	if req.WalletAddress != nil {
		updates["wallet_address"] = *req.WalletAddress
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nothing to update"})
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Profile updated",
		Data:    map[string]interface{}{"user": user},
	})
}

// UploadAvatar stores a new avatar image and saves its object name on the
// profile. Accepts jpeg/png/webp up to 2 MiB.
func UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	if err := r.ParseMultipartForm(2 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "avatar file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unsupported image format"})
		return
	}

	objectName := fmt.Sprintf("avatars/user-%d-%d%s", userID, time.Now().Unix(), ext)
	if err := utils.UploadToStorage(objectName, file); err != nil {
		log.Printf("[profile] avatar upload failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Upload failed"})
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("avatar", objectName).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	url, _ := utils.GenerateSignedURL(objectName, 3600)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Avatar updated",
		Data:    map[string]interface{}{"avatar": objectName, "url": url},
	})
}
