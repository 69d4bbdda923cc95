package auth

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"project/database"
	"project/middleware"
	"project/models"
	"project/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	Username     string  `json:"username" validate:"required,username"`
	Password     string  `json:"password" validate:"required,pwdmin"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	ReferralCode *string `json:"referral_code,omitempty"`
}

// RegisterHandler creates a new account, wires up the referral chain when a
// valid code is supplied and returns an access/refresh token pair.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	db := database.DB

	setting, err := models.GetSetting(db)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if setting.MaintenanceMode {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{
			Success: false,
			Message: "The platform is under maintenance. Please try again later.",
			Data:    map[string]interface{}{"maintenance": true},
		})
		return
	}
	if !setting.RegistrationEnabled {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Registration is currently disabled"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ? OR username = ?", email, username).Count(&count).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if count > 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Email or username already registered"})
		return
	}

	// resolve referrer before opening the transaction so a bad code fails fast
	var referrer *models.User
	if req.ReferralCode != nil && *req.ReferralCode != "" {
		var ref models.User
		if err := db.Where("referral_code = ?", strings.ToUpper(strings.TrimSpace(*req.ReferralCode))).First(&ref).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid referral code"})
				return
			}
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
			return
		}
		referrer = &ref
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	code, err := generateUniqueReferralCode(db, 8)
	if err != nil {
		log.Printf("[register] referral code generation failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	newUser := models.User{
		Email:        email,
		Username:     username,
		Password:     string(hashed),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleUser,
		IsActive:     true,
		ReferralCode: code,
	}
	if referrer != nil {
		newUser.ReferredBy = &referrer.ID
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		if referrer != nil {
			if err := tx.Model(&models.User{}).Where("id = ?", referrer.ID).
				Update("referral_count", gorm.Expr("referral_count + 1")).Error; err != nil {
				return err
			}
			if setting.ReferralBonus > 0 {
				txid := utils.GenerateTransactionID()
				bonus := models.Payment{
					UserID:        referrer.ID,
					Type:          models.PaymentTypeReferral,
					Amount:        setting.ReferralBonus,
					Status:        models.PaymentStatusCompleted,
					Method:        models.PaymentMethodSystem,
					TransactionID: &txid,
					Description:   fmt.Sprintf("Referral bonus for inviting %s", newUser.Username),
					ProcessedAt:   ptrTime(time.Now()),
				}
				if err := tx.Create(&bonus).Error; err != nil {
					return err
				}
				if err := tx.Model(&models.User{}).Where("id = ?", referrer.ID).Updates(map[string]interface{}{
					"balance":      gorm.Expr("balance + ?", setting.ReferralBonus),
					"total_earned": gorm.Expr("total_earned + ?", setting.ReferralBonus),
				}).Error; err != nil {
					return err
				}
			}
		}
		welcome := models.Notification{
			UserID:  newUser.ID,
			Title:   "Welcome!",
			Message: "Your account has been created. Complete tasks to start earning.",
			Type:    models.NotificationTypeSystem,
		}
		return tx.Create(&welcome).Error
	})
	if err != nil {
		log.Printf("[register] transaction failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	accessToken, err := utils.GenerateAccessToken(newUser.ID, newUser.Email, newUser.Role)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to generate token"})
		return
	}
	refreshJTI, err := utils.GenerateRefreshToken(newUser.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store refresh token"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Registration successful",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshJTI,
			"user":          newUser,
		},
	})
}

func generateUniqueReferralCode(db *gorm.DB, length int) (string, error) {
	const maxAttempts = 100
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := utils.GenerateReferralCode(length)
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique referral code after %d attempts", maxAttempts)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
