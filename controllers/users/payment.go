package users

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"project/database"
	"project/middleware"
	"project/models"
	"project/utils"

	"gorm.io/gorm"
)

var errInsufficientBalance = errors.New("insufficient balance")

type WithdrawRequest struct {
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	WalletAddress *string `json:"wallet_address,omitempty"`
}

type DepositRequest struct {
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

// ListPayments returns the caller's payment history, newest first, with
// optional ?type= and ?status= filters.
func ListPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	page, limit, offset := utils.ParsePagination(r)

	q := database.DB.Model(&models.Payment{}).Where("user_id = ?", userID)
	if t := r.URL.Query().Get("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if s := r.URL.Query().Get("status"); s != "" {
		if !models.ValidPaymentStatus(s) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid payment status"})
			return
		}
		q = q.Where("status = ?", s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var payments []models.Payment
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&payments).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"payments":   payments,
			"pagination": utils.Pagination{Page: page, Limit: limit, Total: total},
		},
	})
}

// Withdraw debits the caller's balance and records a pending withdrawal. The
// debit is conditional on the current balance so two concurrent requests can
// never overdraw the account.
func Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req WithdrawRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	if req.Amount <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid amount"})
		return
	}
	amount := utils.RoundAmount(req.Amount)

	setting, err := models.GetSetting(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if amount < setting.MinWithdrawalAmount {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: fmt.Sprintf("Minimum withdrawal amount is %.3f", setting.MinWithdrawalAmount),
		})
		return
	}
	if amount > setting.MaxWithdrawalAmount {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: fmt.Sprintf("Maximum withdrawal amount is %.3f", setting.MaxWithdrawalAmount),
		})
		return
	}

	method := req.Method
	if method == "" {
		method = models.PaymentMethodTonWallet
	}
	if method == models.PaymentMethodTonWallet && (req.WalletAddress == nil || *req.WalletAddress == "") {
		// fall back to the address saved on the profile
		var user models.User
		if err := database.DB.Select("wallet_address").First(&user, userID).Error; err == nil {
			req.WalletAddress = user.WalletAddress
		}
		if req.WalletAddress == nil || *req.WalletAddress == "" {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Wallet address is required"})
			return
		}
	}

	var payment models.Payment

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND balance >= ?", userID, amount).
			Updates(map[string]interface{}{
				"balance":         gorm.Expr("balance - ?", amount),
				"total_withdrawn": gorm.Expr("total_withdrawn + ?", amount),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errInsufficientBalance
		}

		txid := utils.GenerateTransactionID()
		payment = models.Payment{
			UserID:        userID,
			Type:          models.PaymentTypeWithdrawal,
			Amount:        amount,
			Status:        models.PaymentStatusPending,
			Method:        method,
			TransactionID: &txid,
			WalletAddress: req.WalletAddress,
			Description:   fmt.Sprintf("Withdrawal of %.3f", amount),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		notif := models.Notification{
			UserID:  userID,
			Title:   "Withdrawal requested",
			Message: fmt.Sprintf("Your withdrawal of %.3f is pending review", amount),
			Type:    models.NotificationTypePayment,
		}
		return tx.Create(&notif).Error
	})
	if err != nil {
		if errors.Is(err, errInsufficientBalance) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Insufficient balance"})
			return
		}
		log.Printf("[payments] withdraw transaction failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Withdrawal request created",
		Data:    map[string]interface{}{"payment": payment},
	})
}

// Deposit credits the caller's balance and records a completed deposit.
func Deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req DepositRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	if req.Amount <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid amount"})
		return
	}
	amount := utils.RoundAmount(req.Amount)

	method := req.Method
	if method == "" {
		method = models.PaymentMethodTonWallet
	}
	txid := req.TransactionID
	if txid == nil || *txid == "" {
		generated := utils.GenerateTransactionID()
		txid = &generated
	}

	var payment models.Payment

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		payment = models.Payment{
			UserID:        userID,
			Type:          models.PaymentTypeDeposit,
			Amount:        amount,
			Status:        models.PaymentStatusCompleted,
			Method:        method,
			TransactionID: txid,
			Description:   fmt.Sprintf("Deposit of %.3f", amount),
			ProcessedAt:   &now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"balance":      gorm.Expr("balance + ?", amount),
			"total_earned": gorm.Expr("total_earned + ?", amount),
		}).Error; err != nil {
			return err
		}

		notif := models.Notification{
			UserID:  userID,
			Title:   "Deposit received",
			Message: fmt.Sprintf("Your deposit of %.3f has been credited", amount),
			Type:    models.NotificationTypePayment,
		}
		return tx.Create(&notif).Error
	})
	if err != nil {
		log.Printf("[payments] deposit transaction failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Deposit completed",
		Data:    map[string]interface{}{"payment": payment},
	})
}
