package admins

import (
	"errors"
	"fmt"
	"log"
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

var errInvalidTransition = errors.New("invalid status transition")

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note,omitempty"`
}

// ListPayments returns payments across all users with ?type=, ?status= and
// ?user_id= filters, newest first.
func ListPayments(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := utils.ParsePagination(r)

	q := database.DB.Model(&models.Payment{})
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
	if uid := r.URL.Query().Get("user_id"); uid != "" {
		id, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user_id"})
			return
		}
		q = q.Where("user_id = ?", uint(id))
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

// UpdatePaymentStatus moves a pending payment to a final state. Failing or
// cancelling a withdrawal refunds the debited amount in the same transaction,
// so the money is either on its way out or back on the balance, never neither.
func UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	paymentID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid payment id"})
		return
	}

	var req UpdatePaymentStatusRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if !models.ValidPaymentStatus(req.Status) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid payment status"})
		return
	}

	var payment models.Payment

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, uint(paymentID)).Error; err != nil {
			return err
		}
		if !models.CanTransition(payment.Status, req.Status) {
			return errInvalidTransition
		}

		// processed_at marks the moment money actually moved out, so only
		// the completed transition stamps it
		updates := map[string]interface{}{"status": req.Status}
		if req.Status == models.PaymentStatusCompleted {
			updates["processed_at"] = time.Now()
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}

		refunded := payment.Type == models.PaymentTypeWithdrawal &&
			(req.Status == models.PaymentStatusFailed || req.Status == models.PaymentStatusCancelled)
		if refunded {
			if err := tx.Model(&models.User{}).Where("id = ?", payment.UserID).Updates(map[string]interface{}{
				"balance":         gorm.Expr("balance + ?", payment.Amount),
				"total_withdrawn": gorm.Expr("total_withdrawn - ?", payment.Amount),
			}).Error; err != nil {
				return err
			}
		}

		title := "Withdrawal " + req.Status
		message := fmt.Sprintf("Your withdrawal of %.3f was %s", payment.Amount, req.Status)
		if refunded {
			message += " and the amount was returned to your balance"
		}
		if payment.Type != models.PaymentTypeWithdrawal {
			title = "Payment " + req.Status
			message = fmt.Sprintf("Your %s of %.3f was %s", payment.Type, payment.Amount, req.Status)
		}
		if req.Note != "" {
			message += ". Note: " + req.Note
		}
		notif := models.Notification{
			UserID:  payment.UserID,
			Title:   title,
			Message: message,
			Type:    models.NotificationTypePayment,
		}
		if err := tx.Create(&notif).Error; err != nil {
			return err
		}
		return tx.First(&payment, payment.ID).Error
	})

	switch {
	case err == nil:
	case err == gorm.ErrRecordNotFound:
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Payment not found"})
		return
	case errors.Is(err, errInvalidTransition):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: fmt.Sprintf("Cannot change payment status from %s to %s", payment.Status, req.Status),
		})
		return
	default:
		log.Printf("[admin] payment status update failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Payment status updated",
		Data:    map[string]interface{}{"payment": payment},
	})
}
