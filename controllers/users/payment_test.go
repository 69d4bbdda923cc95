package users

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"project/models"
)

func strPtr(s string) *string {
	return &s
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice@example.com", 3)

	req := authedRequest(t, http.MethodPost, "/api/payments/withdraw", WithdrawRequest{
		Amount:        5,
		WalletAddress: strPtr("EQAbc123def456ghi789"),
	}, user)
	rec := httptest.NewRecorder()
	Withdraw(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decodeResponse(t, rec); resp.Message != "Insufficient balance" {
		t.Errorf("unexpected message %q", resp.Message)
	}

	// the failed attempt must leave no trace
	var count int64
	db.Model(&models.Payment{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("no payment row expected, got %d", count)
	}
	var fresh models.User
	db.First(&fresh, user.ID)
	if fresh.Balance != 3 || fresh.TotalWithdrawn != 0 {
		t.Errorf("balance must be untouched, got %v/%v", fresh.Balance, fresh.TotalWithdrawn)
	}
}

func TestWithdrawSuccess(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "bob@example.com", 10)

	req := authedRequest(t, http.MethodPost, "/api/payments/withdraw", WithdrawRequest{
		Amount:        5,
		WalletAddress: strPtr("EQAbc123def456ghi789"),
	}, user)
	rec := httptest.NewRecorder()
	Withdraw(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var payment models.Payment
	if err := db.Where("user_id = ? AND type = ?", user.ID, models.PaymentTypeWithdrawal).First(&payment).Error; err != nil {
		t.Fatalf("expected withdrawal row: %v", err)
	}
	if payment.Status != models.PaymentStatusPending {
		t.Errorf("withdrawal must start pending, got %s", payment.Status)
	}
	if payment.ProcessedAt != nil {
		t.Error("pending withdrawal must not be processed yet")
	}
	if payment.TransactionID == nil || *payment.TransactionID == "" {
		t.Error("withdrawal must carry a transaction id")
	}

	var fresh models.User
	db.First(&fresh, user.ID)
	if fresh.Balance != 5 || fresh.TotalWithdrawn != 5 {
		t.Errorf("expected balance 5 and total_withdrawn 5, got %v/%v", fresh.Balance, fresh.TotalWithdrawn)
	}
}

func TestWithdrawInvalidAmount(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "carol@example.com", 10)

	for _, amount := range []float64{0, -5} {
		req := authedRequest(t, http.MethodPost, "/api/payments/withdraw", WithdrawRequest{
			Amount:        amount,
			WalletAddress: strPtr("EQAbc123def456ghi789"),
		}, user)
		rec := httptest.NewRecorder()
		Withdraw(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("amount %v: expected 400, got %d", amount, rec.Code)
		}
		if resp := decodeResponse(t, rec); resp.Message != "Invalid amount" {
			t.Errorf("amount %v: unexpected message %q", amount, resp.Message)
		}
	}

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	if count != 0 {
		t.Errorf("invalid amounts must not create payments, got %d", count)
	}
}

func TestWithdrawBelowMinimum(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "dave@example.com", 10)

	setting, err := models.GetSetting(db)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	db.Model(setting).Update("min_withdrawal_amount", 1)

	req := authedRequest(t, http.MethodPost, "/api/payments/withdraw", WithdrawRequest{
		Amount:        0.5,
		WalletAddress: strPtr("EQAbc123def456ghi789"),
	}, user)
	rec := httptest.NewRecorder()
	Withdraw(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 below minimum, got %d", rec.Code)
	}
}

func TestWithdrawMissingWallet(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "erin@example.com", 10)

	req := authedRequest(t, http.MethodPost, "/api/payments/withdraw", WithdrawRequest{Amount: 5}, user)
	rec := httptest.NewRecorder()
	Withdraw(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without wallet, got %d", rec.Code)
	}
}

func TestWithdrawUsesProfileWallet(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "frank@example.com", 10)
	db.Model(user).Update("wallet_address", "EQProfileWallet12345")

	req := authedRequest(t, http.MethodPost, "/api/payments/withdraw", WithdrawRequest{Amount: 5}, user)
	rec := httptest.NewRecorder()
	Withdraw(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with profile wallet, got %d: %s", rec.Code, rec.Body.String())
	}

	var payment models.Payment
	db.Where("user_id = ?", user.ID).First(&payment)
	if payment.WalletAddress == nil || *payment.WalletAddress != "EQProfileWallet12345" {
		t.Errorf("payment should use the saved wallet, got %v", payment.WalletAddress)
	}
}

func TestDeposit(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "grace@example.com", 0)

	req := authedRequest(t, http.MethodPost, "/api/payments/deposit", DepositRequest{Amount: 20}, user)
	rec := httptest.NewRecorder()
	Deposit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var fresh models.User
	db.First(&fresh, user.ID)
	if fresh.Balance != 20 {
		t.Errorf("expected balance 20, got %v", fresh.Balance)
	}
	if fresh.TotalEarned != 20 {
		t.Errorf("deposit must credit total_earned, got %v", fresh.TotalEarned)
	}

	var payment models.Payment
	if err := db.Where("user_id = ? AND type = ?", user.ID, models.PaymentTypeDeposit).First(&payment).Error; err != nil {
		t.Fatalf("expected deposit row: %v", err)
	}
	if payment.Status != models.PaymentStatusCompleted {
		t.Errorf("deposit must complete immediately, got %s", payment.Status)
	}
	if payment.ProcessedAt == nil {
		t.Error("completed deposit must carry processed_at")
	}
}

func TestDepositInvalidAmount(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "heidi@example.com", 0)

	req := authedRequest(t, http.MethodPost, "/api/payments/deposit", DepositRequest{Amount: 0}, user)
	rec := httptest.NewRecorder()
	Deposit(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	if count != 0 {
		t.Errorf("invalid deposit must not create payments, got %d", count)
	}
	var fresh models.User
	db.First(&fresh, user.ID)
	if fresh.Balance != 0 {
		t.Errorf("invalid deposit must not credit, got %v", fresh.Balance)
	}
}

func TestListPayments(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ivan@example.com", 100)
	other := createTestUser(t, db, "judy@example.com", 100)

	for _, uid := range []uint{user.ID, user.ID, other.ID} {
		p := models.Payment{
			UserID:      uid,
			Type:        models.PaymentTypeReward,
			Amount:      1,
			Status:      models.PaymentStatusCompleted,
			Method:      models.PaymentMethodSystem,
			Description: "test reward",
		}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed payment: %v", err)
		}
	}

	req := authedRequest(t, http.MethodGet, "/api/payments", nil, user)
	rec := httptest.NewRecorder()
	ListPayments(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	payments := resp.Data["payments"].([]interface{})
	if len(payments) != 2 {
		t.Fatalf("expected only the caller's 2 payments, got %d", len(payments))
	}
}
