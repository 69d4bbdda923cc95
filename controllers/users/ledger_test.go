package users

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"project/models"
)

// The balance must always equal credits minus debits recorded in the payment
// ledger. Runs a deposit, a task completion and a withdrawal and reconciles.
func TestLedgerReconciliation(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "ledger@example.com", 0)
	createTestTask(t, 10, nil)

	req := authedRequest(t, http.MethodPost, "/api/payments/deposit", DepositRequest{Amount: 20}, user)
	rec := httptest.NewRecorder()
	Deposit(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("deposit failed: %d", rec.Code)
	}

	if rec := completeTask(t, user, "1"); rec.Code != http.StatusOK {
		t.Fatalf("task completion failed: %d", rec.Code)
	}

	req = authedRequest(t, http.MethodPost, "/api/payments/withdraw", WithdrawRequest{
		Amount:        5,
		WalletAddress: strPtr("EQAbc123def456ghi789"),
	}, user)
	rec = httptest.NewRecorder()
	Withdraw(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("withdraw failed: %d", rec.Code)
	}

	var fresh models.User
	db.First(&fresh, user.ID)
	if fresh.Balance != 25 {
		t.Errorf("expected balance 25 (20 + 10 - 5), got %v", fresh.Balance)
	}
	if fresh.TotalEarned != 30 || fresh.TotalWithdrawn != 5 {
		t.Errorf("unexpected totals earned=%v withdrawn=%v", fresh.TotalEarned, fresh.TotalWithdrawn)
	}
	if fresh.Balance != fresh.TotalEarned-fresh.TotalWithdrawn {
		t.Errorf("balance %v must equal total_earned %v - total_withdrawn %v",
			fresh.Balance, fresh.TotalEarned, fresh.TotalWithdrawn)
	}

	var credits, debits float64
	db.Model(&models.Payment{}).
		Where("user_id = ? AND type IN ? AND status = ?", user.ID,
			[]string{models.PaymentTypeDeposit, models.PaymentTypeReward, models.PaymentTypeBonus, models.PaymentTypeReferral},
			models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount),0)").Scan(&credits)
	db.Model(&models.Payment{}).
		Where("user_id = ? AND type = ? AND status IN ?", user.ID,
			models.PaymentTypeWithdrawal,
			[]string{models.PaymentStatusPending, models.PaymentStatusCompleted}).
		Select("COALESCE(SUM(amount),0)").Scan(&debits)
	if credits-debits != fresh.Balance {
		t.Errorf("ledger does not reconcile: credits %v - debits %v != balance %v", credits, debits, fresh.Balance)
	}
}
