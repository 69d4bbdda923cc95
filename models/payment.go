package models

import "time"

const (
	PaymentTypeDeposit    = "deposit"
	PaymentTypeWithdrawal = "withdrawal"
	PaymentTypeReward     = "reward"
	PaymentTypeBonus      = "bonus"
	PaymentTypeReferral   = "referral"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

const (
	PaymentMethodTonWallet    = "ton_wallet"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCrypto       = "crypto"
	PaymentMethodSystem       = "system"
)

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// CanTransition enforces the one-way status lifecycle: a payment leaves
// pending exactly once and final states never change.
func CanTransition(from, to string) bool {
	if from != PaymentStatusPending {
		return false
	}
	switch to {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// Payment is an append-only ledger entry for value moving in or out of a
// user's balance. Rows are never deleted; only Status and ProcessedAt
// change after creation.
type Payment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index:idx_payments_user_created" json:"user_id"`
	User          *User      `gorm:"foreignKey:UserID" json:"-"`
	Type          string     `gorm:"size:20;not null;index:idx_payments_type_status" json:"type"`
	Amount        float64    `gorm:"type:decimal(18,3);not null" json:"amount"`
	Currency      string     `gorm:"size:10;default:'TON'" json:"currency"`
	Status        string     `gorm:"size:16;default:'pending';not null;index:idx_payments_type_status" json:"status"`
	Method        string     `gorm:"size:20;not null" json:"method"`
	TransactionID *string    `gorm:"size:64;uniqueIndex" json:"transaction_id,omitempty"`
	WalletAddress *string    `gorm:"size:128" json:"wallet_address,omitempty"`
	Description   string     `gorm:"size:200;not null" json:"description"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"index:idx_payments_user_created" json:"created_at"`
	UpdatedAt     time.Time  `json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
