package utils

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

// GenerateTransactionID returns an external transaction identifier for
// payment ledger entries. UUIDs keep the unique index on transaction_id
// collision-free without coordination.
func GenerateTransactionID() string {
	return "txn_" + uuid.NewString()
}

const referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReferralCode returns a short uppercase code. Uniqueness is
// enforced by the database index; callers retry on conflict.
func GenerateReferralCode(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(referralAlphabet[int(b[i])%len(referralAlphabet)])
	}
	return sb.String(), nil
}
