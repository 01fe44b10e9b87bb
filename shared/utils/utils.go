package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var accountNumberPattern = regexp.MustCompile(`^[0-9]{10,12}$`)

// GenerateAccountNumber draws 12 random digits. Uniqueness is the caller's
// concern: the account service checks the store and redraws on collision.
func GenerateAccountNumber() string {
	digits := make([]byte, 12)
	for i := range digits {
		n, _ := rand.Int(rand.Reader, big.NewInt(10))
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits)
}

// ValidateAccountNumber reports whether s is a 10-12 digit account number.
func ValidateAccountNumber(s string) bool {
	return accountNumberPattern.MatchString(s)
}

// NewTransactionReference generates the display identifier for a
// transaction: "TXN-" plus twelve upper-case hex characters.
func NewTransactionReference() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TXN-" + strings.ToUpper(raw[:12])
}
