package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// VerifySignature recomputes the gateway signature, the hex SHA-512 of
// order_id + status_code + gross_amount + server key, and compares it
// against the one in the notification.
//
// The gateway formats gross_amount with two decimals ("150000.00")
// while some of its own signatures are computed over the truncated
// integer form ("150000"). Both encodings are accepted so a legitimate
// notification is never rejected over a formatting mismatch.
func VerifySignature(n Notification, serverKey string) bool {
	if matchesSignature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey, n.SignatureKey) {
		return true
	}
	truncated := truncateAmount(n.GrossAmount)
	if truncated == n.GrossAmount {
		return false
	}
	return matchesSignature(n.OrderID, n.StatusCode, truncated, serverKey, n.SignatureKey)
}

func matchesSignature(orderID, statusCode, grossAmount, serverKey, got string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	want := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(got))) == 1
}

// truncateAmount drops the fractional part of a decimal amount string.
func truncateAmount(amount string) string {
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		return amount[:i]
	}
	return amount
}
