package services

import (
	"crypto/hmac"
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const pseudonymLength = sha256.Size

// DeriveVoterPseudonym keys the enrollment and tenant ids with the server
// secret. The result is stable across restarts and cannot be mapped back to
// the enrollment without the secret.
func DeriveVoterPseudonym(enrollmentID, tenantID string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(enrollmentID))
	mac.Write([]byte{0})
	mac.Write([]byte(tenantID))
	return hexutil.Encode(mac.Sum(nil))
}

// ValidPseudonym reports whether s has the shape produced by DeriveVoterPseudonym.
func ValidPseudonym(s string) bool {
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == pseudonymLength
}

func shortPseudonym(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:10]
}
