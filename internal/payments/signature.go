package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the hex HMAC-SHA256 the gateway attaches to a completed charge.
func Sign(secret, intentID, chargeID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(intentID + "|" + chargeID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a charge signature in constant time. An empty secret never verifies.
func Verify(secret, intentID, chargeID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, intentID, chargeID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
