package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyHMAC checks an X-Signature value against the raw body. Receivers of
// our webhooks use the same shared secret.
func VerifyHMAC(secret string, body []byte, provided string) bool {
	expected, err := hex.DecodeString(provided)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, sum(secret, body))
}

// SignHMAC returns lowercase hex of HMAC-SHA256 over body.
func SignHMAC(secret string, body []byte) string {
	return hex.EncodeToString(sum(secret, body))
}

func sum(secret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}
