package lineapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ComputeSignature returns the base64-encoded HMAC-SHA256 of body keyed
// with the channel secret, the value LINE sends in X-Line-Signature.
func ComputeSignature(channelSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature. An empty channel secret
// skips validation entirely (development bypass); a configured secret
// with no signature fails.
func VerifySignature(channelSecret string, body []byte, signature string) bool {
	if channelSecret == "" {
		return true
	}
	if signature == "" {
		return false
	}
	expected := ComputeSignature(channelSecret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
