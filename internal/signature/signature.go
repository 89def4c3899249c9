// Package signature signs and verifies gateway payloads with HMAC-SHA256.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Pair is one key=value entry of a canonical message.
type Pair struct {
	Key   string
	Value string
}

// Sign returns the hex encoded HMAC-SHA256 of message under key.
// An empty key is a programming error.
func Sign(message, key []byte) string {
	if len(key) == 0 {
		panic("signature: empty signing key")
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(message)

	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether sig is the signature of message under key.
func Verify(message, key []byte, sig string) bool {
	expected, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(message)

	return hmac.Equal(mac.Sum(nil), expected)
}

// Canonical joins the pairs as key=value&key=value, keeping the given order.
// Gateways reject the request if the order differs from their documentation.
func Canonical(pairs ...Pair) string {
	var b strings.Builder

	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}

	return b.String()
}
