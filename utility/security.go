package utility

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// IsSecure determines if the request is effectively HTTPS (directly or via proxy header)
func IsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// ParseBearerToken extracts the token from an "Authorization: Bearer ..." header.
// Returns "" when the header is missing or not a bearer scheme.
func ParseBearerToken(header string) string {
	const prefix = "Bearer "
	header = strings.TrimSpace(header)
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// SecureCompare performs a constant-time equality check between two tokens.
func SecureCompare(got, want string) bool {
	if got == "" || want == "" {
		return false
	}
	return hmac.Equal([]byte(got), []byte(want))
}

// BearerAuthMiddleware rejects requests whose bearer token does not match
// the configured AUTH_TOKEN.
func BearerAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := ParseBearerToken(c.Request.Header.Get("Authorization"))
		if !SecureCompare(got, token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// HMACSHA256 computes an HMAC-SHA256 over body with the given secret.
// Returns the string in the format "<prefix><hex>" so callers can match the
// exact header shape they verify (e.g. Slack's "v0=<hex>").
func HMACSHA256(secret, prefix string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return prefix + hex.EncodeToString(mac.Sum(nil))
}

// HMACEqual performs a constant-time comparison between the received signature
// header and the expected value. Comparison is case-insensitive for hex digits.
func HMACEqual(gotHeader, expected string) bool {
	g := strings.ToLower(strings.TrimSpace(gotHeader))
	e := strings.ToLower(strings.TrimSpace(expected))
	return hmac.Equal([]byte(g), []byte(e))
}

// VerifySlackSignature checks the X-Slack-Signature header against the signing
// secret using Slack's v0 scheme: HMAC over "v0:<timestamp>:<body>".
func VerifySlackSignature(secret, timestamp, signature string, body []byte) bool {
	if strings.TrimSpace(secret) == "" {
		return false
	}
	base := append([]byte("v0:"+timestamp+":"), body...)
	expected := HMACSHA256(secret, "v0=", base)
	ok := HMACEqual(signature, expected)
	if !ok {
		log.Printf("[Slack] signature mismatch for ts=%s", timestamp)
	}
	return ok
}
