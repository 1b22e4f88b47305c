// Package signature verifies provider webhook HMAC signatures.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// Scheme is the encoding of an HMAC-SHA256 signature header.
type Scheme string

const (
	SchemeBase64HMACSHA256      Scheme = "base64-hmac-sha256"
	SchemeHexHMACSHA256         Scheme = "hex-hmac-sha256"
	SchemePrefixedHexHMACSHA256 Scheme = "sha256-prefixed-hex"
)

const sha256Prefix = "sha256="

// Result is the outcome of one verification.
type Result struct {
	Verified bool   `json:"verified"`
	Scheme   Scheme `json:"scheme"`
}

// Verifier checks signatures against per-provider secrets.
type Verifier struct {
	secrets map[string]string
}

// NewVerifier builds a verifier from provider key to secret.
func NewVerifier(secrets map[string]string) *Verifier {
	normalized := make(map[string]string, len(secrets))
	for key, secret := range secrets {
		normalized[strings.ToLower(strings.TrimSpace(key))] = secret
	}
	return &Verifier{secrets: normalized}
}

// Verify checks headerValue against rawBody. It fails closed for unknown
// providers and providers without a configured secret.
func (v *Verifier) Verify(provider string, rawBody []byte, headerValue string) Result {
	p, ok := Lookup(provider)
	if !ok {
		return Result{}
	}
	result := Result{Scheme: p.Scheme}
	secret := v.secrets[p.Key]
	if secret == "" {
		return result
	}
	given, ok := normalizeHeader(p.Scheme, headerValue)
	if !ok {
		return result
	}
	expected := Sign(p.Scheme, secret, rawBody)
	if p.Scheme == SchemePrefixedHexHMACSHA256 {
		expected = strings.TrimPrefix(expected, sha256Prefix)
	}
	result.Verified = hmac.Equal([]byte(expected), []byte(given))
	return result
}

// Sign produces the header value a provider would send for body.
func Sign(scheme Scheme, secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	sum := mac.Sum(nil)
	switch scheme {
	case SchemeBase64HMACSHA256:
		return base64.StdEncoding.EncodeToString(sum)
	case SchemePrefixedHexHMACSHA256:
		return sha256Prefix + hex.EncodeToString(sum)
	default:
		return hex.EncodeToString(sum)
	}
}

func normalizeHeader(scheme Scheme, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if scheme == SchemePrefixedHexHMACSHA256 {
		if !strings.HasPrefix(value, sha256Prefix) {
			return "", false
		}
		return strings.TrimPrefix(value, sha256Prefix), true
	}
	return value, true
}
