package service

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrEmptySecret is returned when signing is attempted without a shared secret.
var ErrEmptySecret = errors.New("shared secret is empty")

// HMACSignatureService implements ports.SignatureService using HMAC-SHA512.
type HMACSignatureService struct{}

// NewHMACSignatureService creates a new HMAC-SHA512 signature service.
func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign computes HMAC-SHA512 over the concatenated fields keyed by secret.
// Returns lowercase hex (128 chars).
func (s *HMACSignatureService) Sign(secret string, fields ...string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(s.BuildSigningString(fields...)))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify checks signature against the fields in constant time.
func (s *HMACSignatureService) Verify(secret, signature string, fields ...string) bool {
	expected, err := s.Sign(secret, fields...)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// BuildSigningString joins the fields in order with no separator.
func (s *HMACSignatureService) BuildSigningString(fields ...string) string {
	return strings.Join(fields, "")
}
