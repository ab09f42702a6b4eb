package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// Signer produces and verifies HMAC-SHA256 signatures over the JSON
// serialization of a payload. One Signer per trust domain: the gateway
// webhook secret and the internal queue secret are configured
// independently and never cross.
type Signer struct {
	secret []byte
}

// NewSigner creates a signer for the given shared secret.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("signing secret must not be empty")
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign returns the hex HMAC-SHA256 digest of the JSON encoding of v.
func (s *Signer) Sign(v interface{}) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize payload for signing: %w", err)
	}
	return s.SignBytes(payload), nil
}

// SignBytes signs an already-serialized payload. Webhook verification
// uses this over the raw request body so the digest matches what the
// gateway signed byte for byte.
func (s *Signer) SignBytes(payload []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature over the JSON encoding of v in constant time.
func (s *Signer) Verify(v interface{}, signature string) bool {
	expected, err := s.Sign(v)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyBytes checks a signature over a raw payload in constant time.
func (s *Signer) VerifyBytes(payload []byte, signature string) bool {
	expected := s.SignBytes(payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
