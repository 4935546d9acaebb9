package core

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/hkdf"
)

const signerInfo = "limited-time-token/v1"

var b64 = base64.RawURLEncoding.Strict()

// Signer computes HMAC-SHA256 signatures under a key derived from the
// secret and a per-token salt. The salt separates tokens from each other;
// it is not secret.
type Signer struct {
	key []byte
}

func NewSigner(secret, salt string) (*Signer, error) {
	key := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, []byte(secret), []byte(salt), []byte(signerInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

func (s *Signer) Sign(data []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(data)
	return mac.Sum(nil)
}

func (s *Signer) Verify(data, signature []byte) bool {
	return hmac.Equal(s.Sign(data), signature)
}
