package core

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const blobSep = "."

// Codec signs and verifies timestamped payloads under a secret and a salt.
//
// Blob format: base64url(json) "." base64url(issued_at) "." base64url(mac),
// where issued_at is big-endian Unix seconds with leading zero bytes trimmed
// and mac covers the first two segments joined by ".".
type Codec struct {
	secret string
	now    func() time.Time
}

func NewCodec(secret string, now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{secret: secret, now: now}
}

func (c *Codec) Sign(salt string, payload map[string]any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	signer, err := NewSigner(c.secret, salt)
	if err != nil {
		return "", err
	}

	value := b64.EncodeToString(raw) + blobSep + b64.EncodeToString(encodeTimestamp(c.now().Unix()))
	sig := signer.Sign([]byte(value))
	return value + blobSep + b64.EncodeToString(sig), nil
}

// Verify checks the blob's signature and returns its payload and issuance
// time. With a nil maxAge no age check is made.
func (c *Codec) Verify(salt, blob string, maxAge *time.Duration) (map[string]any, time.Time, error) {
	parts := strings.Split(blob, blobSep)
	if len(parts) != 3 {
		return nil, time.Time{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrInvalidSignature, len(parts))
	}
	sig, err := b64.DecodeString(parts[2])
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: signature segment: %v", ErrInvalidSignature, err)
	}

	signer, err := NewSigner(c.secret, salt)
	if err != nil {
		return nil, time.Time{}, err
	}
	if !signer.Verify([]byte(parts[0]+blobSep+parts[1]), sig) {
		return nil, time.Time{}, ErrInvalidSignature
	}

	raw, err := b64.DecodeString(parts[0])
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: payload segment: %v", ErrInvalidSignature, err)
	}
	tsRaw, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: timestamp segment: %v", ErrInvalidSignature, err)
	}
	ts, err := decodeTimestamp(tsRaw)
	if err != nil {
		return nil, time.Time{}, err
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: payload: %v", ErrInvalidSignature, err)
	}
	if payload == nil {
		return nil, time.Time{}, fmt.Errorf("%w: payload is not an object", ErrInvalidSignature)
	}

	issuedAt := time.Unix(ts, 0)
	if maxAge != nil {
		elapsed := time.Duration(c.now().Unix()-ts) * time.Second
		if elapsed > *maxAge {
			return nil, issuedAt, fmt.Errorf("%w: signature age %s > %s", ErrExpired, elapsed, *maxAge)
		}
	}
	return payload, issuedAt, nil
}

func encodeTimestamp(ts int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(ts))
	if trimmed := bytes.TrimLeft(buf, "\x00"); len(trimmed) > 0 {
		return trimmed
	}
	return buf[7:]
}

func decodeTimestamp(b []byte) (int64, error) {
	if len(b) == 0 || len(b) > 8 {
		return 0, fmt.Errorf("%w: timestamp is %d bytes", ErrInvalidSignature, len(b))
	}
	buf := make([]byte, 8)
	copy(buf[8-len(b):], b)
	return int64(binary.BigEndian.Uint64(buf)), nil
}
