package core

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"time"
)

const (
	tokenSep = "|"
	saltSize = 16
)

// Generator issues limited-time tokens of the form "<blob>|<salt>".
type Generator struct {
	codec  *Codec
	rand   io.Reader
	logger *slog.Logger
}

func NewGenerator(cfg Config) (*Generator, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Generator{
		codec:  NewCodec(cfg.Secret, cfg.Now),
		rand:   cfg.Rand,
		logger: cfg.Logger,
	}, nil
}

// Generate signs payload with a fresh salt. The payload must be a map or
// encode to a JSON object. expireAfter is stored in the payload under
// ExpiryField and must be a non-negative whole number of seconds.
func (g *Generator) Generate(payload any, expireAfter time.Duration) (string, error) {
	fields, err := toFields(payload)
	if err != nil {
		g.logger.Error("invalid payload type provided", slog.String("type", fmt.Sprintf("%T", payload)), slog.Any("error", err))
		return "", err
	}
	if expireAfter < 0 || expireAfter%time.Second != 0 {
		g.logger.Error("invalid expiry provided", slog.Duration("expire_after", expireAfter))
		return "", fmt.Errorf("%w: got %s", ErrInvalidExpiry, expireAfter)
	}
	fields[ExpiryField] = int64(expireAfter / time.Second)

	raw := make([]byte, saltSize)
	if _, err := io.ReadFull(g.rand, raw); err != nil {
		g.logger.Error("failed to generate token salt", slog.Any("error", err))
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt := hex.EncodeToString(raw)

	blob, err := g.codec.Sign(salt, fields)
	if err != nil {
		g.logger.Error("failed to generate token", slog.Any("error", err))
		return "", err
	}
	return blob + tokenSep + salt, nil
}

// GenerateOr is Generate returning def instead of an error.
func (g *Generator) GenerateOr(payload any, expireAfter time.Duration, def string) string {
	token, err := g.Generate(payload, expireAfter)
	if err != nil {
		return def
	}
	return token
}

// toFields returns a fresh map holding payload's fields.
func toFields(payload any) (map[string]any, error) {
	switch p := payload.(type) {
	case nil:
		return nil, fmt.Errorf("%w: got nil", ErrInvalidPayload)
	case map[string]any:
		if p == nil {
			return nil, fmt.Errorf("%w: got nil map", ErrInvalidPayload)
		}
		out := make(map[string]any, len(p)+1)
		maps.Copy(out, p)
		return out, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidPayload, payload)
	}
	return out, nil
}
