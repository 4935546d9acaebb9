package core

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMaxAge caps token age at d regardless of the expiry embedded in the
// payload.
func WithMaxAge(d time.Duration) DecoderOption {
	return func(dec *Decoder) {
		dec.maxAge = &d
	}
}

// Decoder verifies and decodes a single token.
type Decoder struct {
	token  string
	codec  *Codec
	now    func() time.Time
	maxAge *time.Duration
	logger *slog.Logger
}

func NewDecoder(cfg Config, token string, opts ...DecoderOption) (*Decoder, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	d := &Decoder{
		token:  token,
		codec:  NewCodec(cfg.Secret, cfg.Now),
		now:    cfg.Now,
		logger: cfg.Logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Decode returns the token's payload without the expiry bookkeeping field.
func (d *Decoder) Decode() (map[string]any, error) {
	return d.Result().Unwrap()
}

// DecodeOr is Decode returning def on any failure.
func (d *Decoder) DecodeOr(def map[string]any) map[string]any {
	return d.Result().Or(def)
}

// Validate runs the decode pipeline and reports why the token is rejected.
func (d *Decoder) Validate() error {
	return d.Result().Err
}

func (d *Decoder) IsValid() bool {
	return d.Validate() == nil
}

// Result runs the decode pipeline: unescape, split on the last "|",
// verify the signature, then check the embedded expiry.
func (d *Decoder) Result() Result {
	blob, salt, err := splitToken(d.token)
	if err != nil {
		d.logger.Warn("token decoding failed - malformed token", slog.Any("error", err))
		return Result{Err: err}
	}

	payload, issuedAt, err := d.codec.Verify(salt, blob, d.maxAge)
	if err != nil {
		if KindOf(err) == KindExpired {
			d.logger.Warn("token decoding failed - token has expired", slog.Any("error", err))
			return Result{Err: err}
		}
		d.logger.Error("token decoding failed - invalid signature detected", slog.Any("error", err))
		if KindOf(err) != KindInvalidSignature {
			err = fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		}
		return Result{Err: err}
	}

	window := d.expiryWindow(payload)
	elapsed := d.now().Unix() - issuedAt.Unix()
	if elapsed > window {
		d.logger.Warn("token decoding failed - token has expired",
			slog.Int64("elapsed_seconds", elapsed),
			slog.Int64("max_age_seconds", window),
		)
		return Result{Err: fmt.Errorf("%w: issued %ds ago, valid for %ds", ErrExpired, elapsed, window)}
	}

	delete(payload, ExpiryField)
	d.logger.Debug("token successfully decoded and payload extracted")
	return Result{Payload: payload}
}

// expiryWindow reads ExpiryField in seconds. A missing, non-numeric or
// negative value yields 0, so only a token checked within its issuance
// second passes.
func (d *Decoder) expiryWindow(payload map[string]any) int64 {
	v, ok := payload[ExpiryField]
	if !ok {
		return 0
	}
	n, ok := v.(float64)
	if !ok || n < 0 || math.IsNaN(n) {
		d.logger.Warn("token carries an unusable expiry field", slog.Any(ExpiryField, v))
		return 0
	}
	if n >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

func splitToken(token string) (blob, salt string, err error) {
	if token == "" {
		return "", "", fmt.Errorf("%w: empty token", ErrMalformedToken)
	}
	unescaped := unescape(token)
	i := strings.LastIndex(unescaped, tokenSep)
	if i < 0 {
		return "", "", fmt.Errorf("%w: missing %q separator", ErrMalformedToken, tokenSep)
	}
	blob, salt = unescaped[:i], unescaped[i+1:]
	if blob == "" || salt == "" {
		return "", "", fmt.Errorf("%w: empty blob or salt", ErrMalformedToken)
	}
	return blob, salt, nil
}

// unescape decodes valid %HH triplets and keeps any other "%" as literal
// text, so a stray "%" reaches the signature check instead of failing here.
func unescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			if hi, ok := unhex(s[i+1]); ok {
				if lo, ok := unhex(s[i+2]); ok {
					b.WriteByte(hi<<4 | lo)
					i += 2
					continue
				}
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
