package core

import (
	"errors"
)

// ExpiryField is the payload key carrying the expiry window in seconds.
// A caller-supplied value under this key is overwritten by Generate.
const ExpiryField = "max_age_seconds"

var (
	ErrConfiguration    = errors.New("token handler is not configured")
	ErrMissingSecret    = errors.New("SECRET_KEY is missing or not properly configured")
	ErrInvalidPayload   = errors.New("invalid payload type, expected a JSON object")
	ErrInvalidExpiry    = errors.New("invalid expiry, expected a non-negative whole number of seconds")
	ErrMalformedToken   = errors.New("invalid token format, token must be properly formatted")
	ErrInvalidSignature = errors.New("invalid token provided, please request a new token")
	ErrExpired          = errors.New("token has expired, please request a new token to continue")
)

// Kind classifies token errors.
type Kind int

const (
	KindNone Kind = iota
	KindConfiguration
	KindInvalidPayload
	KindInvalidExpiry
	KindMalformed
	KindInvalidSignature
	KindExpired
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConfiguration:
		return "configuration"
	case KindInvalidPayload:
		return "invalid_payload"
	case KindInvalidExpiry:
		return "invalid_expiry"
	case KindMalformed:
		return "malformed"
	case KindInvalidSignature:
		return "invalid_signature"
	case KindExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// KindOf reports which kind of token error err carries.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrInvalidPayload):
		return KindInvalidPayload
	case errors.Is(err, ErrInvalidExpiry):
		return KindInvalidExpiry
	case errors.Is(err, ErrMalformedToken):
		return KindMalformed
	case errors.Is(err, ErrInvalidSignature):
		return KindInvalidSignature
	case errors.Is(err, ErrExpired):
		return KindExpired
	default:
		return KindUnknown
	}
}

// Result is the outcome of a decode: either a payload or an error.
type Result struct {
	Payload map[string]any
	Err     error
}

// Unwrap returns the payload or the error.
func (r Result) Unwrap() (map[string]any, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Payload, nil
}

// Or returns the payload, or def if the decode failed.
func (r Result) Or(def map[string]any) map[string]any {
	if r.Err != nil {
		return def
	}
	return r.Payload
}
