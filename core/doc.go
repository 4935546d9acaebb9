// Package core issues and verifies limited-time tokens.
//
// A token is "<blob>|<salt>". The salt is 128 random bits in hex, fresh for
// every token. The blob carries the JSON payload, the issuance time in Unix
// seconds and an HMAC-SHA256 over both, keyed by HKDF(secret, salt). The
// payload also holds its own expiry window under ExpiryField, so a Decoder
// needs nothing but the secret to check it.
//
//	cfg := core.Config{Secret: os.Getenv("SECRET_KEY")}
//
//	gen, err := core.NewGenerator(cfg)
//	token, err := gen.Generate(map[string]any{"user_id": 42}, 20*time.Minute)
//
//	dec, err := core.NewDecoder(cfg, token)
//	payload, err := dec.Decode()
//
// Decode failures wrap ErrMalformedToken, ErrInvalidSignature or ErrExpired.
// The *Or and IsValid variants swallow them in favor of a default.
package core
