package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tunaaoguzhann/limited-time-token/core"
	"github.com/tunaaoguzhann/limited-time-token/ratelimit"
)

type contextKey string

const (
	subjectKey   contextKey = "subject"
	requestIDKey contextKey = "request_id"
)

const headerRequestID = "X-Request-ID"

// maxExpireSeconds is the largest expiry that fits in a time.Duration.
const maxExpireSeconds = math.MaxInt64 / int64(time.Second)

type serverOptions struct {
	Token         core.Config
	JWTSecret     string
	DefaultExpiry time.Duration
	Limiter       ratelimit.Limiter
	RateLimit     int
	RateWindow    time.Duration
	Logger        *slog.Logger
}

func newRouter(opts serverOptions) (http.Handler, error) {
	gen, err := core.NewGenerator(opts.Token)
	if err != nil {
		return nil, err
	}
	if opts.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(loggingMiddleware(log))
	r.With(jwtAuth(opts.JWTSecret), throttle(opts.Limiter, opts.RateLimit, opts.RateWindow, log)).
		Post("/tokens", handleGenerate(gen, opts.DefaultExpiry))
	r.Post("/tokens/decode", handleDecode(opts.Token))
	r.Get("/tokens/{token}/valid", handleValid(opts.Token))
	return r, nil
}

type generateRequest struct {
	Payload            any    `json:"payload"`
	ExpireAfterSeconds *int64 `json:"expire_after_seconds"`
}

type generateResponse struct {
	Token string `json:"token"`
}

func handleGenerate(gen *core.Generator, defaultExpiry time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
			return
		}
		expire := defaultExpiry
		if req.ExpireAfterSeconds != nil {
			if *req.ExpireAfterSeconds > maxExpireSeconds {
				writeTokenError(w, fmt.Errorf("%w: %d seconds is out of range", core.ErrInvalidExpiry, *req.ExpireAfterSeconds))
				return
			}
			expire = time.Duration(*req.ExpireAfterSeconds) * time.Second
		}

		token, err := gen.Generate(req.Payload, expire)
		if err != nil {
			writeTokenError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, generateResponse{Token: token})
	}
}

type decodeRequest struct {
	Token string `json:"token"`
}

type decodeResponse struct {
	Valid   bool           `json:"valid"`
	Payload map[string]any `json:"payload,omitempty"`
}

func handleDecode(cfg core.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req decodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
			return
		}
		dec, err := core.NewDecoder(cfg, req.Token)
		if err != nil {
			writeTokenError(w, err)
			return
		}
		payload, err := dec.Decode()
		if err != nil {
			writeTokenError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, decodeResponse{Valid: true, Payload: payload})
	}
}

func handleValid(cfg core.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dec, err := core.NewDecoder(cfg, chi.URLParam(r, "token"))
		if err != nil {
			writeTokenError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, decodeResponse{Valid: dec.IsValid()})
	}
}

// requestID reuses a sane inbound X-Request-ID or assigns a new UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" || len(id) > 128 || strings.ContainsAny(id, "\r\n") {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func loggingMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			id, _ := r.Context().Value(requestIDKey).(string)
			log.Info("request",
				slog.String("request_id", id),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// throttle limits issuance per JWT subject.
func throttle(limiter ratelimit.Limiter, limit int, window time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			sub, _ := r.Context().Value(subjectKey).(string)
			err := limiter.Allow(r.Context(), sub, limit, window)
			switch {
			case errors.Is(err, ratelimit.ErrLimitExceeded):
				writeError(w, http.StatusTooManyRequests, "rate_limited", err.Error())
				return
			case err != nil:
				log.Error("rate limiter failed", slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, "internal", "internal error")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func jwtAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}
			sub, err := parseSubject(strings.TrimSpace(auth[7:]), secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid bearer token")
				return
			}
			ctx := context.WithValue(r.Context(), subjectKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseSubject(tokenStr, secret string) (string, error) {
	tok, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return "", errors.New("invalid jwt")
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("missing sub")
	}
	return sub, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var kindErrors = map[core.Kind]error{
	core.KindInvalidPayload:   core.ErrInvalidPayload,
	core.KindInvalidExpiry:    core.ErrInvalidExpiry,
	core.KindMalformed:        core.ErrMalformedToken,
	core.KindInvalidSignature: core.ErrInvalidSignature,
	core.KindExpired:          core.ErrExpired,
}

func writeTokenError(w http.ResponseWriter, err error) {
	kind := core.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case core.KindInvalidPayload, core.KindInvalidExpiry, core.KindMalformed:
		status = http.StatusBadRequest
	case core.KindInvalidSignature:
		status = http.StatusUnauthorized
	case core.KindExpired:
		status = http.StatusGone
	}
	msg := "internal error"
	if known, ok := kindErrors[kind]; ok {
		msg = known.Error()
	}
	writeError(w, status, kind.String(), msg)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
