// Package middleware holds HTTP middleware shared by the API routes.
package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// HeaderIdempotencyKey marks a mutating request as safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

// provisionalLockTTL bounds how long an unfinished request keeps its key.
const provisionalLockTTL = 60 * time.Second

// ErrNotFound is returned by a Store when a key holds no entry.
var ErrNotFound = errors.New("idempotency entry not found")

// Entry is what a Store keeps per key: a marker while the first request is
// running, then the response to replay.
type Entry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body,omitempty"`
	BodySHA256  string    `json:"body_sha256"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store interface {
	// Reserve stores e under key unless the key exists, reporting whether it did.
	Reserve(ctx context.Context, key string, e Entry, ttl time.Duration) (bool, error)
	Load(ctx context.Context, key string) (Entry, error)
	Save(ctx context.Context, key string, e Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type recorder struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (r *recorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Idempotency replays the stored response when a mutating request is retried
// with the same Idempotency-Key and body. Reusing a key with another body, or
// while the first request is still running, is a 409. Requests without the
// header pass through untouched. Server errors and panics release the key so
// the client can retry.
func Idempotency(store Store, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			idemKey := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
			if idemKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "failed to read body", http.StatusBadRequest)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			hash := bodyHash(body)
			key := buildKey(r.Method, r.URL.Path, idemKey)

			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			ok, err := store.Reserve(ctx, key, Entry{InProgress: true, BodySHA256: hash, CreatedAt: time.Now().UTC()}, provisionalLockTTL)
			if err != nil {
				slog.Error("idempotency store unavailable", "error", err)
				http.Error(w, "idempotency store unavailable", http.StatusServiceUnavailable)

				return
			}

			if !ok {
				replay(ctx, w, store, key, hash)
				return
			}

			// A panic counts as a server error; the recoverer above still sees it.
			defer func() {
				if p := recover(); p != nil {
					release(r, store, key)
					panic(p)
				}
			}()

			rec := &recorder{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.code >= http.StatusInternalServerError {
				release(r, store, key)
				return
			}

			saveCtx, saveCancel := detached(r)
			defer saveCancel()

			final := Entry{
				Code:        rec.code,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.buf.Bytes(),
				BodySHA256:  hash,
				CreatedAt:   time.Now().UTC(),
			}
			if err := store.Save(saveCtx, key, final, ttl); err != nil {
				slog.Error("failed to save idempotent response", "key", key, "error", err)
			}
		})
	}
}

// detached outlives the request context, which may be done once the handler
// returns.
func detached(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Second)
}

func release(r *http.Request, store Store, key string) {
	ctx, cancel := detached(r)
	defer cancel()

	if err := store.Delete(ctx, key); err != nil {
		slog.Error("failed to release idempotency key", "key", key, "error", err)
	}
}

func replay(ctx context.Context, w http.ResponseWriter, store Store, key, hash string) {
	cur, err := store.Load(ctx, key)
	if err != nil {
		slog.Error("failed to load idempotency entry", "key", key, "error", err)
		http.Error(w, "request is already in progress", http.StatusConflict)

		return
	}

	if cur.BodySHA256 != hash {
		http.Error(w, "Idempotency-Key reused with a different body", http.StatusConflict)
		return
	}

	if cur.InProgress {
		http.Error(w, "request is already in progress", http.StatusConflict)
		return
	}

	if cur.ContentType != "" {
		w.Header().Set("Content-Type", cur.ContentType)
	}

	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cur.Code)

	if _, err := w.Write(cur.Body); err != nil {
		slog.Error("failed to replay response", "error", err)
	}
}

func bodyHash(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

func buildKey(method, path, key string) string {
	return "idemp:" + strings.ToLower(method) + ":" + path + ":" + key
}
