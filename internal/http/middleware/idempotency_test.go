package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/syndic/internal/http/middleware"
)

type mapStore struct {
	mu      sync.Mutex
	entries map[string]middleware.Entry
	failAll bool
}

func newMapStore() *mapStore {
	return &mapStore{entries: make(map[string]middleware.Entry)}
}

func (s *mapStore) Reserve(_ context.Context, key string, e middleware.Entry, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll {
		return false, errors.New("connection refused")
	}

	if _, ok := s.entries[key]; ok {
		return false, nil
	}

	s.entries[key] = e

	return true, nil
}

func (s *mapStore) Load(_ context.Context, key string) (middleware.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return e, middleware.ErrNotFound
	}

	return e, nil
}

func (s *mapStore) Save(_ context.Context, key string, e middleware.Entry, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = e

	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)

	return nil
}

func countingHandler(calls *atomic.Int32, code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"call":` + strconv.Itoa(int(n)) + `}`))
	})
}

func do(h http.Handler, method, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/deals/x/payments/3", strings.NewReader(body))
	if key != "" {
		req.Header.Set(middleware.HeaderIdempotencyKey, key)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestIdempotency_ReplaysSameRequest(t *testing.T) {
	var calls atomic.Int32

	h := middleware.Idempotency(newMapStore(), time.Hour)(countingHandler(&calls, http.StatusOK))

	first := do(h, http.MethodPatch, "k1", `{"status":"adjusted","extend_days":2}`)
	second := do(h, http.MethodPatch, "k1", `{"status":"adjusted","extend_days":2}`)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
}

func TestIdempotency_DifferentBodyConflicts(t *testing.T) {
	var calls atomic.Int32

	h := middleware.Idempotency(newMapStore(), time.Hour)(countingHandler(&calls, http.StatusOK))

	do(h, http.MethodPatch, "k1", `{"status":"paid"}`)
	rec := do(h, http.MethodPatch, "k1", `{"status":"missed"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotency_InProgressConflicts(t *testing.T) {
	store := newMapStore()

	var calls atomic.Int32

	h := middleware.Idempotency(store, time.Hour)(countingHandler(&calls, http.StatusOK))

	// Simulate a first request that has reserved the key but not finished.
	_, err := store.Reserve(context.Background(), "idemp:post:/api/v1/deals/x/payments/3:k1",
		middleware.Entry{InProgress: true, BodySHA256: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"}, time.Minute)
	require.NoError(t, err)

	rec := do(h, http.MethodPost, "k1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int32(0), calls.Load())
}

func TestIdempotency_PassThrough(t *testing.T) {
	tests := []struct {
		name   string
		method string
		key    string
	}{
		{name: "Get", method: http.MethodGet, key: "k1"},
		{name: "NoKey", method: http.MethodPost, key: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32

			h := middleware.Idempotency(newMapStore(), time.Hour)(countingHandler(&calls, http.StatusOK))

			do(h, tt.method, tt.key, `{}`)
			do(h, tt.method, tt.key, `{}`)

			assert.Equal(t, int32(2), calls.Load())
		})
	}
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	store := newMapStore()

	var calls atomic.Int32

	h := middleware.Idempotency(store, time.Hour)(countingHandler(&calls, http.StatusInternalServerError))

	do(h, http.MethodPost, "k1", `{}`)
	do(h, http.MethodPost, "k1", `{}`)

	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, store.entries)
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	store := newMapStore()

	var calls atomic.Int32

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			panic("ledger write failed")
		}

		w.WriteHeader(http.StatusCreated)
	})

	h := chimw.Recoverer(middleware.Idempotency(store, time.Hour)(next))

	first := do(h, http.MethodPost, "k1", `{}`)
	assert.Equal(t, http.StatusInternalServerError, first.Code)
	assert.Empty(t, store.entries)

	second := do(h, http.MethodPost, "k1", `{}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotency_StoreUnavailable(t *testing.T) {
	store := newMapStore()
	store.failAll = true

	var calls atomic.Int32

	h := middleware.Idempotency(store, time.Hour)(countingHandler(&calls, http.StatusOK))

	rec := do(h, http.MethodPost, "k1", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, int32(0), calls.Load())
}
