package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coreport/internal/auditlog"
)

func newRouter(t *testing.T, pub *auditlog.Publisher) http.Handler {
	t.Helper()
	h := New(pub, slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func seedEvents(t *testing.T, pub *auditlog.Publisher, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, pub.Emit(context.Background(), auditlog.Event{
			Action:       auditlog.ActionQueryProcessed,
			TemplateType: "C01",
			RequestID:    fmt.Sprintf("req-%d", i),
		}))
	}
}

func TestHandleListEvents(t *testing.T) {
	pub := auditlog.NewPublisher(auditlog.NewInMemoryStore())
	seedEvents(t, pub, 3)
	router := newRouter(t, pub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EventsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Count)
	assert.Equal(t, "req-2", resp.Events[0].RequestID, "newest first")
}

func TestHandleListEventsLimit(t *testing.T) {
	pub := auditlog.NewPublisher(auditlog.NewInMemoryStore())
	seedEvents(t, pub, 5)
	router := newRouter(t, pub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EventsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestHandleListEventsEmpty(t *testing.T) {
	router := newRouter(t, auditlog.NewPublisher(auditlog.NewInMemoryStore()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "[]", string(raw["events"]), "empty list, not null")
}

func TestHandleListEventsBadLimit(t *testing.T) {
	router := newRouter(t, auditlog.NewPublisher(auditlog.NewInMemoryStore()))

	for _, limit := range []string{"0", "-3", "abc", "9999"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events?limit="+limit, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}
