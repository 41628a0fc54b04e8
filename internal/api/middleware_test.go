package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/awaqi/supportbot/internal/log"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSMiddleware(t *testing.T) {
	h := corsMiddleware([]string{"http://localhost:5173"})(okHandler())

	t.Run("allowed origin gets headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want unset", got)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/chat/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("preflight status = %d, want 204", rec.Code)
		}
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	h := recoveryMiddleware(log.NewNop())(panicking)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 after panic", rec.Code)
	}
}

func TestAuthStubs(t *testing.T) {
	t.Run("admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if _, ok := adminBotID(req); ok {
			t.Error("adminBotID accepted a request without Authorization")
		}

		req.Header.Set("Authorization", "Bearer x")
		botID, ok := adminBotID(req)
		if !ok || botID != defaultBotID {
			t.Errorf("adminBotID = (%q, %v), want placeholder tenant", botID, ok)
		}

		req.Header.Set("X-Bot-ID", "bot-5")
		if botID, _ := adminBotID(req); botID != "bot-5" {
			t.Errorf("adminBotID = %q, want X-Bot-ID override", botID)
		}
	})

	t.Run("api key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if _, ok := apiKeyBotID(req); ok {
			t.Error("apiKeyBotID accepted a request without X-API-Key")
		}

		req.Header.Set("X-API-Key", "widget")
		if botID, ok := apiKeyBotID(req); !ok || botID != defaultBotID {
			t.Errorf("apiKeyBotID = (%q, %v), want placeholder tenant", botID, ok)
		}
	})
}

func TestHealthLiveness(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(nil, nil).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d, want 200", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", body["status"])
	}
}

func TestHealthReadiness_NoPool(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(nil, nil).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /ready without a pool status = %d, want 503", rec.Code)
	}
}
