package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/awaqi/supportbot/internal/credential"
)

type fakeConfigStore struct {
	rec       *credential.Record
	getErr    error
	upsertErr error

	gotBotID    string
	gotProvider string
	gotAPIKey   string
	gotModel    string
	upserts     int
}

func (f *fakeConfigStore) Upsert(_ context.Context, botID, provider, apiKey, model string) error {
	f.upserts++
	f.gotBotID = botID
	f.gotProvider = provider
	f.gotAPIKey = apiKey
	f.gotModel = model
	return f.upsertErr
}

func (f *fakeConfigStore) GetActive(_ context.Context, _ string) (*credential.Record, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.rec, nil
}

func configMux(store ConfigStore) *http.ServeMux {
	mux := http.NewServeMux()
	NewBotConfigHandler(store, "gemini-1.5-flash", nil).RegisterRoutes(mux)
	return mux
}

var adminHeaders = map[string]string{"Authorization": "Bearer admin-token"}

func TestBotConfigUpdate_RequiresAuth(t *testing.T) {
	store := &fakeConfigStore{}
	rec := doJSON(t, configMux(store), http.MethodPut, "/api/chatbot/config/",
		`{"provider":"google","api_key":"k"}`, nil)
	assertErrorCode(t, rec, http.StatusUnauthorized, CodeAuthRequired)
	if store.upserts != 0 {
		t.Error("store was written without authorization")
	}
}

func TestBotConfigUpdate_Validation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{name: "malformed JSON", body: `{`, wantCode: CodeInvalidRequest},
		{name: "unsupported provider", body: `{"provider":"openai","api_key":"k"}`, wantCode: CodeUnsupportedProvider},
		{name: "missing api key", body: `{"provider":"google"}`, wantCode: CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeConfigStore{}
			rec := doJSON(t, configMux(store), http.MethodPut, "/api/chatbot/config/", tt.body, adminHeaders)
			assertErrorCode(t, rec, http.StatusBadRequest, tt.wantCode)
			if store.upserts != 0 {
				t.Error("store was written for an invalid request")
			}
		})
	}
}

func TestBotConfigUpdate_Success(t *testing.T) {
	store := &fakeConfigStore{}
	rec := doJSON(t, configMux(store), http.MethodPut, "/api/chatbot/config/",
		`{"provider":"google","api_key":"AIzaSyTenantKey","model":"gemini-1.5-pro"}`,
		map[string]string{"Authorization": "Bearer admin-token", "X-Bot-ID": "bot-9"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var resp BotConfigResponse
	decodeJSON(t, rec, &resp)
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.Data.Model != "gemini-1.5-pro" || !resp.Data.HasAPIKey {
		t.Errorf("data = %+v", resp.Data)
	}

	if store.gotBotID != "bot-9" || store.gotAPIKey != "AIzaSyTenantKey" || store.gotModel != "gemini-1.5-pro" {
		t.Errorf("Upsert got (%q, %q, %q)", store.gotBotID, store.gotAPIKey, store.gotModel)
	}
	// The API key must never be echoed back.
	if strings.Contains(rec.Body.String(), "AIzaSyTenantKey") {
		t.Error("API key leaked into the response body")
	}
}

func TestBotConfigUpdate_EmptyModelGetsDefault(t *testing.T) {
	store := &fakeConfigStore{}
	rec := doJSON(t, configMux(store), http.MethodPut, "/api/chatbot/config/",
		`{"provider":"google","api_key":"k"}`, adminHeaders)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.gotModel != "gemini-1.5-flash" {
		t.Errorf("Upsert model = %q, want default", store.gotModel)
	}
}

func TestBotConfigGet_Unconfigured(t *testing.T) {
	store := &fakeConfigStore{getErr: credential.ErrNotFound}
	rec := doJSON(t, configMux(store), http.MethodGet, "/api/chatbot/config/", "", adminHeaders)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp BotConfigResponse
	decodeJSON(t, rec, &resp)
	if resp.Data.HasAPIKey {
		t.Error("has_api_key = true for an unconfigured bot")
	}
	if resp.Data.Model != "gemini-1.5-flash" || resp.Data.Provider != "google" {
		t.Errorf("data = %+v, want defaults", resp.Data)
	}
}

func TestBotConfigGet_Stored(t *testing.T) {
	store := &fakeConfigStore{rec: &credential.Record{
		Provider: "google",
		Model:    "gemini-1.5-pro",
		APIKey:   "plaintext-secret",
	}}
	rec := doJSON(t, configMux(store), http.MethodGet, "/api/chatbot/config/", "", adminHeaders)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp BotConfigResponse
	decodeJSON(t, rec, &resp)
	if !resp.Data.HasAPIKey || resp.Data.Model != "gemini-1.5-pro" {
		t.Errorf("data = %+v", resp.Data)
	}
	if strings.Contains(rec.Body.String(), "plaintext-secret") {
		t.Error("stored API key leaked into the response body")
	}
}

func TestBotConfigGet_StoreFailure(t *testing.T) {
	store := &fakeConfigStore{getErr: errors.New("connection refused")}
	rec := doJSON(t, configMux(store), http.MethodGet, "/api/chatbot/config/", "", adminHeaders)
	assertErrorCode(t, rec, http.StatusInternalServerError, CodeInternal)
}
