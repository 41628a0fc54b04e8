package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/awaqi/supportbot/internal/config"
	"github.com/awaqi/supportbot/internal/credential"
	"github.com/awaqi/supportbot/internal/log"
)

// ConfigStore is the tenant configuration storage the handler needs.
// Satisfied by *credential.Store.
type ConfigStore interface {
	Upsert(ctx context.Context, botID, provider, apiKey, model string) error
	GetActive(ctx context.Context, botID string) (*credential.Record, error)
}

// BotConfigHandler handles the admin model-configuration endpoints.
type BotConfigHandler struct {
	store        ConfigStore
	defaultModel string
	logger       log.Logger
}

// NewBotConfigHandler creates a config handler. defaultModel is reported
// when a tenant has no stored configuration.
func NewBotConfigHandler(store ConfigStore, defaultModel string, logger log.Logger) *BotConfigHandler {
	if logger == nil {
		logger = log.NewNop()
	}
	return &BotConfigHandler{store: store, defaultModel: defaultModel, logger: logger}
}

// RegisterRoutes registers config routes on the given mux.
func (h *BotConfigHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("PUT /api/chatbot/config/", h.update)
	mux.HandleFunc("GET /api/chatbot/config/", h.get)
}

// BotConfigRequest is the update request body.
type BotConfigRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
}

// BotConfig is the non-secret configuration summary. The API key itself is
// never echoed back.
type BotConfig struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	HasAPIKey bool   `json:"has_api_key"`
}

// BotConfigResponse wraps a configuration summary.
type BotConfigResponse struct {
	Success bool      `json:"success"`
	Data    BotConfig `json:"data"`
}

// update stores the caller tenant's provider/model/key configuration.
func (h *BotConfigHandler) update(w http.ResponseWriter, r *http.Request) {
	botID, ok := adminBotID(r)
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, CodeAuthRequired, "authorization required")
		return
	}

	var req BotConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, CodeInvalidRequest, "invalid request body")
		return
	}
	if req.Provider != config.SupportedProvider {
		writeError(w, h.logger, http.StatusBadRequest, CodeUnsupportedProvider, "only the google provider is supported")
		return
	}
	if req.APIKey == "" {
		writeError(w, h.logger, http.StatusBadRequest, CodeInvalidRequest, "api_key is required")
		return
	}
	if req.Model == "" {
		req.Model = h.defaultModel
	}

	if err := h.store.Upsert(r.Context(), botID, req.Provider, req.APIKey, req.Model); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, BotConfigResponse{
		Success: true,
		Data:    BotConfig{Provider: req.Provider, Model: req.Model, HasAPIKey: true},
	})
}

// get returns the caller tenant's configuration summary, or defaults with
// has_api_key=false when nothing is stored.
func (h *BotConfigHandler) get(w http.ResponseWriter, r *http.Request) {
	botID, ok := adminBotID(r)
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, CodeAuthRequired, "authorization required")
		return
	}

	rec, err := h.store.GetActive(r.Context(), botID)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			writeJSON(w, h.logger, http.StatusOK, BotConfigResponse{
				Success: true,
				Data:    BotConfig{Provider: config.SupportedProvider, Model: h.defaultModel, HasAPIKey: false},
			})
			return
		}
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, BotConfigResponse{
		Success: true,
		Data:    BotConfig{Provider: rec.Provider, Model: rec.Model, HasAPIKey: true},
	})
}
