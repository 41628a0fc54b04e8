package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/awaqi/supportbot/internal/log"
	"github.com/awaqi/supportbot/internal/rag"
)

// MaxMessageLength bounds chat questions.
const MaxMessageLength = 4000

// Answerer synthesizes answers from retrieved context.
// Satisfied by *rag.Synthesizer.
type Answerer interface {
	Answer(ctx context.Context, message, extraContext, botID string, firstTurn bool) (rag.Answer, error)
}

// ChatHandler handles the RAG chat endpoint.
type ChatHandler struct {
	synth  Answerer
	logger log.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(synth Answerer, logger log.Logger) *ChatHandler {
	if logger == nil {
		logger = log.NewNop()
	}
	return &ChatHandler{synth: synth, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /chat/", h.chat)
	mux.HandleFunc("POST /chat", h.chat)
}

// ChatRequest is the chat request body. FirstTurn marks the opening
// message of a conversation; the server keeps no turn state of its own.
type ChatRequest struct {
	Message   string `json:"message"`
	Context   string `json:"context,omitempty"`
	FirstTurn bool   `json:"first_turn,omitempty"`
}

// ChatResponse is the chat response body.
type ChatResponse struct {
	Response   string   `json:"response"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
}

func (h *ChatHandler) chat(w http.ResponseWriter, r *http.Request) {
	botID, ok := apiKeyBotID(r)
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, CodeInvalidAPIKey, "X-API-Key required")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, CodeInvalidRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, h.logger, http.StatusBadRequest, CodeInvalidRequest, "message is required")
		return
	}
	if len(req.Message) > MaxMessageLength {
		writeError(w, h.logger, http.StatusBadRequest, CodeInvalidRequest, "message too long")
		return
	}

	answer, err := h.synth.Answer(r.Context(), req.Message, req.Context, botID, req.FirstTurn)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, ChatResponse{
		Response:   answer.Response,
		Sources:    answer.Sources,
		Confidence: answer.Confidence,
	})
}
