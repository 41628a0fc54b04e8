package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/awaqi/supportbot/internal/credential"
	"github.com/awaqi/supportbot/internal/ingest"
	"github.com/awaqi/supportbot/internal/log"
	"github.com/awaqi/supportbot/internal/rag"
)

// Stable machine-readable error codes surfaced to clients.
const (
	CodeInvalidFileType          = "INVALID_FILE_TYPE"
	CodeFileTooLarge             = "FILE_TOO_LARGE"
	CodeEmptyDocument            = "EMPTY_DOCUMENT"
	CodeUnsupportedProvider      = "UNSUPPORTED_PROVIDER"
	CodeCredentialsNotConfigured = "CREDENTIALS_NOT_CONFIGURED"
	CodeGenerationFailed         = "GENERATION_FAILED"
	CodeAuthRequired             = "AUTH_REQUIRED"
	CodeInvalidAPIKey            = "INVALID_API_KEY"
	CodeInvalidRequest           = "INVALID_REQUEST"
	CodeInternal                 = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON error shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, logger log.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Status already sent; nothing to do for the client.
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// writeError writes a JSON error response with a stable code.
func writeError(w http.ResponseWriter, logger log.Logger, status int, code, message string) {
	writeJSON(w, logger, status, ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps pipeline errors to HTTP responses. Backing-store
// and unknown errors surface with minimal detail so credentials in wrapped
// messages never reach clients.
func writeDomainError(w http.ResponseWriter, logger log.Logger, err error) {
	switch {
	case errors.Is(err, ingest.ErrInvalidFileType):
		writeError(w, logger, http.StatusBadRequest, CodeInvalidFileType, "only application/pdf uploads are accepted")
	case errors.Is(err, ingest.ErrFileTooLarge):
		writeError(w, logger, http.StatusBadRequest, CodeFileTooLarge, "uploads are limited to 10 MiB")
	case errors.Is(err, ingest.ErrEmptyDocument):
		writeError(w, logger, http.StatusBadRequest, CodeEmptyDocument, "no extractable text in document")
	case errors.Is(err, credential.ErrUnsupportedProvider):
		writeError(w, logger, http.StatusBadRequest, CodeUnsupportedProvider, "only the google provider is supported")
	case errors.Is(err, credential.ErrCredentialsNotConfigured):
		writeError(w, logger, http.StatusBadRequest, CodeCredentialsNotConfigured, "no model credentials configured for this bot")
	case errors.Is(err, rag.ErrGenerationFailed):
		writeError(w, logger, http.StatusBadGateway, CodeGenerationFailed, "model invocation failed")
	default:
		logger.Error("request failed", "error", err)
		writeError(w, logger, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}
