package api

import "net/http"

// Request authentication is stubbed: the handlers only check that the
// expected credential header is present and derive the tenant from
// X-Bot-ID (placeholder when absent). Real token validation lives behind
// these two functions so it can be added without touching the handlers.

// defaultBotID is the placeholder tenant used until real authentication
// maps credentials to bots.
const defaultBotID = "bot-id-stub"

// adminBotID returns the admin caller's bot ID, or false when the request
// carries no Authorization header.
func adminBotID(r *http.Request) (string, bool) {
	if r.Header.Get("Authorization") == "" {
		return "", false
	}
	if botID := r.Header.Get("X-Bot-ID"); botID != "" {
		return botID, true
	}
	return defaultBotID, true
}

// apiKeyBotID returns the bot ID for a widget/API-key caller, or false
// when the request carries no X-API-Key header.
func apiKeyBotID(r *http.Request) (string, bool) {
	if r.Header.Get("X-API-Key") == "" {
		return "", false
	}
	if botID := r.Header.Get("X-Bot-ID"); botID != "" {
		return botID, true
	}
	return defaultBotID, true
}
