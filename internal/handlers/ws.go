package handlers

import (
	"net/http"
	"strings"

	"bankingportal/internal/notify"
)

// WSNotifications upgrades the connection and subscribes the caller to its
// account's transaction events. Browsers cannot set headers on websocket
// handshakes, so the token is also accepted as a query parameter. Validation
// goes through the token service, so revoked tokens cannot subscribe.
func (h *Handler) WSNotifications(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	accountNumber, err := h.tokens.Validate(r.Context(), token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	notify.ServeWS(w, r, h.hub, accountNumber)
}
