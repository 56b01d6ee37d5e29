package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"gatehouse/internal/session"
	"gatehouse/pkg/domerr"
	"gatehouse/pkg/httputil"
	"gatehouse/pkg/requestcontext"
)

// SessionHandler answers auth-state questions for activated sessions.
type SessionHandler struct {
	store  session.Store
	logger *slog.Logger
}

func NewSessionHandler(store session.Store, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{store: store, logger: logger}
}

type sessionView struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	Status      string    `json:"status"`
	SignedIn    bool      `json:"signed_in"`
	ActivatedAt time.Time `json:"activated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// handleMe returns the session carried by the bearer token. Runs behind
// RequireSession, which stashes the id in the request context.
func (h *SessionHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	sessionID := requestcontext.SessionID(r.Context())
	if sessionID.IsZero() {
		httputil.WriteError(w, domerr.New(domerr.CodeUnauthorized, "no session in token"))
		return
	}

	sess, err := h.store.FindByID(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, domerr.Wrap(domerr.CodeNotFound, "unknown session", err))
		return
	}

	view := sessionView{
		ID:          sess.ID.String(),
		Status:      string(sess.Status),
		SignedIn:    sess.SignedIn(),
		ActivatedAt: sess.ActivatedAt,
		ExpiresAt:   sess.ExpiresAt,
	}
	if !sess.UserID.IsZero() {
		view.UserID = sess.UserID.String()
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}
