package webauthnhandler

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"

	"github.com/summitpulse/ventiscore/internal/contexthelpers"
	"github.com/summitpulse/ventiscore/internal/logging"
)

// AuthenticateMiddleware resolves the caller's integer user ID from the session-carried
// passkey identity, if any, and attaches it to the request context. A request with no
// session, or one carrying a stale identity that was never registered, simply passes
// through unauthenticated; it is up to downstream handlers to require
// contexthelpers.IsAuthenticated.
func (h *Handler) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		webauthnUserID := h.sessionManager.GetBytes(ctx, string(userIDSessionKey))

		if webauthnUserID == nil {
			next.ServeHTTP(w, r)
			return
		}

		intUserID, err := h.getUserIntegerID(ctx, webauthnUserID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Session points at an identity that was never registered; leave unauthenticated.
		case err != nil:
			h.logger.LogAttrs(ctx, slog.LevelError, "unable to resolve user id", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		default:
			r = contexthelpers.AuthenticateContext(r, intUserID)
		}

		token := h.sessionManager.Token(ctx)
		tokenHash := sha256.Sum256([]byte(token))
		ctx = logging.WithAttrs(r.Context(),
			slog.String("session_hash", hex.EncodeToString(tokenHash[:])),
			slog.Int("user_id", intUserID),
		)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}
