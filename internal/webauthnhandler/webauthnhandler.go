// Package webauthnhandler is the passkey authentication boundary in front of the scoring
// API: a caller must register and log in with a WebAuthn passkey before uploading a
// heart-rate trace or reading back a ScoringResult. It knows nothing about health profiles
// or zones; it only establishes who is calling.
package webauthnhandler

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/summitpulse/ventiscore/internal/ptr"
	"github.com/summitpulse/ventiscore/internal/sqlite"
)

// Handler wraps a go-webauthn relying party configured for one host and backs its
// challenge/session state with the shared scs session manager.
type Handler struct {
	logger         *slog.Logger
	webAuthn       *webauthn.WebAuthn
	sessionManager *scs.SessionManager
	database       *sqlite.Database
}

// New configures a relying party for fqdn (the host serving the API) and returns a Handler
// backed by database for credential storage and sessionManager for challenge state.
func New(
	addr string,
	fqdn string,
	logger *slog.Logger,
	sessionManager *scs.SessionManager,
	database *sqlite.Database,
) (*Handler, error) {
	var (
		err     error
		timeout = 5 * time.Minute
		init    sync.Once
	)
	// Session data must be registered with gob before the session manager can store it.
	init.Do(func() {
		gob.Register(webauthn.SessionData{}) //nolint:exhaustruct // only need to register the struct.
	})

	rpOrigins := []string{fmt.Sprintf("https://%s", fqdn)}
	if fqdn == "localhost" {
		rpOrigins = []string{fmt.Sprintf("http://%s", addr)}
	}

	webauthnConfig := &webauthn.Config{
		RPID:                        fqdn,
		RPDisplayName:               "Ventiscore",
		RPOrigins:                   rpOrigins,
		RPTopOrigins:                nil,
		RPTopOriginVerificationMode: protocol.TopOriginIgnoreVerificationMode,
		AttestationPreference:       protocol.PreferNoAttestation,
		AuthenticatorSelection: protocol.AuthenticatorSelection{
			AuthenticatorAttachment: "platform",
			RequireResidentKey:      ptr.Ref(true),
			ResidentKey:             protocol.ResidentKeyRequirementRequired,
			UserVerification:        protocol.VerificationDiscouraged,
		},
		Debug:                false,
		EncodeUserIDAsString: false,
		Timeouts: webauthn.TimeoutsConfig{
			Login:        webauthn.TimeoutConfig{Enforce: true, Timeout: timeout, TimeoutUVD: timeout},
			Registration: webauthn.TimeoutConfig{Enforce: true, Timeout: timeout, TimeoutUVD: timeout},
		},
		MDS: nil,
	}

	webAuthn, err := webauthn.New(webauthnConfig)
	if err != nil {
		return nil, fmt.Errorf("new webauthn: %w", err)
	}

	return &Handler{
		logger:         logger,
		webAuthn:       webAuthn,
		sessionManager: sessionManager,
		database:       database,
	}, nil
}

// BeginRegistration mints a fresh identity and returns the JSON-encoded creation options
// a browser passes to navigator.credentials.create.
func (h *Handler) BeginRegistration(ctx context.Context) ([]byte, error) {
	newUser, err := newRandomUser()
	if err != nil {
		return nil, fmt.Errorf("new user: %w", err)
	}

	authSelect := protocol.AuthenticatorSelection{
		AuthenticatorAttachment: protocol.Platform,
		RequireResidentKey:      protocol.ResidentKeyNotRequired(),
		ResidentKey:             protocol.ResidentKeyRequirementRequired,
		UserVerification:        protocol.VerificationDiscouraged,
	}

	opts, session, err := h.webAuthn.BeginRegistration(
		newUser,
		webauthn.WithAuthenticatorSelection(authSelect),
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired))
	if err != nil {
		return nil, fmt.Errorf("begin registration: %w", err)
	}

	h.sessionManager.Put(ctx, string(webAuthnSessionKey), *session)
	if err = h.upsertUser(ctx, newUser); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	out, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("JSON encode: %w", err)
	}
	return out, nil
}

func (h *Handler) parseWebAuthnSession(ctx context.Context) (webauthn.SessionData, error) {
	ses := h.sessionManager.Get(ctx, string(webAuthnSessionKey))
	session, ok := ses.(webauthn.SessionData)
	if !ok {
		return webauthn.SessionData{}, fmt.Errorf("could not parse webauthn.SessionData (data: %v)", ses)
	}
	return session, nil
}

// FinishRegistration validates the browser's attestation response, stores the resulting
// credential, and logs the caller in.
func (h *Handler) FinishRegistration(r *http.Request) error {
	ctx := r.Context()

	session, err := h.parseWebAuthnSession(ctx)
	if err != nil {
		return fmt.Errorf("parse webauthn session: %w", err)
	}

	registeringUser, err := h.getUser(ctx, session.UserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	credential, err := h.webAuthn.FinishRegistration(registeringUser, session, r)
	if err != nil {
		return fmt.Errorf("finish webauthn registration: %w", err)
	}

	if err = h.upsertCredential(ctx, registeringUser.WebAuthnID(), credential); err != nil {
		return fmt.Errorf("upsert webauthn credential: %w", err)
	}

	if err = h.sessionManager.RenewToken(ctx); err != nil {
		return fmt.Errorf("renew session token: %w", err)
	}
	h.sessionManager.Put(ctx, string(userIDSessionKey), registeringUser.WebAuthnID())

	return nil
}

// BeginLogin returns the JSON-encoded discoverable-credential request options a browser
// passes to navigator.credentials.get. It does not need to know the caller's identity
// up front; ValidatePasskeyLogin resolves it from the assertion's user handle.
func (h *Handler) BeginLogin(ctx context.Context) ([]byte, error) {
	options, session, err := h.webAuthn.BeginDiscoverableLogin()
	if err != nil {
		return nil, fmt.Errorf("begin discoverable webauthn login: %w", err)
	}

	h.sessionManager.Put(ctx, string(webAuthnSessionKey), *session)

	out, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("json marshal webauthn options: %w", err)
	}
	return out, nil
}

func (h *Handler) findUserHandler(ctx context.Context) webauthn.DiscoverableUserHandler {
	return func(_, userID []byte) (webauthn.User, error) {
		return h.getUser(ctx, userID)
	}
}

// FinishLogin validates the browser's assertion response and logs the resolved caller in.
func (h *Handler) FinishLogin(r *http.Request) error {
	ctx := r.Context()

	session, err := h.parseWebAuthnSession(ctx)
	if err != nil {
		return fmt.Errorf("parse webauthn session: %w", err)
	}

	parsedResponse, err := protocol.ParseCredentialRequestResponse(r)
	if err != nil {
		return fmt.Errorf("parse credential request response: %w", err)
	}
	loggedInUser, credential, err := h.webAuthn.ValidatePasskeyLogin(h.findUserHandler(ctx), session, parsedResponse)
	if err != nil {
		return fmt.Errorf("validate passkey login: %w", err)
	}

	if err = h.upsertCredential(ctx, loggedInUser.WebAuthnID(), credential); err != nil {
		return fmt.Errorf("upsert webauthn credential: %w", err)
	}

	if err = h.sessionManager.RenewToken(ctx); err != nil {
		return fmt.Errorf("renew session token: %w", err)
	}
	h.sessionManager.Put(ctx, string(userIDSessionKey), loggedInUser.WebAuthnID())

	return nil
}

// Logout clears the caller's session.
func (h *Handler) Logout(ctx context.Context) error {
	if err := h.sessionManager.RenewToken(ctx); err != nil {
		return fmt.Errorf("renew session token: %w", err)
	}
	h.sessionManager.Remove(ctx, string(userIDSessionKey))
	return nil
}
