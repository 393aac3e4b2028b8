package webauthnhandler

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/go-webauthn/webauthn/webauthn"
)

type sessionKey string

const (
	webAuthnSessionKey sessionKey = "webauthnSession"
	userIDSessionKey   sessionKey = "webauthnUserID"
)

// user adapts a stored passkey identity to the webauthn.User interface. displayName has no
// bearing on scoring; it exists only so a browser's passkey picker shows something readable.
type user struct {
	id          []byte
	displayName string
	credentials []webauthn.Credential
}

func (u *user) WebAuthnID() []byte                          { return u.id }
func (u *user) WebAuthnName() string                        { return u.displayName }
func (u *user) WebAuthnDisplayName() string                 { return u.displayName }
func (u *user) WebAuthnCredentials() []webauthn.Credential { return u.credentials }

const webAuthnIDLength = 16

// newRandomUser mints a fresh identity for a not-yet-registered passkey. The display name is
// derived from the first four bytes of the random ID, so no personal data touches the
// credential store.
func newRandomUser() (*user, error) {
	id := make([]byte, webAuthnIDLength)
	if _, err := rand.Read(id); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return &user{
		id:          id,
		displayName: fmt.Sprintf("athlete-%s", hex.EncodeToString(id[:4])),
		credentials: nil,
	}, nil
}
