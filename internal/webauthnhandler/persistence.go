package webauthnhandler

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/go-webauthn/webauthn/webauthn"
)

func (h *Handler) upsertUser(ctx context.Context, u *user) error {
	stmt := `INSERT INTO passkey_identities (id, display_name)
VALUES (:id, :display_name)
ON CONFLICT (id) DO UPDATE SET display_name = :display_name`
	if _, err := h.database.ReadWrite.ExecContext(ctx, stmt, u.WebAuthnID(), u.WebAuthnDisplayName()); err != nil {
		return fmt.Errorf("db upsert user %s (id: %s): %w",
			u.WebAuthnDisplayName(), hex.EncodeToString(u.WebAuthnID()), err)
	}
	return nil
}

func (h *Handler) getUser(ctx context.Context, id []byte) (*user, error) {
	stmt := `SELECT id, display_name FROM passkey_identities WHERE id = ?`
	var found user
	if err := h.database.ReadOnly.QueryRowContext(ctx, stmt, id).Scan(&found.id, &found.displayName); err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}

	stmt = `SELECT id,
       public_key,
       attestation_type,
       transport,
       flag_user_present,
       flag_user_verified,
       flag_backup_eligible,
       flag_backup_state,
       authenticator_aaguid,
       authenticator_sign_count,
       authenticator_clone_warning,
       authenticator_attachment
FROM passkey_credentials
WHERE user_id = ?`
	rows, err := h.database.ReadOnly.QueryContext(ctx, stmt, id)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			h.logger.Error("could not close rows", "err", fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	for rows.Next() {
		var (
			credential webauthn.Credential
			transport  []byte
		)
		if err = rows.Scan(
			&credential.ID,
			&credential.PublicKey,
			&credential.AttestationType,
			&transport,
			&credential.Flags.UserPresent,
			&credential.Flags.UserVerified,
			&credential.Flags.BackupEligible,
			&credential.Flags.BackupState,
			&credential.Authenticator.AAGUID,
			&credential.Authenticator.SignCount,
			&credential.Authenticator.CloneWarning,
			&credential.Authenticator.Attachment,
		); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		if err = json.Unmarshal(transport, &credential.Transport); err != nil {
			return nil, fmt.Errorf("JSON decode transport: %w", err)
		}
		found.credentials = append(found.credentials, credential)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("check rows error: %w", err)
	}

	return &found, nil
}

func (h *Handler) upsertCredential(ctx context.Context, userID []byte, credential *webauthn.Credential) error {
	stmt := `INSERT INTO passkey_credentials (id,
                         user_id,
                         public_key,
                         attestation_type,
                         transport,
                         flag_user_present,
                         flag_user_verified,
                         flag_backup_eligible,
                         flag_backup_state,
                         authenticator_aaguid,
                         authenticator_sign_count,
                         authenticator_clone_warning,
                         authenticator_attachment)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET attestation_type            = EXCLUDED.attestation_type,
                               transport                   = EXCLUDED.transport,
                               flag_user_present           = EXCLUDED.flag_user_present,
                               flag_user_verified          = EXCLUDED.flag_user_verified,
                               flag_backup_eligible        = EXCLUDED.flag_backup_eligible,
                               flag_backup_state           = EXCLUDED.flag_backup_state,
                               authenticator_aaguid        = EXCLUDED.authenticator_aaguid,
                               authenticator_sign_count    = EXCLUDED.authenticator_sign_count,
                               authenticator_clone_warning = EXCLUDED.authenticator_clone_warning,
                               authenticator_attachment    = EXCLUDED.authenticator_attachment`

	encodedTransport, err := json.Marshal(credential.Transport)
	if err != nil {
		return fmt.Errorf("JSON encode transport: %w", err)
	}
	_, err = h.database.ReadWrite.ExecContext(
		ctx,
		stmt,
		credential.ID,
		userID,
		credential.PublicKey,
		credential.AttestationType,
		string(encodedTransport),
		credential.Flags.UserPresent,
		credential.Flags.UserVerified,
		credential.Flags.BackupEligible,
		credential.Flags.BackupState,
		credential.Authenticator.AAGUID,
		credential.Authenticator.SignCount,
		credential.Authenticator.CloneWarning,
		credential.Authenticator.Attachment,
	)
	if err != nil {
		return fmt.Errorf("db upsert credential (user_id: %s, credential_id: %s): %w",
			hex.EncodeToString(userID), hex.EncodeToString(credential.ID), err)
	}
	return nil
}

// getUserIntegerID maps a passkey's byte identity to the integer user_id the rest of the
// module (health_profiles, workout_scores) keys on. sql.ErrNoRows means the identity was
// never registered, which should only happen for a tampered or stale session.
func (h *Handler) getUserIntegerID(ctx context.Context, webauthnID []byte) (int, error) {
	stmt := `SELECT user_id FROM passkey_identities WHERE id = ?`
	var userID int
	if err := h.database.ReadOnly.QueryRowContext(ctx, stmt, webauthnID).Scan(&userID); err != nil {
		return 0, fmt.Errorf("query user integer id: %w", err)
	}
	return userID, nil
}
