package model

import "time"

// Credential is a per-user, per-provider API secret stored encrypted at rest.
// EncryptedKey is opaque ciphertext; the plaintext secret exists only
// transiently inside the send-message call path.
//
// A user may hold several credentials for the same provider, distinguished
// by KeyName. At most one is expected to be active by convention, but this
// is not enforced as a uniqueness constraint.
type Credential struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Provider     string    `json:"provider"`
	KeyName      string    `json:"key_name"`
	EncryptedKey string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
