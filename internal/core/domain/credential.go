package domain

import (
	"errors"
	"time"
)

// Credential is the single merchant credential record for the NPS switch.
// APIPasswordEnc and SharedSecretEnc hold AES-GCM ciphertext and are never serialized.
type Credential struct {
	ID              int64     `json:"id"`
	MerchantID      string    `json:"merchant_id"`
	MerchantName    string    `json:"merchant_name"`
	APIUsername     string    `json:"api_username"`
	APIPasswordEnc  string    `json:"-"`
	SharedSecretEnc string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GatewayCredential is the decrypted view of a Credential used on the
// outbound path. It never leaves the process.
type GatewayCredential struct {
	MerchantID   string
	MerchantName string
	APIUsername  string
	APIPassword  string
	SharedSecret string
}

// ErrCredentialExists is returned by storage when the singleton row is already taken.
var ErrCredentialExists = errors.New("credential record already exists")
