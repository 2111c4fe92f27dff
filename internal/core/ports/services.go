package ports

import (
	"context"
	"time"

	"nps-merchant-gateway/internal/core/domain"

	"github.com/shopspring/decimal"
)

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA512 signing of gateway requests.
type SignatureService interface {
	Sign(secret string, fields ...string) (string, error)
	Verify(secret, signature string, fields ...string) bool
	BuildSigningString(fields ...string) string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// CredentialCache is the Redis read-through layer in front of the credential table.
type CredentialCache interface {
	Get(ctx context.Context) (*domain.Credential, error) // nil on miss
	Set(ctx context.Context, cred *domain.Credential, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// CallbackLedger remembers which gateway callbacks were already acknowledged.
type CallbackLedger interface {
	// MarkReceived returns true the first time merchantTxnID is seen within ttl.
	MarkReceived(ctx context.Context, merchantTxnID string, ttl time.Duration) (bool, error)
}

// GatewayClient performs one signed POST against the NPS switch.
// Every local failure is returned as an *apperror.AppError.
type GatewayClient interface {
	Post(ctx context.Context, endpoint domain.Endpoint, payload interface{}, cred *domain.GatewayCredential) (*domain.GatewayResponse, error)
}

// --- Service Ports (Business Logic) ---

// CredentialService manages the credential record.
type CredentialService interface {
	Create(ctx context.Context, in CredentialInput) (*domain.Credential, error)
	Update(ctx context.Context, id int64, in CredentialPatch) (*domain.Credential, error)
	Get(ctx context.Context, id int64) (*domain.Credential, error)
	List(ctx context.Context) ([]domain.Credential, error)
	// Load returns the decrypted credential for outbound calls.
	Load(ctx context.Context) (*domain.GatewayCredential, error)
}

// CredentialInput holds the fields of a full create or replace.
type CredentialInput struct {
	MerchantID   string
	MerchantName string
	APIUsername  string
	APIPassword  string
	SharedSecret string
}

// CredentialPatch holds a partial update; nil fields are left unchanged.
type CredentialPatch struct {
	MerchantID   *string
	MerchantName *string
	APIUsername  *string
	APIPassword  *string
	SharedSecret *string
}

// PaymentService exposes the four gateway operations and callback handling.
type PaymentService interface {
	PaymentInstruments(ctx context.Context) (*GatewayResult, error)
	ServiceCharge(ctx context.Context, req ServiceChargeRequest) (*GatewayResult, error)
	ProcessID(ctx context.Context, req ProcessIDRequest) (*GatewayResult, error)
	CheckStatus(ctx context.Context, merchantTxnID string) (*GatewayResult, error)
	// HandleCallback re-checks the transaction and reports whether this
	// is the first delivery for merchantTxnID.
	HandleCallback(ctx context.Context, merchantTxnID, gatewayTxnID string) (bool, error)
}

// ServiceChargeRequest holds validated input for GetServiceCharge.
type ServiceChargeRequest struct {
	Amount         decimal.Decimal
	InstrumentCode string
}

// ProcessIDRequest holds validated input for GetProcessId.
type ProcessIDRequest struct {
	Amount        decimal.Decimal
	MerchantTxnID string
}

// GatewayResult is a successful or pending gateway outcome.
// For code "0" Data is the validated schema value (a pointer to the
// endpoint's data type); for code "2" it is the raw data member.
type GatewayResult struct {
	Code    string
	Message string
	Data    interface{}
}

// AuthService handles admin authentication.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// AuditService records audit entries.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
