package dto

import (
	"time"

	"nps-merchant-gateway/internal/core/domain"

	"github.com/shopspring/decimal"
)

// CredentialRequest is the body of POST and PUT /npspayment/.
type CredentialRequest struct {
	MerchantID   string `json:"merchant_id" binding:"required,max=100"`
	MerchantName string `json:"merchant_name" binding:"required,max=255"`
	APIUsername  string `json:"api_username" binding:"required,max=100"`
	APIPassword  string `json:"api_password" binding:"required,max=100"`
	SharedSecret string `json:"shared_secret" binding:"required,max=255"`
}

// CredentialPatchRequest is the body of PATCH /npspayment/{id}/. Omitted
// fields keep their stored value.
type CredentialPatchRequest struct {
	MerchantID   *string `json:"merchant_id" binding:"omitempty,max=100"`
	MerchantName *string `json:"merchant_name" binding:"omitempty,max=255"`
	APIUsername  *string `json:"api_username" binding:"omitempty,min=1,max=100"`
	APIPassword  *string `json:"api_password" binding:"omitempty,min=1,max=100"`
	SharedSecret *string `json:"shared_secret" binding:"omitempty,min=1,max=255"`
}

// CredentialResponse is the public view of the credential. The API password
// and shared secret are write-only.
type CredentialResponse struct {
	ID           int64     `json:"id"`
	MerchantID   string    `json:"merchant_id"`
	MerchantName string    `json:"merchant_name"`
	APIUsername  string    `json:"api_username"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewCredentialResponse maps a stored credential to its public view.
func NewCredentialResponse(c *domain.Credential) CredentialResponse {
	return CredentialResponse{
		ID:           c.ID,
		MerchantID:   c.MerchantID,
		MerchantName: c.MerchantName,
		APIUsername:  c.APIUsername,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// InstrumentsRequest carries optional hints that the gateway call ignores;
// the stored credential always supplies the merchant identity.
type InstrumentsRequest struct {
	MerchantID   *string `json:"merchant_id"`
	MerchantName *string `json:"merchant_name"`
}

// ServiceChargeRequest is the body of POST /service-charge/.
// Amount accepts a JSON number or a numeric string; so does the instrument
// code, since some instruments are identified by number.
type ServiceChargeRequest struct {
	Amount              *decimal.Decimal `json:"amount" binding:"required"`
	PaymentInstrumentID domain.Text      `json:"payment_instrument_id" binding:"required"`
}

// ProcessIDRequest is the body of POST /process-id/.
type ProcessIDRequest struct {
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
	MerchantTxnID string           `json:"merchant_txn_id" binding:"required"`
}

// NotificationRequest is the body of POST /notification/.
type NotificationRequest struct {
	MerchantTxnID string `json:"merchant_txn_id" binding:"required"`
	GatewayTxnID  string `json:"gateway_txn_id"`
}

// CallbackQuery is the query string the gateway sends to GET /notification/.
// Presence is checked by the service so both fields report together.
type CallbackQuery struct {
	MerchantTxnID string `form:"MerchantTxnId"`
	GatewayTxnID  string `form:"GatewayTxnId"`
}

// LoginRequest is the request body for admin login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}
