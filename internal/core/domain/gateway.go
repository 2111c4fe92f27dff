package domain

import (
	"bytes"
	"encoding/json"
	"errors"

	"nps-merchant-gateway/pkg/apperror"
)

// Gateway response codes.
const (
	GatewayCodeSuccess = "0"
	GatewayCodeError   = "1"
	GatewayCodePending = "2"
)

// Endpoint identifies one NPS API operation.
type Endpoint string

const (
	EndpointInstruments   Endpoint = "/GetPaymentInstrumentDetails"
	EndpointServiceCharge Endpoint = "/GetServiceCharge"
	EndpointProcessID     Endpoint = "/GetProcessId"
	EndpointCheckStatus   Endpoint = "/CheckTransactionStatus"
)

// Name returns a short label for logs and metrics.
func (e Endpoint) Name() string {
	switch e {
	case EndpointInstruments:
		return "instruments"
	case EndpointServiceCharge:
		return "service_charge"
	case EndpointProcessID:
		return "process_id"
	case EndpointCheckStatus:
		return "check_status"
	}
	return "unknown"
}

// ErrNotObject is returned when a gateway body is valid JSON but not an object.
var ErrNotObject = errors.New("gateway response is not a JSON object")

// GatewayResponse is the switch's reply wrapper: {code, message, data?, errors?}.
// Data is kept raw so it can be checked against an endpoint schema and then
// passed through unchanged.
type GatewayResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data,omitempty"`
	Errors  []apperror.Detail `json:"errors,omitempty"`
}

// HasData reports whether the reply carried a non-null data member.
func (r *GatewayResponse) HasData() bool {
	return len(r.Data) > 0 && !bytes.Equal(bytes.TrimSpace(r.Data), []byte("null"))
}

// UnmarshalJSON decodes leniently: a non-string code or message keeps its
// raw JSON text, and a malformed errors member is dropped.
func (r *GatewayResponse) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return ErrNotObject
	}
	if raw == nil {
		return ErrNotObject
	}

	*r = GatewayResponse{
		Code:    rawText(raw["code"]),
		Message: rawText(raw["message"]),
	}
	if d, ok := raw["data"]; ok && !bytes.Equal(bytes.TrimSpace(d), []byte("null")) {
		r.Data = d
	}
	if e, ok := raw["errors"]; ok {
		var details []apperror.Detail
		if err := json.Unmarshal(e, &details); err == nil {
			r.Errors = details
		}
	}
	return nil
}

func rawText(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(v))
}

// FailedResponse synthesizes a code "1" reply from a local failure so
// callers can branch on one type.
func FailedResponse(err *apperror.AppError) *GatewayResponse {
	return &GatewayResponse{
		Code:    GatewayCodeError,
		Message: "Error",
		Errors:  err.Details(),
	}
}

// SignedPayload is an outbound request body whose signature covers
// SigningFields in the order returned.
type SignedPayload interface {
	SigningFields() []string
	SetSignature(sig string)
}

// InstrumentsPayload is the body of GetPaymentInstrumentDetails.
type InstrumentsPayload struct {
	MerchantID   string `json:"MerchantId"`
	MerchantName string `json:"MerchantName"`
	Signature    string `json:"Signature"`
}

func (p *InstrumentsPayload) SigningFields() []string {
	return []string{p.MerchantID, p.MerchantName}
}

func (p *InstrumentsPayload) SetSignature(sig string) { p.Signature = sig }

// ServiceChargePayload is the body of GetServiceCharge.
type ServiceChargePayload struct {
	MerchantID     string `json:"MerchantId"`
	MerchantName   string `json:"MerchantName"`
	Amount         string `json:"Amount"`
	InstrumentCode string `json:"InstrumentCode"`
	Signature      string `json:"Signature"`
}

func (p *ServiceChargePayload) SigningFields() []string {
	return []string{p.Amount, p.MerchantID, p.MerchantName, p.InstrumentCode}
}

func (p *ServiceChargePayload) SetSignature(sig string) { p.Signature = sig }

// ProcessIDPayload is the body of GetProcessId.
type ProcessIDPayload struct {
	MerchantID    string `json:"MerchantId"`
	MerchantName  string `json:"MerchantName"`
	Amount        string `json:"Amount"`
	MerchantTxnID string `json:"MerchantTxnId"`
	Signature     string `json:"Signature"`
}

func (p *ProcessIDPayload) SigningFields() []string {
	return []string{p.Amount, p.MerchantID, p.MerchantName, p.MerchantTxnID}
}

func (p *ProcessIDPayload) SetSignature(sig string) { p.Signature = sig }

// StatusPayload is the body of CheckTransactionStatus.
type StatusPayload struct {
	MerchantID    string `json:"MerchantId"`
	MerchantName  string `json:"MerchantName"`
	MerchantTxnID string `json:"MerchantTxnId"`
	Signature     string `json:"Signature"`
}

func (p *StatusPayload) SigningFields() []string {
	return []string{p.MerchantID, p.MerchantName, p.MerchantTxnID}
}

func (p *StatusPayload) SetSignature(sig string) { p.Signature = sig }
