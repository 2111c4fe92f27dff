package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction statuses reported by CheckTransactionStatus.
const (
	TxnStatusSuccess = "Success"
	TxnStatusFail    = "Fail"
	TxnStatusPending = "Pending"
)

// Text is a gateway scalar that may arrive as a JSON string or number.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*t = Text(n.String())
	return nil
}

func (t Text) String() string { return string(t) }

// Defaulter is implemented by schema types that normalize themselves after
// successful validation.
type Defaulter interface {
	ApplyDefaults()
}

// ResponseSchema describes the expected shape of a success reply's data.
// New returns a pointer to the decode target; Many marks a list payload.
// SuccessMessage is used when the gateway sends a blank message.
// RawData keeps the gateway's data member as sent, extra fields included,
// once it has passed validation.
type ResponseSchema struct {
	Name           string
	SuccessMessage string
	Many           bool
	RawData        bool
	New            func() interface{}
}

// PaymentInstrument is one entry of GetPaymentInstrumentDetails.
type PaymentInstrument struct {
	InstitutionName Text  `json:"InstitutionName" validate:"required"`
	InstrumentName  Text  `json:"InstrumentName" validate:"required"`
	InstrumentCode  Text  `json:"InstrumentCode" validate:"required"`
	InstrumentValue *Text `json:"InstrumentValue"`
	LogoURL         Text  `json:"LogoUrl" validate:"required,url"`
	BankURL         Text  `json:"BankUrl" validate:"required"`
	BankType        Text  `json:"BankType" validate:"required"`
}

// ServiceCharge is the data of GetServiceCharge.
type ServiceCharge struct {
	Amount            Text `json:"Amount" validate:"required"`
	CommissionType    Text `json:"CommissionType" validate:"required"`
	ChargeValue       Text `json:"ChargeValue" validate:"required"`
	TotalChargeAmount Text `json:"TotalChargeAmount" validate:"required,nonneg_decimal"`
}

// ApplyDefaults renders TotalChargeAmount with two decimal places.
func (c *ServiceCharge) ApplyDefaults() {
	if d, err := decimal.NewFromString(c.TotalChargeAmount.String()); err == nil {
		c.TotalChargeAmount = Text(d.StringFixed(2))
	}
}

// ProcessID is the data of GetProcessId.
type ProcessID struct {
	ProcessID Text `json:"ProcessId" validate:"required"`
}

// TransactionStatus is the data of CheckTransactionStatus.
// Pointer fields may be blank but must be present. Status is free text;
// Outcome folds it.
type TransactionStatus struct {
	GatewayReferenceNo  Text  `json:"GatewayReferenceNo" validate:"required"`
	Amount              Text  `json:"Amount" validate:"required"`
	ServiceCharge       Text  `json:"ServiceCharge" validate:"required"`
	TransactionRemarks  *Text `json:"TransactionRemarks" validate:"required"`
	TransactionRemarks2 *Text `json:"TransactionRemarks2,omitempty"`
	TransactionRemarks3 *Text `json:"TransactionRemarks3,omitempty"`
	ProcessID           Text  `json:"ProcessId" validate:"required"`
	TransactionDate     Text  `json:"TransactionDate" validate:"required"`
	MerchantTxnID       Text  `json:"MerchantTxnId" validate:"required"`
	CbsMessage          *Text `json:"CbsMessage" validate:"required"`
	Status              Text  `json:"Status" validate:"required"`
	Institution         Text  `json:"Institution" validate:"required"`
	Instrument          Text  `json:"Instrument" validate:"required"`
	PaymentCurrency     Text  `json:"PaymentCurrency"`
	ExchangeRate        Text  `json:"ExchangeRate"`
}

// ApplyDefaults fills the optional currency fields the way the switch documents them.
func (s *TransactionStatus) ApplyDefaults() {
	if s.PaymentCurrency == "" {
		s.PaymentCurrency = "NPR"
	}
	if s.ExchangeRate == "" {
		s.ExchangeRate = "1"
	}
}

// Outcome folds Status case-insensitively into Success, Pending or Fail.
func (s *TransactionStatus) Outcome() string {
	switch strings.ToLower(strings.TrimSpace(s.Status.String())) {
	case "success":
		return TxnStatusSuccess
	case "pending":
		return TxnStatusPending
	default:
		return TxnStatusFail
	}
}

// FailureReason returns CbsMessage, or a fallback when it is blank.
func (s *TransactionStatus) FailureReason() string {
	if s.CbsMessage != nil && strings.TrimSpace(s.CbsMessage.String()) != "" {
		return s.CbsMessage.String()
	}
	return "Unknown error"
}

// Per-endpoint schemas.
var (
	InstrumentsSchema = ResponseSchema{
		Name:           "payment instruments",
		SuccessMessage: "Success",
		Many:           true,
		New:            func() interface{} { return &[]PaymentInstrument{} },
	}
	ServiceChargeSchema = ResponseSchema{
		Name:           "service charge",
		SuccessMessage: "Success",
		New:            func() interface{} { return &ServiceCharge{} },
	}
	ProcessIDSchema = ResponseSchema{
		Name:           "process id",
		SuccessMessage: "Success",
		RawData:        true,
		New:            func() interface{} { return &ProcessID{} },
	}
	TransactionStatusSchema = ResponseSchema{
		Name:           "transaction status",
		SuccessMessage: "Success",
		New:            func() interface{} { return &TransactionStatus{} },
	}
)
