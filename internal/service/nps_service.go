package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"nps-merchant-gateway/internal/core/domain"
	"nps-merchant-gateway/internal/core/ports"
	"nps-merchant-gateway/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	merchantTxnIDMinLen = 5
	merchantTxnIDMaxLen = 50
)

// NPSServiceImpl implements ports.PaymentService against the NPS switch.
// Every operation runs the same pipeline: validate, load the credential,
// sign the payload, post it and normalize the reply.
type NPSServiceImpl struct {
	creds       ports.CredentialService
	sigSvc      ports.SignatureService
	client      ports.GatewayClient
	normalizer  *ResponseNormalizer
	ledger      ports.CallbackLedger
	callbackTTL time.Duration
	log         zerolog.Logger
}

// NewNPSService creates a new NPSServiceImpl. ledger may be nil, in which
// case every callback is treated as a first delivery.
func NewNPSService(
	creds ports.CredentialService,
	sigSvc ports.SignatureService,
	client ports.GatewayClient,
	normalizer *ResponseNormalizer,
	ledger ports.CallbackLedger,
	callbackTTL time.Duration,
	log zerolog.Logger,
) *NPSServiceImpl {
	return &NPSServiceImpl{
		creds:       creds,
		sigSvc:      sigSvc,
		client:      client,
		normalizer:  normalizer,
		ledger:      ledger,
		callbackTTL: callbackTTL,
		log:         log,
	}
}

// PaymentInstruments lists the instruments enabled for the merchant.
func (s *NPSServiceImpl) PaymentInstruments(ctx context.Context) (*ports.GatewayResult, error) {
	cred, err := s.creds.Load(ctx)
	if err != nil {
		return nil, err
	}

	payload := &domain.InstrumentsPayload{
		MerchantID:   cred.MerchantID,
		MerchantName: cred.MerchantName,
	}
	return s.exchange(ctx, cred, domain.EndpointInstruments, payload, domain.InstrumentsSchema)
}

// ServiceCharge looks up the charge for paying amount with an instrument.
func (s *NPSServiceImpl) ServiceCharge(ctx context.Context, req ports.ServiceChargeRequest) (*ports.GatewayResult, error) {
	var details []apperror.Detail
	details = append(details, checkAmount(req.Amount, domain.ServiceChargeMaxDigits)...)
	if strings.TrimSpace(req.InstrumentCode) == "" {
		details = append(details, fieldError("payment_instrument_id", "This field may not be blank."))
	}
	if len(details) > 0 {
		return nil, apperror.ValidationFields(details)
	}

	cred, err := s.creds.Load(ctx)
	if err != nil {
		return nil, err
	}

	payload := &domain.ServiceChargePayload{
		MerchantID:     cred.MerchantID,
		MerchantName:   cred.MerchantName,
		Amount:         domain.FormatAmount(req.Amount),
		InstrumentCode: req.InstrumentCode,
	}
	return s.exchange(ctx, cred, domain.EndpointServiceCharge, payload, domain.ServiceChargeSchema)
}

// ProcessID obtains a process id for a new transaction.
// A pending reply is returned as is; nothing polls for completion.
func (s *NPSServiceImpl) ProcessID(ctx context.Context, req ports.ProcessIDRequest) (*ports.GatewayResult, error) {
	var details []apperror.Detail
	details = append(details, checkAmount(req.Amount, domain.ProcessIDMaxDigits)...)
	details = append(details, checkTxnID(req.MerchantTxnID)...)
	if len(details) > 0 {
		return nil, apperror.ValidationFields(details)
	}

	cred, err := s.creds.Load(ctx)
	if err != nil {
		return nil, err
	}

	payload := &domain.ProcessIDPayload{
		MerchantID:    cred.MerchantID,
		MerchantName:  cred.MerchantName,
		Amount:        domain.FormatAmount(req.Amount),
		MerchantTxnID: req.MerchantTxnID,
	}
	return s.exchange(ctx, cred, domain.EndpointProcessID, payload, domain.ProcessIDSchema)
}

// CheckStatus queries the transaction and folds its Status into the result:
// Success gives code "0", Pending gives code "2", anything else is a
// TransactionFailed error carrying the transaction data.
func (s *NPSServiceImpl) CheckStatus(ctx context.Context, merchantTxnID string) (*ports.GatewayResult, error) {
	if strings.TrimSpace(merchantTxnID) == "" {
		return nil, apperror.ValidationFields([]apperror.Detail{fieldError("merchant_txn_id", "This field may not be blank.")})
	}

	cred, err := s.creds.Load(ctx)
	if err != nil {
		return nil, err
	}

	payload := &domain.StatusPayload{
		MerchantID:    cred.MerchantID,
		MerchantName:  cred.MerchantName,
		MerchantTxnID: merchantTxnID,
	}
	res, err := s.exchange(ctx, cred, domain.EndpointCheckStatus, payload, domain.TransactionStatusSchema)
	if err != nil {
		return nil, err
	}

	txn, ok := res.Data.(*domain.TransactionStatus)
	if !ok {
		// Gateway-level pending: there is no transaction record to inspect yet.
		return res, nil
	}

	switch txn.Outcome() {
	case domain.TxnStatusSuccess:
		return &ports.GatewayResult{Code: domain.GatewayCodeSuccess, Message: "Payment successful", Data: txn}, nil
	case domain.TxnStatusPending:
		return &ports.GatewayResult{Code: domain.GatewayCodePending, Message: "Payment pending", Data: txn}, nil
	}

	s.log.Info().
		Str("merchant_txn_id", merchantTxnID).
		Str("status", txn.Status.String()).
		Msg("transaction reported as failed")
	return nil, apperror.ErrTransactionFailed(txn.FailureReason(), txn)
}

// HandleCallback processes a gateway notification. The transaction is
// re-checked with CheckTransactionStatus; a failed transaction still counts
// as delivered. It returns true on the first delivery for merchantTxnID.
func (s *NPSServiceImpl) HandleCallback(ctx context.Context, merchantTxnID, gatewayTxnID string) (bool, error) {
	var details []apperror.Detail
	if strings.TrimSpace(merchantTxnID) == "" {
		details = append(details, fieldError("MerchantTxnId", "This field is required."))
	}
	if strings.TrimSpace(gatewayTxnID) == "" {
		details = append(details, fieldError("GatewayTxnId", "This field is required."))
	}
	if len(details) > 0 {
		return false, apperror.ValidationFields(details)
	}

	res, err := s.CheckStatus(ctx, merchantTxnID)
	if err != nil && apperror.KindOf(err) != apperror.KindTransactionFailed {
		return false, err
	}

	evt := s.log.Info().
		Str("merchant_txn_id", merchantTxnID).
		Str("gateway_txn_id", gatewayTxnID)
	if res != nil {
		evt = evt.Str("code", res.Code)
	} else {
		evt = evt.Str("code", domain.GatewayCodeError)
	}
	evt.Msg("gateway callback")

	if s.ledger == nil {
		return true, nil
	}
	first, err := s.ledger.MarkReceived(ctx, merchantTxnID, s.callbackTTL)
	if err != nil {
		s.log.Warn().Err(err).Str("merchant_txn_id", merchantTxnID).Msg("callback ledger unavailable")
		return true, nil
	}
	return first, nil
}

// exchange signs payload, posts it and normalizes the reply.
func (s *NPSServiceImpl) exchange(
	ctx context.Context,
	cred *domain.GatewayCredential,
	endpoint domain.Endpoint,
	payload domain.SignedPayload,
	schema domain.ResponseSchema,
) (*ports.GatewayResult, error) {
	sig, err := s.sigSvc.Sign(cred.SharedSecret, payload.SigningFields()...)
	if err != nil {
		return nil, apperror.ErrSignature(err)
	}
	payload.SetSignature(sig)

	resp, err := s.client.Post(ctx, endpoint, payload, cred)
	if err != nil {
		return nil, err
	}

	res, err := s.normalizer.Normalize(resp, schema)
	if err != nil {
		s.log.Warn().Err(err).Str("endpoint", endpoint.Name()).Msg("gateway reply rejected")
		return nil, err
	}
	return res, nil
}

func checkAmount(amount decimal.Decimal, maxDigits int) []apperror.Detail {
	if amount.LessThan(domain.MinAmount) {
		return []apperror.Detail{fieldError("amount", "Ensure this value is greater than or equal to 0.01.")}
	}
	if msg := domain.CheckPrecision(amount, maxDigits, domain.AmountDecimalPlaces); msg != "" {
		return []apperror.Detail{fieldError("amount", msg)}
	}
	return nil
}

func checkTxnID(id string) []apperror.Detail {
	switch n := utf8.RuneCountInString(id); {
	case strings.TrimSpace(id) == "":
		return []apperror.Detail{fieldError("merchant_txn_id", "This field may not be blank.")}
	case n < merchantTxnIDMinLen:
		return []apperror.Detail{fieldError("merchant_txn_id", "Merchant transaction ID must be at least 5 characters long")}
	case n > merchantTxnIDMaxLen:
		return []apperror.Detail{fieldError("merchant_txn_id", "Ensure this field has no more than 50 characters.")}
	}
	return nil
}

func fieldError(field, msg string) apperror.Detail {
	return apperror.Detail{ErrorCode: "400", ErrorMessage: field + ": " + msg}
}
