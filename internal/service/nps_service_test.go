package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"nps-merchant-gateway/internal/core/domain"
	"nps-merchant-gateway/internal/core/ports"
	"nps-merchant-gateway/internal/core/ports/mocks"
	"nps-merchant-gateway/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type npsMocks struct {
	creds  *mocks.MockCredentialService
	sig    *mocks.MockSignatureService
	client *mocks.MockGatewayClient
	ledger *mocks.MockCallbackLedger
}

func setupNPSService(t *testing.T) (*NPSServiceImpl, npsMocks) {
	ctrl := gomock.NewController(t)
	m := npsMocks{
		creds:  mocks.NewMockCredentialService(ctrl),
		sig:    mocks.NewMockSignatureService(ctrl),
		client: mocks.NewMockGatewayClient(ctrl),
		ledger: mocks.NewMockCallbackLedger(ctrl),
	}
	svc := NewNPSService(m.creds, m.sig, m.client, NewResponseNormalizer(), m.ledger, 24*time.Hour, zerolog.Nop())
	return svc, m
}

func gatewayCred() *domain.GatewayCredential {
	return &domain.GatewayCredential{
		MerchantID:   "M1",
		MerchantName: "Acme",
		APIUsername:  "acme_api",
		APIPassword:  "pw",
		SharedSecret: "s3cr3t",
	}
}

func reply(t *testing.T, body string) *domain.GatewayResponse {
	t.Helper()
	var resp domain.GatewayResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return &resp
}

func statusReply(t *testing.T, status, cbsMessage string) *domain.GatewayResponse {
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(txnStatusJSON), &m))
	m["Status"] = status
	m["CbsMessage"] = cbsMessage
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return reply(t, `{"code":"0","message":"Success","data":`+string(data)+`}`)
}

func TestNPSService_PaymentInstruments(t *testing.T) {
	svc, m := setupNPSService(t)
	ctx := context.Background()
	cred := gatewayCred()

	m.creds.EXPECT().Load(ctx).Return(cred, nil)
	m.sig.EXPECT().Sign("s3cr3t", "M1", "Acme").Return("sig-1", nil)
	m.client.EXPECT().Post(ctx, domain.EndpointInstruments, gomock.Any(), cred).
		DoAndReturn(func(_ context.Context, _ domain.Endpoint, payload interface{}, _ *domain.GatewayCredential) (*domain.GatewayResponse, error) {
			p := payload.(*domain.InstrumentsPayload)
			assert.Equal(t, "sig-1", p.Signature)
			assert.Equal(t, "M1", p.MerchantID)
			return reply(t, `{"code":"0","message":"Success","data":[{"InstitutionName":"Nabil","InstrumentName":"Nabil Bank","InstrumentCode":"NABIL","LogoUrl":"https://x.com/a.png","BankUrl":"https://nabil.com","BankType":"EBanking"}]}`), nil
		})

	res, err := svc.PaymentInstruments(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0", res.Code)
	assert.Len(t, *res.Data.(*[]domain.PaymentInstrument), 1)
}

func TestNPSService_ServiceCharge_SignsFormattedAmount(t *testing.T) {
	svc, m := setupNPSService(t)
	cred := gatewayCred()

	m.creds.EXPECT().Load(gomock.Any()).Return(cred, nil)
	m.sig.EXPECT().Sign("s3cr3t", "100.00", "M1", "Acme", "IMEPAY").Return("sig-2", nil)
	m.client.EXPECT().Post(gomock.Any(), domain.EndpointServiceCharge, gomock.Any(), cred).
		DoAndReturn(func(_ context.Context, _ domain.Endpoint, payload interface{}, _ *domain.GatewayCredential) (*domain.GatewayResponse, error) {
			p := payload.(*domain.ServiceChargePayload)
			assert.Equal(t, "100.00", p.Amount)
			assert.Equal(t, "IMEPAY", p.InstrumentCode)
			assert.Equal(t, "sig-2", p.Signature)
			return reply(t, `{"code":"0","message":"Success","data":{"Amount":"100","CommissionType":"Flat","ChargeValue":"5","TotalChargeAmount":"5"}}`), nil
		})

	res, err := svc.ServiceCharge(context.Background(), ports.ServiceChargeRequest{
		Amount:         decimal.RequireFromString("100"),
		InstrumentCode: "IMEPAY",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Text("5.00"), res.Data.(*domain.ServiceCharge).TotalChargeAmount)
}

func TestNPSService_ServiceCharge_ValidationMakesNoCalls(t *testing.T) {
	tests := []struct {
		name string
		req  ports.ServiceChargeRequest
		want string
	}{
		{"zero amount", ports.ServiceChargeRequest{Amount: decimal.Zero, InstrumentCode: "IME"},
			"amount: Ensure this value is greater than or equal to 0.01."},
		{"negative amount", ports.ServiceChargeRequest{Amount: decimal.RequireFromString("-5"), InstrumentCode: "IME"},
			"amount: Ensure this value is greater than or equal to 0.01."},
		{"too many places", ports.ServiceChargeRequest{Amount: decimal.RequireFromString("10.005"), InstrumentCode: "IME"},
			"amount: Ensure that there are no more than 2 decimal places."},
		{"too large", ports.ServiceChargeRequest{Amount: decimal.RequireFromString("123456789"), InstrumentCode: "IME"},
			"amount: Ensure that there are no more than 8 digits before the decimal point."},
		{"blank instrument", ports.ServiceChargeRequest{Amount: decimal.RequireFromString("10"), InstrumentCode: "  "},
			"payment_instrument_id: This field may not be blank."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No EXPECT calls: any use of creds, sig or client fails the test.
			svc, _ := setupNPSService(t)

			_, err := svc.ServiceCharge(context.Background(), tt.req)
			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
			assert.Equal(t, tt.want, appErr.Errors[0].ErrorMessage)
		})
	}
}

func TestNPSService_ProcessID(t *testing.T) {
	svc, m := setupNPSService(t)
	cred := gatewayCred()

	m.creds.EXPECT().Load(gomock.Any()).Return(cred, nil)
	m.sig.EXPECT().Sign("s3cr3t", "250.50", "M1", "Acme", "TXN-0001").Return("sig-3", nil)
	m.client.EXPECT().Post(gomock.Any(), domain.EndpointProcessID, gomock.Any(), cred).
		Return(reply(t, `{"code":"0","message":"Success","data":{"ProcessId":"E1C2","MerchantTxnId":"TXN-0001"}}`), nil)

	res, err := svc.ProcessID(context.Background(), ports.ProcessIDRequest{
		Amount:        decimal.RequireFromString("250.5"),
		MerchantTxnID: "TXN-0001",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ProcessId":"E1C2","MerchantTxnId":"TXN-0001"}`, string(res.Data.(json.RawMessage)))
}

func TestNPSService_ProcessID_PendingIsNotPolled(t *testing.T) {
	svc, m := setupNPSService(t)

	m.creds.EXPECT().Load(gomock.Any()).Return(gatewayCred(), nil)
	m.sig.EXPECT().Sign(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("sig", nil)
	m.client.EXPECT().Post(gomock.Any(), domain.EndpointProcessID, gomock.Any(), gomock.Any()).
		Return(reply(t, `{"code":"2","message":"Transaction in process"}`), nil).Times(1)

	res, err := svc.ProcessID(context.Background(), ports.ProcessIDRequest{
		Amount:        decimal.RequireFromString("10"),
		MerchantTxnID: "TXN-0002",
	})
	require.NoError(t, err)
	assert.Equal(t, "2", res.Code)
}

func TestNPSService_ProcessID_TxnIDLength(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"TX1", "merchant_txn_id: Merchant transaction ID must be at least 5 characters long"},
		{strings.Repeat("x", 51), "merchant_txn_id: Ensure this field has no more than 50 characters."},
		{"", "merchant_txn_id: This field may not be blank."},
	}

	for _, tt := range tests {
		svc, _ := setupNPSService(t)
		_, err := svc.ProcessID(context.Background(), ports.ProcessIDRequest{
			Amount:        decimal.RequireFromString("10"),
			MerchantTxnID: tt.id,
		})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, tt.want, appErr.Errors[0].ErrorMessage)
	}
}

func TestNPSService_ConfigurationMissing(t *testing.T) {
	svc, m := setupNPSService(t)
	m.creds.EXPECT().Load(gomock.Any()).Return(nil, apperror.ErrConfigurationMissing())

	_, err := svc.PaymentInstruments(context.Background())
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindConfigurationMissing, appErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
}

func TestNPSService_SignatureFailure(t *testing.T) {
	svc, m := setupNPSService(t)
	m.creds.EXPECT().Load(gomock.Any()).Return(gatewayCred(), nil)
	m.sig.EXPECT().Sign(gomock.Any(), gomock.Any(), gomock.Any()).Return("", ErrEmptySecret)

	_, err := svc.PaymentInstruments(context.Background())
	assert.Equal(t, apperror.KindSignature, apperror.KindOf(err))
}

func TestNPSService_TransportFailurePassesThrough(t *testing.T) {
	svc, m := setupNPSService(t)
	m.creds.EXPECT().Load(gomock.Any()).Return(gatewayCred(), nil)
	m.sig.EXPECT().Sign(gomock.Any(), gomock.Any(), gomock.Any()).Return("sig", nil)
	m.client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.FailedResponse(apperror.ErrTransport(errors.New("refused"))), apperror.ErrTransport(errors.New("refused")))

	_, err := svc.PaymentInstruments(context.Background())
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindTransport, appErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
}

func TestNPSService_CheckStatus_Outcomes(t *testing.T) {
	tests := []struct {
		status  string
		code    string
		message string
	}{
		{"Success", "0", "Payment successful"},
		{"Pending", "2", "Payment pending"},
		{"success", "0", "Payment successful"},
		{"PENDING", "2", "Payment pending"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			svc, m := setupNPSService(t)
			m.creds.EXPECT().Load(gomock.Any()).Return(gatewayCred(), nil)
			m.sig.EXPECT().Sign("s3cr3t", "M1", "Acme", "TXN-0001").Return("sig", nil)
			m.client.EXPECT().Post(gomock.Any(), domain.EndpointCheckStatus, gomock.Any(), gomock.Any()).
				Return(statusReply(t, tt.status, ""), nil)

			res, err := svc.CheckStatus(context.Background(), "TXN-0001")
			require.NoError(t, err)
			assert.Equal(t, tt.code, res.Code)
			assert.Equal(t, tt.message, res.Message)
			assert.IsType(t, &domain.TransactionStatus{}, res.Data)
		})
	}
}

func TestNPSService_CheckStatus_Failed(t *testing.T) {
	svc, m := setupNPSService(t)
	m.creds.EXPECT().Load(gomock.Any()).Return(gatewayCred(), nil)
	m.sig.EXPECT().Sign(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("sig", nil)
	m.client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(statusReply(t, "Fail", "insufficient funds"), nil)

	_, err := svc.CheckStatus(context.Background(), "TXN-0001")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindTransactionFailed, appErr.Kind)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Equal(t, "Payment failed: insufficient funds", appErr.Message)
	txn, ok := appErr.Data.(*domain.TransactionStatus)
	require.True(t, ok)
	assert.Equal(t, domain.Text("TXN-0001"), txn.MerchantTxnID)
}

func TestNPSService_CheckStatus_UnknownStatusFails(t *testing.T) {
	for _, status := range []string{"Cancelled", "FAIL", "Refunded"} {
		t.Run(status, func(t *testing.T) {
			svc, m := setupNPSService(t)
			expectStatusCall(t, m, statusReply(t, status, "declined by bank"), nil)

			_, err := svc.CheckStatus(context.Background(), "TXN-0001")
			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, apperror.KindTransactionFailed, appErr.Kind)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
			assert.Equal(t, "Payment failed: declined by bank", appErr.Message)
		})
	}
}

func TestNPSService_CheckStatus_GatewayPending(t *testing.T) {
	svc, m := setupNPSService(t)
	m.creds.EXPECT().Load(gomock.Any()).Return(gatewayCred(), nil)
	m.sig.EXPECT().Sign(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("sig", nil)
	m.client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(reply(t, `{"code":"2","message":"Transaction in process"}`), nil)

	res, err := svc.CheckStatus(context.Background(), "TXN-0001")
	require.NoError(t, err)
	assert.Equal(t, "2", res.Code)
	assert.Equal(t, "Transaction in process", res.Message)
}

func TestNPSService_CheckStatus_BlankID(t *testing.T) {
	svc, _ := setupNPSService(t)

	_, err := svc.CheckStatus(context.Background(), " ")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func expectStatusCall(t *testing.T, m npsMocks, resp *domain.GatewayResponse, err error) {
	m.creds.EXPECT().Load(gomock.Any()).Return(gatewayCred(), nil)
	m.sig.EXPECT().Sign(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("sig", nil)
	m.client.EXPECT().Post(gomock.Any(), domain.EndpointCheckStatus, gomock.Any(), gomock.Any()).Return(resp, err)
}

func TestNPSService_HandleCallback_FirstAndRepeat(t *testing.T) {
	svc, m := setupNPSService(t)

	expectStatusCall(t, m, statusReply(t, "Success", ""), nil)
	m.ledger.EXPECT().MarkReceived(gomock.Any(), "TXN-0001", 24*time.Hour).Return(true, nil)
	first, err := svc.HandleCallback(context.Background(), "TXN-0001", "G-1")
	require.NoError(t, err)
	assert.True(t, first)

	expectStatusCall(t, m, statusReply(t, "Success", ""), nil)
	m.ledger.EXPECT().MarkReceived(gomock.Any(), "TXN-0001", 24*time.Hour).Return(false, nil)
	first, err = svc.HandleCallback(context.Background(), "TXN-0001", "G-1")
	require.NoError(t, err)
	assert.False(t, first)
}

func TestNPSService_HandleCallback_FailedTransactionIsDelivered(t *testing.T) {
	svc, m := setupNPSService(t)

	expectStatusCall(t, m, statusReply(t, "Fail", "declined"), nil)
	m.ledger.EXPECT().MarkReceived(gomock.Any(), "TXN-0001", gomock.Any()).Return(true, nil)

	first, err := svc.HandleCallback(context.Background(), "TXN-0001", "G-1")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestNPSService_HandleCallback_GatewayErrorNotRecorded(t *testing.T) {
	svc, m := setupNPSService(t)
	transportErr := apperror.ErrTransport(errors.New("refused"))

	expectStatusCall(t, m, domain.FailedResponse(transportErr), transportErr)

	_, err := svc.HandleCallback(context.Background(), "TXN-0001", "G-1")
	assert.Equal(t, apperror.KindTransport, apperror.KindOf(err))
}

func TestNPSService_HandleCallback_LedgerDown(t *testing.T) {
	svc, m := setupNPSService(t)

	expectStatusCall(t, m, statusReply(t, "Success", ""), nil)
	m.ledger.EXPECT().MarkReceived(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))

	first, err := svc.HandleCallback(context.Background(), "TXN-0001", "G-1")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestNPSService_HandleCallback_MissingParams(t *testing.T) {
	svc, _ := setupNPSService(t)

	_, err := svc.HandleCallback(context.Background(), "", "")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Len(t, appErr.Errors, 2)
}
