package handler

import (
	"errors"
	"io"
	"net/http"

	"nps-merchant-gateway/internal/adapter/http/dto"
	"nps-merchant-gateway/internal/adapter/http/middleware"
	"nps-merchant-gateway/internal/core/domain"
	"nps-merchant-gateway/internal/core/ports"
	"nps-merchant-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// Plain-text callback acknowledgements.
const (
	callbackReceived        = "received"
	callbackAlreadyReceived = "already received"
)

// NPSHandler exposes the gateway proxy endpoints.
type NPSHandler struct {
	svc ports.PaymentService
}

// NewNPSHandler creates a new NPSHandler.
func NewNPSHandler(svc ports.PaymentService) *NPSHandler {
	return &NPSHandler{svc: svc}
}

// PaymentInstruments handles POST /payment-instruments/. The body is
// optional and its hints are not forwarded.
func (h *NPSHandler) PaymentInstruments(c *gin.Context) {
	var req dto.InstrumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, dto.BindError(err))
		return
	}

	res, err := h.svc.PaymentInstruments(c.Request.Context())
	writeResult(c, res, err)
}

// ServiceCharge handles POST /service-charge/.
func (h *NPSHandler) ServiceCharge(c *gin.Context) {
	var req dto.ServiceChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.TrimStrings(&req)

	res, err := h.svc.ServiceCharge(c.Request.Context(), ports.ServiceChargeRequest{
		Amount:         *req.Amount,
		InstrumentCode: req.PaymentInstrumentID.String(),
	})
	writeResult(c, res, err)
}

// ProcessID handles POST /process-id/.
func (h *NPSHandler) ProcessID(c *gin.Context) {
	var req dto.ProcessIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.TrimStrings(&req)
	c.Set(middleware.CtxAuditResource, req.MerchantTxnID)

	res, err := h.svc.ProcessID(c.Request.Context(), ports.ProcessIDRequest{
		Amount:        *req.Amount,
		MerchantTxnID: req.MerchantTxnID,
	})
	writeResult(c, res, err)
}

// Notification handles POST /notification/: a merchant-initiated status check.
func (h *NPSHandler) Notification(c *gin.Context) {
	var req dto.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.TrimStrings(&req)
	c.Set(middleware.CtxAuditResource, req.MerchantTxnID)

	res, err := h.svc.CheckStatus(c.Request.Context(), req.MerchantTxnID)
	writeResult(c, res, err)
}

// Callback handles GET /notification/, the gateway's server-to-server
// notification. It answers in plain text as the gateway expects.
func (h *NPSHandler) Callback(c *gin.Context) {
	var q dto.CallbackQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.TrimStrings(&q)
	c.Set(middleware.CtxAuditResource, q.MerchantTxnID)

	first, err := h.svc.HandleCallback(c.Request.Context(), q.MerchantTxnID, q.GatewayTxnID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if first {
		c.String(http.StatusOK, callbackReceived)
		return
	}
	c.String(http.StatusOK, callbackAlreadyReceived)
}

func writeResult(c *gin.Context, res *ports.GatewayResult, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if res.Code == domain.GatewayCodePending {
		response.Pending(c, res.Message, res.Data)
		return
	}
	response.OK(c, res.Message, res.Data)
}
