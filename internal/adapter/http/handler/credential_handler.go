package handler

import (
	"strconv"

	"nps-merchant-gateway/internal/adapter/http/dto"
	"nps-merchant-gateway/internal/adapter/http/middleware"
	"nps-merchant-gateway/internal/core/ports"
	"nps-merchant-gateway/pkg/apperror"
	"nps-merchant-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

const credentialEntity = "NPS payment configuration"

// CredentialHandler serves the /npspayment/ credential resource.
type CredentialHandler struct {
	svc ports.CredentialService
}

// NewCredentialHandler creates a new CredentialHandler.
func NewCredentialHandler(svc ports.CredentialService) *CredentialHandler {
	return &CredentialHandler{svc: svc}
}

// Create handles POST /npspayment/.
func (h *CredentialHandler) Create(c *gin.Context) {
	var req dto.CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.TrimStrings(&req)

	cred, err := h.svc.Create(c.Request.Context(), ports.CredentialInput{
		MerchantID:   req.MerchantID,
		MerchantName: req.MerchantName,
		APIUsername:  req.APIUsername,
		APIPassword:  req.APIPassword,
		SharedSecret: req.SharedSecret,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxAuditResource, strconv.FormatInt(cred.ID, 10))
	response.Created(c, "NPS payment configuration created", dto.NewCredentialResponse(cred))
}

// List handles GET /npspayment/. The list holds at most one item.
func (h *CredentialHandler) List(c *gin.Context) {
	creds, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.CredentialResponse, 0, len(creds))
	for i := range creds {
		items = append(items, dto.NewCredentialResponse(&creds[i]))
	}
	response.OK(c, "Success", items)
}

// Get handles GET /npspayment/{id}/.
func (h *CredentialHandler) Get(c *gin.Context) {
	id, ok := credentialID(c)
	if !ok {
		return
	}

	cred, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Success", dto.NewCredentialResponse(cred))
}

// Replace handles PUT /npspayment/{id}/. Every field is required.
func (h *CredentialHandler) Replace(c *gin.Context) {
	id, ok := credentialID(c)
	if !ok {
		return
	}

	var req dto.CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.TrimStrings(&req)

	h.update(c, id, ports.CredentialPatch{
		MerchantID:   &req.MerchantID,
		MerchantName: &req.MerchantName,
		APIUsername:  &req.APIUsername,
		APIPassword:  &req.APIPassword,
		SharedSecret: &req.SharedSecret,
	})
}

// Patch handles PATCH /npspayment/{id}/. Omitted fields are kept.
func (h *CredentialHandler) Patch(c *gin.Context) {
	id, ok := credentialID(c)
	if !ok {
		return
	}

	var req dto.CredentialPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.TrimStrings(&req)

	h.update(c, id, ports.CredentialPatch{
		MerchantID:   req.MerchantID,
		MerchantName: req.MerchantName,
		APIUsername:  req.APIUsername,
		APIPassword:  req.APIPassword,
		SharedSecret: req.SharedSecret,
	})
}

func (h *CredentialHandler) update(c *gin.Context, id int64, patch ports.CredentialPatch) {
	cred, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "NPS payment configuration updated", dto.NewCredentialResponse(cred))
}

// credentialID parses the :id path segment. A non-numeric id cannot name a
// record, so it is reported as not found.
func credentialID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, apperror.ErrNotFound(credentialEntity))
		return 0, false
	}
	return id, true
}
