package middleware

import (
	"encoding/json"
	"net/http"

	"nps-merchant-gateway/internal/core/domain"
	"nps-merchant-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// AuditLog records every call to a credential or gateway route once the
// handler has written its response, failures included.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		resourceID := c.GetString(CtxAuditResource)
		if resourceID == "" {
			resourceID = c.Param("id")
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(CtxRequestID),
			"admin":      c.GetString(CtxAdmin),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Status:       c.Writer.Status(),
			Details:      string(details),
			IPAddress:    c.ClientIP(),
		})
	}
}

func mapRouteToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/npspayment/" && method == http.MethodPost:
		return domain.AuditActionCredentialCreate, "credential"
	case route == "/npspayment/:id/" && (method == http.MethodPut || method == http.MethodPatch):
		return domain.AuditActionCredentialUpdate, "credential"
	case route == "/admin/login" && method == http.MethodPost:
		return domain.AuditActionAdminLogin, "session"
	case route == "/payment-instruments/":
		return domain.AuditActionInstruments, "nps_payment"
	case route == "/service-charge/":
		return domain.AuditActionServiceCharge, "nps_payment"
	case route == "/process-id/":
		return domain.AuditActionProcessID, "nps_payment"
	case route == "/notification/" && method == http.MethodPost:
		return domain.AuditActionStatusCheck, "nps_payment"
	case route == "/notification/" && method == http.MethodGet:
		return domain.AuditActionCallback, "nps_payment"
	}
	return "", ""
}
