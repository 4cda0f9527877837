package middleware

import (
	"encoding/json"
	"time"

	"dao-governance/internal/core/domain"
	"dao-governance/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditTrail creates an audit middleware that records successful write
// operations. It maps routes to audit actions after the handler ran.
func AuditTrail(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		// FullPath keeps route parameters symbolic, so /proposals/7/votes
		// maps through its route pattern.
		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var principal *domain.Principal
		if v, exists := c.Get(CtxPrincipal); exists {
			if p, ok := v.(domain.Principal); ok {
				principal = &p
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Record(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			Principal:    principal,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   c.Param("id"),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapRouteToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/api/v1/auth/login" && method == "POST":
		return domain.AuditActionLogin, "session"
	case route == "/api/v1/ledger/transfers" && method == "POST":
		return domain.AuditActionTransfer, "transfer"
	case route == "/api/v1/proposals" && method == "POST":
		return domain.AuditActionSubmitProposal, "proposal"
	case route == "/api/v1/proposals/:id/votes" && method == "POST":
		return domain.AuditActionVote, "proposal"
	case route == "/api/v1/admin/params" && method == "PATCH":
		return domain.AuditActionUpdateParams, "params"
	case route == "/api/v1/admin/proposals/:id/state" && method == "PUT":
		return domain.AuditActionOverrideState, "proposal"
	case route == "/api/v1/admin/members" && method == "POST":
		return domain.AuditActionRegisterMember, "member"
	case route == "/api/v1/admin/tick" && method == "POST":
		return domain.AuditActionExecuteTick, "executor"
	}
	return "", ""
}
