package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionTransfer       AuditAction = "TRANSFER"
	AuditActionSubmitProposal AuditAction = "SUBMIT_PROPOSAL"
	AuditActionVote           AuditAction = "VOTE"
	AuditActionUpdateParams   AuditAction = "UPDATE_PARAMS"
	AuditActionOverrideState  AuditAction = "OVERRIDE_STATE"
	AuditActionRegisterMember AuditAction = "REGISTER_MEMBER"
	AuditActionLogin          AuditAction = "LOGIN"
	AuditActionExecuteTick    AuditAction = "EXECUTE_TICK"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	Principal    *Principal  `json:"principal,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
