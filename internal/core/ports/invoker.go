package ports

import (
	"context"

	"dao-governance/internal/core/domain"
)

// ProposalInvoker is the external-invocation collaborator. It delivers a
// proposal's payload to the target principal's host and returns the target's
// response payload. Failures come back as a *domain.InvocationError carrying
// a numeric code and message. Invocations are strictly one-shot: callers
// never retry a failure.
type ProposalInvoker interface {
	Invoke(ctx context.Context, target domain.Principal, method string, message []byte) ([]byte, error)
}
