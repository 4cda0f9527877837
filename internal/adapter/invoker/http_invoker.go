package invoker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"dao-governance/internal/core/domain"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// replyBodyLimit caps how much of a target's response is read back.
const replyBodyLimit = 1 << 20

// HTTPInvoker delivers accepted proposal payloads to their target services
// over HTTP. Each registered target exposes POST {base}/invoke/{method}.
// There are no retries here: a failed invocation is final and the failure
// is reported back to the caller.
type HTTPInvoker struct {
	targets map[string]string
	client  HTTPClient
	log     zerolog.Logger
}

// NewHTTPInvoker creates an invoker routing to the given target base URLs,
// keyed by target principal.
func NewHTTPInvoker(targets map[string]string, client HTTPClient, log zerolog.Logger) *HTTPInvoker {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPInvoker{
		targets: targets,
		client:  client,
		log:     log,
	}
}

// Invoke performs a single delivery attempt against the target's method
// endpoint. Invocation-level failures (unknown target, transport error,
// non-2xx response) come back as *domain.InvocationError.
func (i *HTTPInvoker) Invoke(ctx context.Context, target domain.Principal, method string, message []byte) ([]byte, error) {
	base, ok := i.targets[target.String()]
	if !ok {
		return nil, &domain.InvocationError{
			Code:    0,
			Message: fmt.Sprintf("no endpoint configured for target %q", target),
		}
	}

	endpoint := strings.TrimRight(base, "/") + "/invoke/" + url.PathEscape(method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(message))
	if err != nil {
		return nil, &domain.InvocationError{Code: 0, Message: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, &domain.InvocationError{Code: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, replyBodyLimit))
	if err != nil {
		return nil, &domain.InvocationError{Code: 0, Message: fmt.Sprintf("reading response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		i.log.Warn().
			Str("target", target.String()).
			Str("method", method).
			Int("status", resp.StatusCode).
			Msg("invocation rejected by target")
		return nil, &domain.InvocationError{
			Code:    resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}

	i.log.Debug().
		Str("target", target.String()).
		Str("method", method).
		Int("status", resp.StatusCode).
		Int("reply_bytes", len(body)).
		Msg("invocation delivered")

	return body, nil
}
