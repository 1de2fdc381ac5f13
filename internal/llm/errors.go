package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("llm: api key not configured")
	// ErrAuthentication is returned when the provider rejects the credentials.
	ErrAuthentication = errors.New("llm: authentication failed")
	// ErrTimeout is returned when the provider does not answer in time.
	ErrTimeout = errors.New("llm: request timed out")
	// ErrProvider covers any other provider failure.
	ErrProvider = errors.New("llm: provider error")
)

// classifyError wraps a raw client error in one of the package sentinels, keeping the
// provider's message.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s", sentinelForStatus(apiErr.HTTPStatusCode), apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: %v", sentinelForStatus(reqErr.HTTPStatusCode), err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrProvider, err)
}

func sentinelForStatus(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthentication
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrTimeout
	default:
		return ErrProvider
	}
}
