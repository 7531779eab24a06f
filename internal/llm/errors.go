package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/datasage-ai/datasage/internal/types"
)

// LLM error codes follow the shared coded-error pattern.
const (
	ErrProviderNotFound     types.ErrorCode = "LLM_PROVIDER_NOT_FOUND"
	ErrProviderInitFailed   types.ErrorCode = "LLM_PROVIDER_INIT_FAILED"
	ErrProviderUnauthorized types.ErrorCode = "LLM_PROVIDER_UNAUTHORIZED"
	ErrProviderRateLimited  types.ErrorCode = "LLM_PROVIDER_RATE_LIMITED"
	ErrCompletionFailed     types.ErrorCode = "LLM_COMPLETION_FAILED"
	ErrResponseParseFailed  types.ErrorCode = "LLM_RESPONSE_PARSE_FAILED"
	ErrInvalidRequest       types.ErrorCode = "LLM_INVALID_REQUEST"
	ErrNetworkFailed        types.ErrorCode = "LLM_NETWORK_FAILED"
	ErrContextCanceled      types.ErrorCode = "LLM_CONTEXT_CANCELED"
)

// NewAuthError reports a missing or rejected credential for a provider.
func NewAuthError(provider string, cause error) *types.Error {
	return types.WrapError(ErrProviderUnauthorized,
		fmt.Sprintf("provider %s is not authorized (set the API key)", provider), cause)
}

// NewParseError reports model output that could not be parsed as expected.
func NewParseError(provider, response string, cause error) *types.Error {
	preview := response
	if len(preview) > 120 {
		preview = preview[:120] + "..."
	}
	return types.WrapError(ErrResponseParseFailed,
		fmt.Sprintf("provider %s returned unparsable output: %q", provider, preview), cause)
}

// TranslateError maps a raw backend error into a coded error so callers can
// branch on the category instead of string-matching provider messages.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}

	var coded *types.Error
	if errors.As(err, &coded) {
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return types.WrapError(ErrContextCanceled,
			fmt.Sprintf("provider %s call canceled", provider), err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &types.Error{
			Code:      ErrNetworkFailed,
			Message:   fmt.Sprintf("provider %s network failure", provider),
			Retryable: true,
			Cause:     err,
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "api key"),
		strings.Contains(msg, "401"), strings.Contains(msg, "403"):
		return NewAuthError(provider, err)
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "429"):
		return &types.Error{
			Code:      ErrProviderRateLimited,
			Message:   fmt.Sprintf("provider %s rate limited", provider),
			Retryable: true,
			Cause:     err,
		}
	default:
		return types.WrapError(ErrCompletionFailed,
			fmt.Sprintf("provider %s completion failed", provider), err)
	}
}

// IsRetryable determines if an error is transient and may succeed on retry.
func IsRetryable(err error) bool {
	var coded *types.Error
	if !errors.As(err, &coded) {
		return false
	}
	if coded.Retryable {
		return true
	}
	switch coded.Code {
	case ErrNetworkFailed, ErrProviderRateLimited:
		return true
	default:
		return false
	}
}
