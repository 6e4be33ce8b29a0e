// Package identityprovider implements the multi-provider inbound
// authentication chain of spec.md §4.4: internal JWT, then each configured
// external OIDC issuer, then a Mycelium connection string. The first
// provider to yield a valid Result short-circuits the chain.
package identityprovider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/internal/metrics"
	"go.uber.org/zap"
)

// Result is what a Provider resolves a bearer credential to.
type Result struct {
	Email string

	// Scope is populated only by the connection-string provider; internal
	// JWT and OIDC results leave it nil since those bearers identify a
	// principal, not a pre-scoped grant.
	Scope *models.ConnectionStringScope
}

// Provider resolves a presented bearer credential to a Result, or reports
// that it does not recognize the bearer so the chain can try the next one.
type Provider interface {
	Name() string
	Authenticate(ctx context.Context, bearer string) (*Result, error)
}

// NetworkError wraps a Provider error that stems from a transport failure
// (DNS, dial, timeout) rather than the bearer being malformed or unknown.
// The Chain retries a NetworkError once before skipping the provider.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("identity provider network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// classifyErr wraps err in a *NetworkError when it looks like a transport
// failure, so callers can distinguish "retry me" from "try the next
// provider instead".
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &NetworkError{Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &NetworkError{Err: err}
	}
	return err
}

// Chain tries each Provider in order and returns the first Result. A
// provider whose error classifies as a NetworkError is retried once before
// being skipped with a warning log (spec.md §4.4: "not a hard failure -
// the next provider may succeed").
type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

// NewChain builds a Chain that tries providers in the given order.
func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, logger: logger}
}

// Authenticate resolves bearer against every configured provider in order,
// returning the first success.
func (c *Chain) Authenticate(ctx context.Context, bearer string) (*Result, error) {
	var lastErr error
	for _, p := range c.providers {
		res, err := p.Authenticate(ctx, bearer)
		if err == nil {
			metrics.LoginAttemptsTotal.WithLabelValues("", "success").Inc()
			metrics.LoginSuccessTotal.Inc()
			return res, nil
		}

		var netErr *NetworkError
		if errors.As(err, &netErr) {
			res, retryErr := p.Authenticate(ctx, bearer)
			if retryErr == nil {
				metrics.LoginAttemptsTotal.WithLabelValues("", "success").Inc()
				metrics.LoginSuccessTotal.Inc()
				return res, nil
			}
			c.logger.Warn("identity provider network error, skipping",
				zap.String("provider", p.Name()), zap.Error(retryErr))
			lastErr = retryErr
			continue
		}

		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no identity providers configured")
	}
	metrics.LoginAttemptsTotal.WithLabelValues("", "failure").Inc()
	metrics.LoginFailureTotal.Inc()
	return nil, fmt.Errorf("no identity provider accepted the bearer: %w", lastErr)
}
