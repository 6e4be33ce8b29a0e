package identityprovider

import (
	"context"
	"fmt"

	"github.com/lepista-tech/mycelium/auth/token"
)

// ConnectionStringProvider is chain provider #3: an opaque Mycelium
// connection string looked up in the Token store (spec.md §4.4). A
// connection string identifies a pre-scoped grant rather than a principal,
// so the Result it yields carries Scope but an empty Email; callers that
// need an email (e.g. audit logging) fall back to the scope's bound
// Role/Account/Tenant instead.
type ConnectionStringProvider struct {
	strings *token.ConnectionStringService
}

// NewConnectionStringProvider wraps a ConnectionStringService as a Provider.
func NewConnectionStringProvider(strings *token.ConnectionStringService) *ConnectionStringProvider {
	return &ConnectionStringProvider{strings: strings}
}

func (p *ConnectionStringProvider) Name() string { return "connection-string" }

func (p *ConnectionStringProvider) Authenticate(ctx context.Context, bearer string) (*Result, error) {
	scope, err := p.strings.Validate(ctx, bearer)
	if err != nil {
		return nil, fmt.Errorf("connection string not accepted: %w", err)
	}
	return &Result{Scope: scope}, nil
}
