package identityprovider

import (
	"context"

	"github.com/lepista-tech/mycelium/auth/token"
)

// InternalJWTProvider is chain provider #1: Mycelium's own HS-family JWT
// (spec.md §4.4).
type InternalJWTProvider struct {
	tokens token.ServiceInterface
}

// NewInternalJWTProvider wraps an internal token Service as a Provider.
func NewInternalJWTProvider(tokens token.ServiceInterface) *InternalJWTProvider {
	return &InternalJWTProvider{tokens: tokens}
}

func (p *InternalJWTProvider) Name() string { return "internal-jwt" }

func (p *InternalJWTProvider) Authenticate(ctx context.Context, bearer string) (*Result, error) {
	claims, err := p.tokens.ValidateAccessToken(bearer)
	if err != nil {
		return nil, err
	}
	return &Result{Email: claims.Email}, nil
}
