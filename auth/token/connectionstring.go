package token

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
	"golang.org/x/crypto/bcrypt"
)

// ConnectionStringService implements the register/validate/invalidate
// lifecycle for connection strings and short numeric codes (spec.md
// §4.4). Presented connection strings are opaque strings of the form
// "<token id>.<secret>"; the secret is never stored in cleartext, only as
// a bcrypt hash on the owning Token row, following the same
// HashRefreshToken/VerifyRefreshToken bcrypt-compare pattern as
// auth/token/service.go.
type ConnectionStringService struct {
	tokens interfaces.TokenRepository
}

// NewConnectionStringService builds a ConnectionStringService.
func NewConnectionStringService(tokens interfaces.TokenRepository) *ConnectionStringService {
	return &ConnectionStringService{tokens: tokens}
}

// Register issues a new connection string bound to scope, valid for ttl.
// kind selects which ConnectionStringScope field is meaningful.
func (s *ConnectionStringService) Register(ctx context.Context, kind models.TokenMetaKind, scope models.ConnectionStringScope, ttl time.Duration) (string, error) {
	secret, err := randomSecret(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate connection string secret: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash connection string secret: %w", err)
	}

	t := &models.Token{
		ExpiresAt: time.Now().Add(ttl),
		Meta: models.MultiTypeMeta{
			Kind:     kind,
			CodeHash: string(hash),
			Scope:    &scope,
		},
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return "", fmt.Errorf("failed to persist connection string: %w", err)
	}

	return fmt.Sprintf("%d.%s", t.ID, secret), nil
}

// Validate looks up presented, verifies it is unexpired, unrevoked, and
// matches the stored secret hash, and returns its embedded scope.
func (s *ConnectionStringService) Validate(ctx context.Context, presented string) (*models.ConnectionStringScope, error) {
	id, secret, err := splitPresented(presented)
	if err != nil {
		return nil, err
	}

	t, err := s.tokens.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up connection string: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("connection string not found")
	}
	if !t.Valid(time.Now()) {
		return nil, fmt.Errorf("connection string is expired or revoked")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(t.Meta.CodeHash), []byte(secret)); err != nil {
		return nil, fmt.Errorf("connection string does not match")
	}
	if t.Meta.Scope == nil {
		return nil, fmt.Errorf("connection string has no embedded scope")
	}
	return t.Meta.Scope, nil
}

// Invalidate soft-deletes the token backing id: Validate rejects it
// afterwards, but it remains queryable (GetByID) for audit.
func (s *ConnectionStringService) Invalidate(ctx context.Context, id int64) error {
	return s.tokens.Revoke(ctx, id)
}

// RegisterCode issues a short numeric confirmation code (email
// confirmation / password change). Only its bcrypt hash is persisted; the
// cleartext code is returned exactly once to the issuing flow.
func (s *ConnectionStringService) RegisterCode(ctx context.Context, kind models.TokenMetaKind, ttl time.Duration) (id int64, code string, err error) {
	code, err = randomNumericCode(6)
	if err != nil {
		return 0, "", fmt.Errorf("failed to generate confirmation code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", fmt.Errorf("failed to hash confirmation code: %w", err)
	}

	t := &models.Token{
		ExpiresAt: time.Now().Add(ttl),
		Meta:      models.MultiTypeMeta{Kind: kind, CodeHash: string(hash)},
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return 0, "", fmt.Errorf("failed to persist confirmation code: %w", err)
	}
	return t.ID, code, nil
}

// ValidateCode verifies code against the hash stored for id.
func (s *ConnectionStringService) ValidateCode(ctx context.Context, id int64, code string) error {
	t, err := s.tokens.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up confirmation code: %w", err)
	}
	if t == nil {
		return fmt.Errorf("confirmation code not found")
	}
	if !t.Valid(time.Now()) {
		return fmt.Errorf("confirmation code is expired or revoked")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(t.Meta.CodeHash), []byte(code)); err != nil {
		return fmt.Errorf("confirmation code does not match")
	}
	return nil
}

func splitPresented(presented string) (int64, string, error) {
	dot := strings.IndexByte(presented, '.')
	if dot <= 0 || dot == len(presented)-1 {
		return 0, "", fmt.Errorf("malformed connection string")
	}
	id, err := strconv.ParseInt(presented[:dot], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed connection string id")
	}
	return id, presented[dot+1:], nil
}

const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func randomSecret(length int) (string, error) {
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(secretAlphabet))))
		if err != nil {
			return "", err
		}
		out[i] = secretAlphabet[n.Int64()]
	}
	return string(out), nil
}

func randomNumericCode(digits int) (string, error) {
	max := big.NewInt(1)
	ten := big.NewInt(10)
	for i := 0; i < digits; i++ {
		max.Mul(max, ten)
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}
