package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

const (
	tokenIssuer   = "heavymetal"
	tokenAudience = "heavymetal-client"

	// DefaultTokenTTL is the access token lifetime
	DefaultTokenTTL = 30 * time.Minute
)

// TokenService issues and verifies PASETO v4.local bearer tokens. Tokens are
// self-contained and signed, so no server-side session state exists.
type TokenService struct {
	key paseto.V4SymmetricKey
	ttl time.Duration
}

// NewTokenService creates a token service from a 32-byte symmetric key
func NewTokenService(key []byte, ttl time.Duration) (*TokenService, error) {
	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("invalid token key: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{key: symmetricKey, ttl: ttl}, nil
}

// Issue creates a signed token whose subject is the username
func (s *TokenService) Issue(username string) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(username)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.ttl))

	return token.V4Encrypt(s.key, nil), nil
}

// Verify validates a token and returns the username it was issued for.
// Expired, malformed or foreign tokens all fail with an error.
func (s *TokenService) Verify(tokenString string) (string, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	subject, err := token.GetSubject()
	if err != nil {
		return "", fmt.Errorf("token has no subject: %w", err)
	}

	return subject, nil
}
