// Package security provides token based authentication and authorization
package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zerowastechef/server/internal/infrastructure/config"
	apperrors "github.com/zerowastechef/server/pkg/errors"
)

// TokenType separates session tokens from password reset tokens
type TokenType string

const (
	AccessToken TokenType = "access"
	ResetToken  TokenType = "reset"
)

const bearerScheme = "Bearer"

var errWrongTokenType = errors.New("unexpected token type")

// Claims represents JWT claims structure
type Claims struct {
	UserID    int64     `json:"id"`
	Username  string    `json:"username,omitempty"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller attached to a request
type Identity struct {
	ID       int64
	Username string
}

// TokenService issues and verifies HS256 identity tokens
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	resetTTL time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service from the auth configuration
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.JWTSecret),
		ttl:      cfg.JWTExpiration,
		resetTTL: cfg.ResetExpiration,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue signs a session token with the configured lifetime
func (s *TokenService) Issue(userID int64, username string) (string, error) {
	return s.IssueWithTTL(userID, username, s.ttl)
}

// IssueWithTTL signs a session token that expires after ttl
func (s *TokenService) IssueWithTTL(userID int64, username string, ttl time.Duration) (string, error) {
	return s.sign(Claims{UserID: userID, Username: username, TokenType: AccessToken}, ttl)
}

// IssueReset signs a password reset token carrying only the user id
func (s *TokenService) IssueReset(userID int64) (string, error) {
	return s.sign(Claims{UserID: userID, TokenType: ResetToken}, s.resetTTL)
}

func (s *TokenService) sign(claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks a session token. Bad signatures, malformed input, expiry
// and reset tokens all fail with the same InvalidToken error.
func (s *TokenService) Verify(tokenString string) (*Identity, error) {
	claims, err := s.parse(tokenString, AccessToken)
	if err != nil {
		return nil, apperrors.NewInvalidTokenError(err)
	}
	return &Identity{ID: claims.UserID, Username: claims.Username}, nil
}

// VerifyReset checks a password reset token and returns its user id
func (s *TokenService) VerifyReset(tokenString string) (int64, error) {
	claims, err := s.parse(tokenString, ResetToken)
	if err != nil {
		return 0, apperrors.NewInvalidResetTokenError(err)
	}
	return claims.UserID, nil
}

func (s *TokenService) parse(tokenString string, expected TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != expected {
		return nil, errWrongTokenType
	}
	return claims, nil
}

// AuthenticateRequest extracts and verifies the bearer token of an
// Authorization header value
func (s *TokenService) AuthenticateRequest(header string) (*Identity, error) {
	scheme, token, _ := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if scheme == "" || token == "" {
		return nil, apperrors.NewMissingTokenError()
	}
	if !strings.EqualFold(scheme, bearerScheme) {
		return nil, apperrors.NewInvalidTokenError(fmt.Errorf("unsupported authorization scheme %q", scheme))
	}
	return s.Verify(token)
}
