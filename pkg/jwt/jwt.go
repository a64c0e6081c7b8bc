// Package jwt issues and checks the bearer tokens that guard POST /convert.
package jwt

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yourorg/pdf2json/pkg/logging"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMissingScope     = errors.New("token lacks required scope")
	ErrTokenTooLarge    = errors.New("token size exceeds maximum allowed")
	ErrWeakSecret       = errors.New("secret key is too short")
)

const (
	// MaxTokenSize bounds the Authorization header we are willing to parse.
	MaxTokenSize = 16 * 1024
	// MinSecretKeyLength is the minimum HMAC secret length.
	MinSecretKeyLength = 32

	// ScopeConvert allows uploading documents for conversion.
	ScopeConvert = "convert"
)

// Claims are the token claims. Scopes is space separated, as in OAuth2.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// HasScope reports whether the claims grant scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(strings.Fields(c.Scope), scope)
}

// Config holds token settings.
type Config struct {
	SecretKey string
	Issuer    string
	TTL       time.Duration
}

// TokenService signs and validates HS256 tokens.
type TokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	logger    logging.Logger
	now       func() time.Time
}

// NewTokenService validates cfg and returns a service.
func NewTokenService(cfg Config, logger logging.Logger) (*TokenService, error) {
	if len(cfg.SecretKey) < MinSecretKeyLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrWeakSecret, MinSecretKeyLength)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &TokenService{
		secretKey: []byte(cfg.SecretKey),
		issuer:    cfg.Issuer,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// GenerateToken issues a token for subject carrying scopes.
func (s *TokenService) GenerateToken(subject string, scopes ...string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("%w: subject is required", ErrInvalidClaims)
	}
	if len(scopes) == 0 {
		scopes = []string{ScopeConvert}
	}

	now := s.now()
	claims := &Claims{
		Scope: strings.Join(scopes, " "),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   subject,
			ID:        generateTokenID(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		s.logger.Error("Failed to sign token", logging.NewField("error", err))
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	if len(signed) > MaxTokenSize {
		return "", ErrTokenTooLarge
	}
	return signed, nil
}

// ValidateToken parses tokenString and checks signature, expiry and issuer.
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	if len(tokenString) > MaxTokenSize {
		return nil, ErrTokenTooLarge
	}
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidClaims)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidClaims)
	}
	return claims, nil
}

func generateTokenID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
