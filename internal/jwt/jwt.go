package jwt

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Error variables returned by token verification.
var (
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenMalformed = errors.New("token is malformed or has an invalid signature")
	ErrWrongTokenType = errors.New("unexpected token type")
)

// Claims is the payload embedded in every issued token.
// Subject carries the username, ID carries the jti.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// JWT issues and verifies signed access and refresh tokens
// with a single process-wide HMAC key.
type JWT struct {
	secretKey  string
	accessExp  time.Duration
	refreshExp time.Duration
}

// Opt configures a JWT instance.
type Opt func(*JWT)

// WithSecretKey sets the signing key.
func WithSecretKey(secretKey string) Opt {
	return func(j *JWT) { j.secretKey = secretKey }
}

// WithAccessExpiration sets the access token lifetime.
func WithAccessExpiration(exp time.Duration) Opt {
	return func(j *JWT) { j.accessExp = exp }
}

// WithRefreshExpiration sets the refresh token lifetime.
func WithRefreshExpiration(exp time.Duration) Opt {
	return func(j *JWT) { j.refreshExp = exp }
}

// New creates a new JWT instance. Defaults: 15m access, 720h refresh.
func New(opts ...Opt) *JWT {
	j := &JWT{
		accessExp:  15 * time.Minute,
		refreshExp: 720 * time.Hour,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// GenerateAccess creates a signed access token for the given username.
func (j *JWT) GenerateAccess(ctx context.Context, username string) (string, error) {
	return j.generate(username, TokenTypeAccess, j.accessExp)
}

// GenerateRefresh creates a signed refresh token for the given username.
func (j *JWT) GenerateRefresh(ctx context.Context, username string) (string, error) {
	return j.generate(username, TokenTypeRefresh, j.refreshExp)
}

func (j *JWT) generate(username, tokenType string, exp time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(exp)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// GetClaims parses the token string and returns its claims if the
// signature is valid, the token is not expired, and the token_type
// claim matches expectedType.
func (j *JWT) GetClaims(ctx context.Context, tokenString, expectedType string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.TokenType != expectedType {
		return nil, ErrWrongTokenType
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrTokenMalformed
	}

	return &claims, nil
}

// Validate checks that the token string is a valid, unexpired access token.
func (j *JWT) Validate(ctx context.Context, tokenString string) error {
	_, err := j.GetClaims(ctx, tokenString, TokenTypeAccess)
	return err
}

// GetTokenFromRequest extracts the token string from the Authorization header
func (j *JWT) GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}
