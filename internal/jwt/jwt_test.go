package jwt

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJWT_GenerateAndGetClaims(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithAccessExpiration(time.Minute))
	ctx := context.Background()

	token, err := j.GenerateAccess(ctx, "alice")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := j.GetClaims(ctx, token, TokenTypeAccess)
	assert.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestJWT_JTIUniquePerToken(t *testing.T) {
	j := New(WithSecretKey("test-secret"))
	ctx := context.Background()

	first, err := j.GenerateAccess(ctx, "alice")
	assert.NoError(t, err)
	second, err := j.GenerateAccess(ctx, "alice")
	assert.NoError(t, err)

	firstClaims, err := j.GetClaims(ctx, first, TokenTypeAccess)
	assert.NoError(t, err)
	secondClaims, err := j.GetClaims(ctx, second, TokenTypeAccess)
	assert.NoError(t, err)

	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithAccessExpiration(-time.Minute)) // already expired
	ctx := context.Background()

	token, err := j.GenerateAccess(ctx, "alice")
	assert.NoError(t, err)

	claims, err := j.GetClaims(ctx, token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Nil(t, claims)

	err = j.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWT_WrongTokenType(t *testing.T) {
	j := New(WithSecretKey("test-secret"))
	ctx := context.Background()

	refresh, err := j.GenerateRefresh(ctx, "alice")
	assert.NoError(t, err)

	// Refresh token must not pass as access and vice versa
	claims, err := j.GetClaims(ctx, refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	assert.Nil(t, claims)

	access, err := j.GenerateAccess(ctx, "alice")
	assert.NoError(t, err)

	claims, err = j.GetClaims(ctx, access, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	assert.Nil(t, claims)
}

func TestJWT_InvalidToken(t *testing.T) {
	j := New(WithSecretKey("secret"))
	ctx := context.Background()

	claims, err := j.GetClaims(ctx, "invalid.token.string", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrTokenMalformed)
	assert.Nil(t, claims)
}

func TestJWT_WrongSecret(t *testing.T) {
	ctx := context.Background()

	issuer := New(WithSecretKey("secret-one"))
	verifier := New(WithSecretKey("secret-two"))

	token, err := issuer.GenerateAccess(ctx, "alice")
	assert.NoError(t, err)

	claims, err := verifier.GetClaims(ctx, token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrTokenMalformed)
	assert.Nil(t, claims)
}

func TestJWT_GetTokenFromRequest(t *testing.T) {
	j := New()
	ctx := context.Background()

	tests := []struct {
		name      string
		header    string
		wantToken string
		wantErr   bool
	}{
		{name: "valid bearer", header: "Bearer sometoken", wantToken: "sometoken"},
		{name: "lowercase bearer", header: "bearer sometoken", wantToken: "sometoken"},
		{name: "missing header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic sometoken", wantErr: true},
		{name: "no token", header: "Bearer", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			token, err := j.GetTokenFromRequest(ctx, req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}
