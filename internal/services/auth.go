package services

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/sbilibin2017/auth-api/internal/jwt"
	"github.com/sbilibin2017/auth-api/internal/logger"
	"github.com/sbilibin2017/auth-api/internal/models"
	"github.com/sbilibin2017/auth-api/internal/password"
	"github.com/sbilibin2017/auth-api/internal/repositories"
)

// Error variables
var (
	ErrValidation         = errors.New("invalid username or password format")
	ErrUserAlreadyExists  = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("token is missing, invalid or revoked")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username, passwordHash string) (*models.UserDB, error)
}

// TokenIssuer defines an interface for issuing and verifying tokens.
type TokenIssuer interface {
	GenerateAccess(ctx context.Context, username string) (string, error)
	GenerateRefresh(ctx context.Context, username string) (string, error)
	GetClaims(ctx context.Context, tokenString, expectedType string) (*jwt.Claims, error)
}

// RevokedTokenWriter records revoked token identifiers.
type RevokedTokenWriter interface {
	Save(ctx context.Context, jti string) error
}

// RevokedTokenReader answers revocation-check queries.
type RevokedTokenReader interface {
	Exists(ctx context.Context, jti string) (bool, error)
}

// RevokedTokenCache caches known-revoked token identifiers.
type RevokedTokenCache interface {
	Exists(ctx context.Context, jti string) (bool, error)
	Add(ctx context.Context, jti string) error
}

// LoginResult bundles the token pair and user returned by Login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.UserDB
}

// AuthService orchestrates registration, login, logout, token refresh
// and identity lookup.
type AuthService struct {
	reader  UserReader
	writer  UserWriter
	tokens  TokenIssuer
	revoker RevokedTokenWriter
	revoked RevokedTokenReader
	cache   RevokedTokenCache
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(
	reader UserReader,
	writer UserWriter,
	tokens TokenIssuer,
	revoker RevokedTokenWriter,
	revoked RevokedTokenReader,
	cache RevokedTokenCache,
) *AuthService {
	return &AuthService{
		reader:  reader,
		writer:  writer,
		tokens:  tokens,
		revoker: revoker,
		revoked: revoked,
		cache:   cache,
	}
}

// validateCredentials checks the shape of a username/password pair.
func validateCredentials(username, pass string) error {
	if err := validation.Validate(username, validation.Required, validation.Length(3, 36)); err != nil {
		return fmt.Errorf("%w: username: %v", ErrValidation, err)
	}
	if err := validation.Validate(pass, validation.Required, validation.Length(8, 0)); err != nil {
		return fmt.Errorf("%w: password: %v", ErrValidation, err)
	}
	return nil
}

// Register validates credentials, hashes the password and creates the user.
func (svc *AuthService) Register(ctx context.Context, username, pass string) (*models.UserDB, error) {
	if err := validateCredentials(username, pass); err != nil {
		logger.Log.Errorw("registration validation failed", "username", username, "err", err)
		return nil, err
	}

	hashed, err := password.Hash(pass)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user, err := svc.writer.Save(ctx, username, hashed)
	if err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			logger.Log.Errorw("user already exists", "username", username)
			return nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and issues an access/refresh token pair.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (svc *AuthService) Login(ctx context.Context, username, pass string) (*LoginResult, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			logger.Log.Errorw("login failed: user does not exist", "username", username)
			return nil, ErrInvalidCredentials
		}
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}

	if err := password.Compare(user.PasswordHash, pass); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			logger.Log.Errorw("login failed: invalid credentials", "username", username)
			return nil, ErrInvalidCredentials
		}
		logger.Log.Errorw("failed to compare password", "err", err)
		return nil, err
	}

	accessToken, err := svc.tokens.GenerateAccess(ctx, user.Username)
	if err != nil {
		logger.Log.Errorw("failed to generate access token", "err", err)
		return nil, err
	}

	refreshToken, err := svc.tokens.GenerateRefresh(ctx, user.Username)
	if err != nil {
		logger.Log.Errorw("failed to generate refresh token", "err", err)
		return nil, err
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// isRevoked consults the cache first and falls back to the database.
// Cache failures degrade to the database path.
func (svc *AuthService) isRevoked(ctx context.Context, jti string) (bool, error) {
	if svc.cache != nil {
		revoked, err := svc.cache.Exists(ctx, jti)
		if err != nil {
			logger.Log.Errorw("revocation cache unavailable", "err", err)
		} else if revoked {
			return true, nil
		}
	}

	revoked, err := svc.revoked.Exists(ctx, jti)
	if err != nil {
		return false, err
	}
	if revoked && svc.cache != nil {
		if err := svc.cache.Add(ctx, jti); err != nil {
			logger.Log.Errorw("failed to cache revoked token", "err", err)
		}
	}

	return revoked, nil
}

// authenticate verifies the token as the expected type and checks it
// against the revocation ledger.
func (svc *AuthService) authenticate(ctx context.Context, tokenString, expectedType string) (*jwt.Claims, error) {
	claims, err := svc.tokens.GetClaims(ctx, tokenString, expectedType)
	if err != nil {
		logger.Log.Errorw("token verification failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	revoked, err := svc.isRevoked(ctx, claims.ID)
	if err != nil {
		logger.Log.Errorw("failed to check token revocation", "err", err)
		return nil, err
	}
	if revoked {
		logger.Log.Errorw("token is revoked", "jti", claims.ID)
		return nil, fmt.Errorf("%w: token is revoked", ErrUnauthorized)
	}

	return claims, nil
}

// WhoAmI resolves a valid, unrevoked access token to its user.
func (svc *AuthService) WhoAmI(ctx context.Context, accessToken string) (*models.UserDB, error) {
	claims, err := svc.authenticate(ctx, accessToken, jwt.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	user, err := svc.reader.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			logger.Log.Errorw("token subject no longer exists", "username", claims.Subject)
			return nil, fmt.Errorf("%w: unknown subject", ErrUnauthorized)
		}
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}

	return user, nil
}

// Refresh verifies a refresh token and issues a new access token bound
// to the same identity.
func (svc *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := svc.authenticate(ctx, refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	accessToken, err := svc.tokens.GenerateAccess(ctx, claims.Subject)
	if err != nil {
		logger.Log.Errorw("failed to generate access token", "err", err)
		return "", err
	}

	return accessToken, nil
}

// Logout revokes the presented access token's jti. Only the presented
// token is revoked; the refresh token paired with it at login stays
// valid until it is revoked or expires.
func (svc *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := svc.tokens.GetClaims(ctx, accessToken, jwt.TokenTypeAccess)
	if err != nil {
		logger.Log.Errorw("token verification failed", "err", err)
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if err := svc.revoker.Save(ctx, claims.ID); err != nil {
		logger.Log.Errorw("failed to revoke token", "jti", claims.ID, "err", err)
		return err
	}

	if svc.cache != nil {
		if err := svc.cache.Add(ctx, claims.ID); err != nil {
			logger.Log.Errorw("failed to cache revoked token", "err", err)
		}
	}

	return nil
}
