package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/auth-api/internal/logger"
	"github.com/sbilibin2017/auth-api/internal/services"
)

// RefreshTokener defines only the methods needed by this handler.
type RefreshTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
}

// Refresher defines the interface that the service must implement.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// RefreshResponse represents a successful token refresh
// swagger:model RefreshResponse
type RefreshResponse struct {
	// New short-lived access token
	// default: ACCESS_TOKEN
	AccessToken string `json:"access_token"`
}

// RefreshErrorResponse represents an error response for token refresh
// swagger:model RefreshErrorResponse
type RefreshErrorResponse struct {
	// Error message
	// default: Unauthorized
	Error string `json:"error"`
}

// NewRefreshHandler returns an HTTP handler minting a new access token
// from a valid refresh token.
// @Summary Refresh access token
// @Description Verifies the refresh token and returns a new access token for the same identity
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.RefreshResponse "New access token"
// @Failure 401 {object} handlers.RefreshErrorResponse "Token missing, invalid, revoked or not a refresh token"
// @Router /api/auth/refresh [get]
// @Security BearerAuth
func NewRefreshHandler(svc Refresher, tokener RefreshTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokener.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("unauthorized refresh request", "err", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(RefreshErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		accessToken, err := svc.Refresh(ctx, tokenStr)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnauthorized):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(RefreshErrorResponse{
					Error: "Unauthorized",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(RefreshErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(RefreshResponse{
			AccessToken: accessToken,
		})
	}
}
