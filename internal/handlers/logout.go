package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/auth-api/internal/logger"
	"github.com/sbilibin2017/auth-api/internal/services"
)

// LogoutTokener defines only the methods needed by this handler.
type LogoutTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
}

// Logouter defines the interface that the service must implement.
type Logouter interface {
	Logout(ctx context.Context, accessToken string) error
}

// LogoutResponse represents a successful logout
// swagger:model LogoutResponse
type LogoutResponse struct {
	// Success message
	// default: Successfully logged out
	Message string `json:"msg"`
}

// LogoutErrorResponse represents an error response for logout
// swagger:model LogoutErrorResponse
type LogoutErrorResponse struct {
	// Error message
	// default: Unauthorized
	Error string `json:"error"`
}

// NewLogoutHandler returns an HTTP handler revoking the presented
// access token. Only the presented token's jti is revoked; the refresh
// token issued alongside it stays valid.
// @Summary Logout
// @Description Revokes the presented access token's jti via the denylist
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.LogoutResponse "Token revoked"
// @Failure 401 {object} handlers.LogoutErrorResponse "Token missing or invalid"
// @Failure 500 {object} handlers.LogoutErrorResponse "Revocation failed"
// @Router /api/auth/logout [get]
// @Security BearerAuth
func NewLogoutHandler(svc Logouter, tokener LogoutTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokener.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("unauthorized logout request", "err", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(LogoutErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		if err := svc.Logout(ctx, tokenStr); err != nil {
			switch {
			case errors.Is(err, services.ErrUnauthorized):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(LogoutErrorResponse{
					Error: "Unauthorized",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(LogoutErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(LogoutResponse{
			Message: "Successfully logged out",
		})
	}
}
