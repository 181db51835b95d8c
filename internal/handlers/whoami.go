package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sbilibin2017/auth-api/internal/logger"
	"github.com/sbilibin2017/auth-api/internal/models"
	"github.com/sbilibin2017/auth-api/internal/services"
)

// WhoamiTokener defines only the methods needed by this handler.
type WhoamiTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
}

// Identifier defines the interface that the service must implement.
type Identifier interface {
	WhoAmI(ctx context.Context, accessToken string) (*models.UserDB, error)
}

// WhoamiResponse represents the current user's summary
// swagger:model WhoamiResponse
type WhoamiResponse struct {
	// Username
	// default: john_doe
	Username string `json:"username"`

	// Creation timestamp
	CreatedAt time.Time `json:"created_at"`
}

// WhoamiErrorResponse represents an error response for whoami
// swagger:model WhoamiErrorResponse
type WhoamiErrorResponse struct {
	// Error message
	// default: Unauthorized
	Error string `json:"error"`
}

// NewWhoamiHandler returns an HTTP handler resolving the access token
// to the current user.
// @Summary Current user
// @Description Returns the identity bound to the presented access token
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.WhoamiResponse "Current user summary"
// @Failure 401 {object} handlers.WhoamiErrorResponse "Token missing, invalid or revoked"
// @Router /api/auth/whoami [get]
// @Security BearerAuth
func NewWhoamiHandler(svc Identifier, tokener WhoamiTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokener.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("unauthorized whoami request", "err", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(WhoamiErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		user, err := svc.WhoAmI(ctx, tokenStr)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnauthorized):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(WhoamiErrorResponse{
					Error: "Unauthorized",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(WhoamiErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(WhoamiResponse{
			Username:  user.Username,
			CreatedAt: user.CreatedAt,
		})
	}
}
