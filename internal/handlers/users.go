package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sbilibin2017/auth-api/internal/logger"
	"github.com/sbilibin2017/auth-api/internal/models"
)

// UserLister defines the interface that the service must implement.
type UserLister interface {
	List(ctx context.Context) ([]models.UserDB, error)
}

// UserSummary is a single user in the listing response
// swagger:model UserSummary
type UserSummary struct {
	// Username
	// default: john_doe
	Username string `json:"username"`

	// Creation timestamp
	CreatedAt time.Time `json:"created_at"`
}

// UsersErrorResponse represents an error response for the user listing
// swagger:model UsersErrorResponse
type UsersErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// NewListUsersHandler returns an HTTP handler listing all users.
// Authentication is enforced by the auth middleware on the route group.
// @Summary List users
// @Description Returns all registered users in creation order
// @Tags users
// @Produce json
// @Success 200 {array} handlers.UserSummary "All users"
// @Failure 401 "Token missing, invalid or revoked"
// @Failure 500 {object} handlers.UsersErrorResponse "Listing failed"
// @Router /api/users/all [get]
// @Security BearerAuth
func NewListUsersHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.List(r.Context())
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(UsersErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		summaries := make([]UserSummary, 0, len(users))
		for _, user := range users {
			summaries = append(summaries, UserSummary{
				Username:  user.Username,
				CreatedAt: user.CreatedAt,
			})
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(summaries)
	}
}
