package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/auth-api/internal/services"
)

func TestRefreshHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockRefresher(ctrl)
	mockTokener := NewMockRefreshTokener(ctrl)

	tests := []struct {
		name         string
		mockSetup    func()
		expectedCode int
	}{
		{
			name: "success",
			mockSetup: func() {
				mockTokener.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("REFRESH_TOKEN", nil)
				mockSvc.EXPECT().Refresh(gomock.Any(), "REFRESH_TOKEN").
					Return("NEW_ACCESS_TOKEN", nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "missing token",
			mockSetup: func() {
				mockTokener.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("", errors.New("authorization header missing"))
			},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name: "invalid, revoked or wrong-type token",
			mockSetup: func() {
				mockTokener.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("ACCESS_TOKEN", nil)
				mockSvc.EXPECT().Refresh(gomock.Any(), "ACCESS_TOKEN").
					Return("", services.ErrUnauthorized)
			},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name: "internal error",
			mockSetup: func() {
				mockTokener.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("REFRESH_TOKEN", nil)
				mockSvc.EXPECT().Refresh(gomock.Any(), "REFRESH_TOKEN").
					Return("", errors.New("db error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
			rr := httptest.NewRecorder()

			NewRefreshHandler(mockSvc, mockTokener)(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedCode == http.StatusOK {
				var resp RefreshResponse
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, "NEW_ACCESS_TOKEN", resp.AccessToken)
			}
		})
	}
}
