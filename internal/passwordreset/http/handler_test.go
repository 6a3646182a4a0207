package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carrent/rental-backend/internal/passwordreset"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) IssueCode(ctx context.Context, identifier, method string) (passwordreset.IssueResult, error) {
	args := m.Called(ctx, identifier, method)
	return args.Get(0).(passwordreset.IssueResult), args.Error(1)
}

func (m *mockService) VerifyCode(ctx context.Context, identifier, code string) (passwordreset.VerifyResult, error) {
	args := m.Called(ctx, identifier, code)
	return args.Get(0).(passwordreset.VerifyResult), args.Error(1)
}

func (m *mockService) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	return m.Called(ctx, token, newPassword, confirmPassword).Error(0)
}

func setupRouter(svc passwordreset.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc))
	return r
}

func post(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestForgotPasswordRateLimited(t *testing.T) {
	svc := &mockService{}
	svc.On("IssueCode", mock.Anything, "user@example.com", "email").
		Return(passwordreset.IssueResult{}, passwordreset.ErrRateLimited)

	w := post(setupRouter(svc), "/v1/auth/forgot-password", map[string]string{"identifier": "user@example.com", "method": "email"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	svc.AssertExpectations(t)
}

func TestForgotPasswordEchoesCodeWhenGiven(t *testing.T) {
	svc := &mockService{}
	svc.On("IssueCode", mock.Anything, "user@example.com", "").
		Return(passwordreset.IssueResult{Code: "123456"}, nil)

	w := post(setupRouter(svc), "/v1/auth/forgot-password", map[string]string{"identifier": "user@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ForgotPasswordResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "123456", resp.Code)
}

func TestVerifyResetCodeRejectsMalformedCode(t *testing.T) {
	svc := &mockService{}
	w := post(setupRouter(svc), "/v1/auth/verify-reset-code", map[string]string{"identifier": "user@example.com", "code": "12ab"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "VerifyCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword(t *testing.T) {
	svc := &mockService{}
	svc.On("ResetPassword", mock.Anything, "tok", "new-password", "new-password").Return(nil)
	svc.On("ResetPassword", mock.Anything, "used", "new-password", "new-password").Return(passwordreset.ErrInvalidToken)
	r := setupRouter(svc)

	w := post(r, "/v1/auth/reset-password", map[string]string{"resetToken": "tok", "newPassword": "new-password", "confirmPassword": "new-password"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = post(r, "/v1/auth/reset-password", map[string]string{"resetToken": "used", "newPassword": "new-password", "confirmPassword": "new-password"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
