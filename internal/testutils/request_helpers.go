package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/google/uuid"
)

const TestEmail = "shopper@example.com"

// NewAuthenticatedRequest builds a request as it looks after the logging and
// auth middleware have run.
func NewAuthenticatedRequest(method, target string, body io.Reader, userID uuid.UUID, pathParams map[string]string) *http.Request {
	req := NewAnonymousRequest(method, target, body, pathParams)

	claims := &models.Claims{UserID: userID, Email: TestEmail}

	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

// NewRoleRequest is NewAuthenticatedRequest for a token carrying role.
func NewRoleRequest(method, target string, body io.Reader, userID uuid.UUID, role string, pathParams map[string]string) *http.Request {
	req := NewAnonymousRequest(method, target, body, pathParams)

	claims := &models.Claims{UserID: userID, Email: TestEmail, Role: role}

	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

func NewAnonymousRequest(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	return req.WithContext(middleware.WithLogger(req.Context(), DiscardLogger()))
}

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
