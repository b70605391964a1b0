package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"far-compliance-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func decode(t *testing.T, body io.Reader) BaseResponse {
	t.Helper()
	var res BaseResponse
	require.NoError(t, json.NewDecoder(body).Decode(&res))
	return res
}

func TestErrorHandlerMapsTypedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"admission", &dto.AdmissionDeniedError{Dimension: "documents", Limit: 5, Used: 5, Reason: "limit reached"}, 429},
		{"wrapped admission", fmt.Errorf("upload: %w", &dto.AdmissionDeniedError{Dimension: "analyses"}), 429},
		{"validation", &dto.ValidationFailedError{Errors: []string{"bad"}}, 422},
		{"unsafe", &dto.ContentUnsafeError{Reason: "script"}, 422},
		{"not found", dto.ErrDocumentNotFound, 404},
		{"conflict", dto.ErrTeamMemberExists, 409},
		{"bad dimension", dto.ErrInvalidDimension, 400},
		{"fiber error", fiber.NewError(fiber.StatusBadRequest, "nope"), 400},
		{"unknown", errors.New("db down"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(ErrorHandlerMiddleware())
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)

			body := decode(t, resp.Body)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestAdmissionResponseShowsPricingModal(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return &dto.AdmissionDeniedError{Dimension: "documents", Limit: 5, Used: 5}
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	var body struct {
		Data dto.AdmissionDeniedData `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Data.ShowModalPricing)
	assert.Equal(t, "documents", body.Data.Dimension)
	assert.Equal(t, 5, body.Data.Used)
}

func TestJwtMiddleware(t *testing.T) {
	tenantID, userID := uuid.New(), uuid.New()

	app := fiber.New()
	app.Use(NewJwtMiddleware(testSecret))
	app.Get("/", func(c *fiber.Ctx) error {
		tid, uid, ok := Identity(c)
		assert.True(t, ok)
		assert.Equal(t, tenantID, tid)
		assert.Equal(t, userID, uid)
		return c.SendStatus(204)
	})
	app.Get("/admin", AdminOnly, func(c *fiber.Ctx) error { return c.SendStatus(204) })

	valid := signToken(t, jwt.MapClaims{
		"tenant_id": tenantID.String(),
		"user_id":   userID.String(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	noTenant := signToken(t, jwt.MapClaims{"user_id": userID.String()})
	expired := signToken(t, jwt.MapClaims{
		"tenant_id": tenantID.String(),
		"user_id":   userID.String(),
		"exp":       time.Now().Add(-time.Hour).Unix(),
	})
	admin := signToken(t, jwt.MapClaims{
		"tenant_id": tenantID.String(),
		"user_id":   userID.String(),
		"role":      "admin",
	})

	tests := []struct {
		name   string
		path   string
		header string
		code   int
	}{
		{"valid", "/", "Bearer " + valid, 204},
		{"missing header", "/", "", 401},
		{"not bearer", "/", "Basic abc", 401},
		{"missing tenant", "/", "Bearer " + noTenant, 401},
		{"expired", "/", "Bearer " + expired, 401},
		{"garbage", "/", "Bearer not.a.jwt", 401},
		{"non admin", "/admin", "Bearer " + valid, 403},
		{"admin", "/admin", "Bearer " + admin, 204},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	err := ValidateRequest(dto.AddTeamMemberRequest{Email: "not-an-email", Role: "owner"})
	var vErr *dto.ValidationFailedError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Errors, 2)

	assert.NoError(t, ValidateRequest(dto.AddTeamMemberRequest{Email: "a@b.co", Role: "analyst"}))
}
