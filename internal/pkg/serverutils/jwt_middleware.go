package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	LocalTenantID = "tenant_id"
	LocalUserID   = "user_id"
	LocalRole     = "role"
)

// NewJwtMiddleware validates an HS256 bearer token and copies tenant_id,
// user_id and role into Locals. Tokens without a tenant are rejected.
func NewJwtMiddleware(secret string) fiber.Handler {
	key := []byte(secret)
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing token"))
		}

		token, err := jwt.Parse(authHeader[7:], func(t *jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid claims"))
		}

		tenantID, tErr := uuidClaim(claims, "tenant_id")
		userID, uErr := uuidClaim(claims, "user_id")
		if tErr != nil || uErr != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Token is missing tenant or user"))
		}

		role, _ := claims["role"].(string)
		ctx.Locals(LocalTenantID, tenantID)
		ctx.Locals(LocalUserID, userID)
		ctx.Locals(LocalRole, role)
		return ctx.Next()
	}
}

// AdminOnly must run after the JWT middleware.
func AdminOnly(ctx *fiber.Ctx) error {
	if role, _ := ctx.Locals(LocalRole).(string); role != "admin" {
		return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(403, "Access denied: Admins only"))
	}
	return ctx.Next()
}

func uuidClaim(claims jwt.MapClaims, name string) (uuid.UUID, error) {
	raw, _ := claims[name].(string)
	return uuid.Parse(raw)
}

// Identity returns the tenant and user the JWT middleware stored.
func Identity(ctx *fiber.Ctx) (tenantID, userID uuid.UUID, ok bool) {
	tenantID, tOk := ctx.Locals(LocalTenantID).(uuid.UUID)
	userID, uOk := ctx.Locals(LocalUserID).(uuid.UUID)
	return tenantID, userID, tOk && uOk
}
