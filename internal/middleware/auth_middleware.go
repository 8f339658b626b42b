package middleware

import (
	"strings"

	"geo-attendance-backend/internal/apperror"
	"geo-attendance-backend/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const identityKey = "identity"

// Auth verifies an HS256 bearer token and stores the caller's Identity in
// Locals. Tokens are issued elsewhere; user_id, org_id and role are read
// from the claims and trusted as given.
func Auth(secret string) fiber.Handler {
	key := []byte(secret)
	return func(c *fiber.Ctx) error {
		// 1. Ambil token dari header Authorization
		authHeader := c.Get(fiber.HeaderAuthorization)
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			return apperror.Unauthorized("Missing bearer token")
		}

		// 2. Parse dan validasi token
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return apperror.Unauthorized("Invalid or expired token")
		}

		// 3. Simpan identity ke context
		id, err := identityFromClaims(claims)
		if err != nil {
			return apperror.Unauthorized("Token is missing user claims")
		}
		c.Locals(identityKey, id)

		return c.Next()
	}
}

func identityFromClaims(claims jwt.MapClaims) (model.Identity, error) {
	userID, err := uuidClaim(claims, "user_id")
	if err != nil {
		return model.Identity{}, err
	}
	orgID, err := uuidClaim(claims, "org_id")
	if err != nil {
		return model.Identity{}, err
	}
	role, _ := claims["role"].(string)
	return model.Identity{UserID: userID, OrgID: orgID, Role: role}, nil
}

func uuidClaim(claims jwt.MapClaims, name string) (uuid.UUID, error) {
	s, _ := claims[name].(string)
	return uuid.Parse(s)
}

// IdentityFrom returns the caller stored by Auth.
func IdentityFrom(c *fiber.Ctx) (model.Identity, bool) {
	id, ok := c.Locals(identityKey).(model.Identity)
	return id, ok
}

// SetIdentity is used by Auth and by handler tests.
func SetIdentity(c *fiber.Ctx, id model.Identity) {
	c.Locals(identityKey, id)
}
