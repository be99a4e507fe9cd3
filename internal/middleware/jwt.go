package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/gema-progress-api/internal/utils"
)

// AccessClaims are the claims the progression API reads from a bearer token.
// The subject holds the numeric user id; Roles may be used instead of Role by
// identity providers that issue role lists.
type AccessClaims struct {
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// PrimaryRole returns the normalised role, preferring Role over the first
// non-empty entry of Roles.
func (c AccessClaims) PrimaryRole() string {
	if role := strings.ToLower(strings.TrimSpace(c.Role)); role != "" {
		return role
	}
	for _, candidate := range c.Roles {
		if role := strings.ToLower(strings.TrimSpace(candidate)); role != "" {
			return role
		}
	}
	return ""
}

// UserID parses the subject as a positive integer.
func (c AccessClaims) UserID() (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Subject), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid subject")
	}
	return uint(parsed), nil
}

// JWTProtected validates HMAC bearer tokens with an expiry and stores the
// subject under "user_id" and the role under "user_role".
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}

	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		scheme, tokenString, found := strings.Cut(authorization, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		var claims AccessClaims
		if _, err := parser.ParseWithClaims(strings.TrimSpace(tokenString), &claims, keyFunc); err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := claims.UserID()
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "token subject missing")
		}

		c.Locals("user_id", userID)
		if role := claims.PrimaryRole(); role != "" {
			c.Locals("user_role", role)
		}

		return c.Next()
	}
}
