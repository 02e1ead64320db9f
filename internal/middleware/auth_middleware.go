package middleware

import (
	"strings"

	"finlearn/internal/dto"
	"finlearn/internal/logger"
	"finlearn/internal/service"
	"finlearn/internal/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID"
	ClaimsKey           = "authClaims"
	TokenKey            = "authToken"
)

func unauthorized(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Error: message,
		Code:  code,
	})
}

// Protected requires a valid bearer token. It stores the user id, claims and
// raw token in locals, and announces the first request of a user since
// process start on the session hub.
func Protected(authService service.AuthService, hub *session.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return unauthorized(c, "MISSING_AUTH_HEADER", "Authorization header is missing")
		}
		scheme, tokenString, _ := strings.Cut(strings.TrimSpace(authHeader), " ")
		if !strings.EqualFold(scheme, strings.TrimSpace(BearerSchema)) {
			return unauthorized(c, "INVALID_AUTH_SCHEME", "Authorization scheme is not Bearer")
		}
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			return unauthorized(c, "EMPTY_TOKEN", "Token is empty")
		}

		claims, err := authService.ValidateJWT(c.UserContext(), tokenString)
		if err != nil {
			return unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
		}

		userID := claims.UserID()
		c.Locals(UserIDKey, userID)
		c.Locals(ClaimsKey, claims)
		c.Locals(TokenKey, tokenString)

		if hub != nil && !hub.Seen(userID) {
			if err := hub.Publish(c.UserContext(), session.Event{Type: session.SignedIn, UserID: userID}); err != nil {
				logger.Get().Warn("Failed to publish sign-in", zap.String("userID", userID), zap.Error(err))
			}
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id set by Protected.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

// Claims returns the validated token claims set by Protected.
func Claims(c *fiber.Ctx) *dto.AuthClaims {
	claims, _ := c.Locals(ClaimsKey).(*dto.AuthClaims)
	return claims
}

func Token(c *fiber.Ctx) string {
	tok, _ := c.Locals(TokenKey).(string)
	return tok
}
