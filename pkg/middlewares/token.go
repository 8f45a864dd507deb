package middlewares

import (
	"context"

	"realtime_chat_service/pkg/logger"
	t_token "realtime_chat_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "jwt"

	//TokenUserID get user form token, set c.locals name
	TokenUserID = "UserID"
	//TokenRaw raw token string, set c.locals name
	TokenRaw = "token"
)

const (
	msgNoToken      = "Un-Authorized - No token found"
	msgInvalidToken = "Un-Authorized - Invalid Token"
)

// SessionValidator check the token is still the live session of the user
type SessionValidator interface {
	ValidateSession(ctx context.Context, userID, token string) error
}

// JWTMiddleware validates the session JWT from query or cookie.
// sessions may be nil, then only the signature and expiry are checked.
func JWTMiddleware(sessions SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Query(QueryToken)

		// 如果查詢參數中沒有 token，則嘗試從 Cookie 中獲取
		if tokenStr == "" {
			tokenStr = c.Cookies(CookieToken)
		}

		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": msgNoToken})
		}

		claims, err := t_token.ParseJWTWrapper(tokenStr)
		if err != nil {
			logger.Log.Debug("jwt parse failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": msgInvalidToken})
		}

		if sessions != nil {
			if err := sessions.ValidateSession(c.UserContext(), claims.UserID, tokenStr); err != nil {
				logger.Log.Debug("session rejected", zap.String("userID", claims.UserID), zap.Error(err))
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": msgInvalidToken})
			}
		}

		c.Locals(TokenUserID, claims.UserID)
		c.Locals(TokenRaw, tokenStr)

		return c.Next()
	}
}

// UserID read the authenticated user id set by JWTMiddleware
func UserID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(TokenUserID).(string)
	return id, ok && id != ""
}
