package router

import (
	"realtime_chat_service/internal/api/handlers"
	chatapp "realtime_chat_service/internal/chat/app"
	memberapp "realtime_chat_service/internal/member/app"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

const msgUserMismatch = "Un-Authorized - userId does not match token"

// Handlers 所有路由需要的 handler
type Handlers struct {
	Member    *memberapp.MemberHandler
	Chat      *chatapp.ChatHandler
	Websocket *chatapp.ChatWebsocketHandler
	Sessions  middlewares.SessionValidator
	Limiter   *middlewares.LimiterStore
	// StaticDir 非空時提供前端靜態檔
	StaticDir string
}

// RegisterRoutes 注册聊天服務的路由
// @title Realtime Chat Service API
// @version 1.0
// @description API documentation for the Realtime Chat Service
// @host localhost:5001
// @BasePath /
func RegisterRoutes(app *fiber.App, h Handlers) {
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/api/health", handlers.ConnectCheck)
	app.Post("/debug", handlers.DebugLogFlag)

	jwt := middlewares.JWTMiddleware(h.Sessions)

	authRoutes := app.Group("/api/auth")
	if h.Limiter != nil {
		authRoutes.Post("/signup", middlewares.RateLimit(h.Limiter), h.Member.Signup)
		authRoutes.Post("/login", middlewares.RateLimit(h.Limiter), h.Member.Login)
	} else {
		authRoutes.Post("/signup", h.Member.Signup)
		authRoutes.Post("/login", h.Member.Login)
	}
	authRoutes.Post("/logout", jwt, h.Member.Logout)
	authRoutes.Get("/check", jwt, h.Member.CheckAuth)
	authRoutes.Put("/update-profile", jwt, h.Member.UpdateProfile)

	messageRoutes := app.Group("/api/messages", jwt)
	messageRoutes.Get("/users", h.Chat.Contacts)
	messageRoutes.Post("/send/:id", h.Chat.Send)
	messageRoutes.Patch("/reset-notification/:id", h.Chat.ResetNotification)
	messageRoutes.Get("/:id", h.Chat.History)

	app.Get("/ws", jwt, RequireUpgrade, websocket.New(h.Websocket.HandleConnection))

	if h.StaticDir != "" {
		app.Static("/", h.StaticDir)
		// SPA fallback
		app.Get("/*", func(c *fiber.Ctx) error {
			return c.SendFile(h.StaticDir + "/index.html")
		})
	}

	app.Use(handlers.NotFound)
}

// RequireUpgrade only websocket upgrades reach /ws, a userId query must match the token
func RequireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userID, ok := middlewares.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Un-Authorized - No token found"})
	}
	if q := c.Query("userId"); q != "" && q != userID {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": msgUserMismatch})
	}
	return c.Next()
}
