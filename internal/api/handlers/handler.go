package handlers

import (
	"fmt"
	"strconv"

	"realtime_chat_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ConnectCheck liveness probe
// @Summary Check chat service status
// @Description Returns a simple confirmation message
// @Tags Shared
// @Success 200 {object} map[string]string "status ok"
// @Router /api/health [get]
func ConnectCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// DebugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Description Enable or disable debug logging for the chat service
// @Tags Shared
// @Param status query bool true "Debug status"
// @Success 200 {string} string "Service debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func DebugLogFlag(c *fiber.Ctx) error {
	statusStr := c.Query("status")
	logger.Log.Info("debug", zap.String("status", statusStr))

	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	logger.Log.SetDebugMode(status)
	return c.SendString(fmt.Sprintf("chat service debug mode is : %t", status))
}

// NotFound unknown route
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Route not found"})
}

// ErrorHandler map fiber errors to {"message"} bodies
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		msg = e.Message
	}
	if code == fiber.StatusRequestEntityTooLarge {
		msg = "Payload too large"
	}
	if code >= fiber.StatusInternalServerError {
		logger.Log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		msg = "Internal Server Error"
	}

	return c.Status(code).JSON(fiber.Map{"message": msg})
}
