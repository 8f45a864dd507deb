package app

import (
	"realtime_chat_service/internal/chat/domain"
	errprocess "realtime_chat_service/pkg/err"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler 处理訊息相关的 HTTP 请求
type ChatHandler struct {
	messages      MessageUseCase
	notifications NotificationUseCase
}

// NewChatHandler 创建新的 ChatHandler
func NewChatHandler(messages MessageUseCase, notifications NotificationUseCase) *ChatHandler {
	return &ChatHandler{
		messages:      messages,
		notifications: notifications,
	}
}

// Contacts 聯絡人列表
// @Summary List contacts
// @Description Every user including the caller, sorted by the caller's unread count then name
// @Tags Messages
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Failure 401 {object} map[string]string "no session"
// @Router /api/messages/users [get]
func (h *ChatHandler) Contacts(c *fiber.Ctx) error {
	userID, _ := middlewares.UserID(c)

	users, err := h.messages.Contacts(c.UserContext(), userID)
	if err != nil {
		return errprocess.Respond(c, err)
	}
	return c.JSON(users)
}

// History 與對方的訊息紀錄
// @Summary Conversation history
// @Tags Messages
// @Produce json
// @Param id path string true "peer user id"
// @Success 200 {array} domain.Message
// @Failure 400 {object} map[string]string "invalid id"
// @Router /api/messages/{id} [get]
func (h *ChatHandler) History(c *fiber.Ctx) error {
	userID, _ := middlewares.UserID(c)

	messages, err := h.messages.History(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return errprocess.Respond(c, err)
	}
	return c.JSON(messages)
}

// Send 送出訊息
// @Summary Send a message
// @Description text and/or image (data URL), pushed to the receiver when online
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path string true "receiver user id"
// @Param request body domain.SendMessageReq true "message"
// @Success 201 {object} domain.Message
// @Failure 400 {object} map[string]string "empty message"
// @Failure 404 {object} map[string]string "unknown receiver"
// @Router /api/messages/send/{id} [post]
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	userID, _ := middlewares.UserID(c)

	var req domain.SendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return errprocess.Respond(c, errprocess.Validation("Invalid request body"))
	}

	msg, err := h.messages.Send(c.UserContext(), userID, c.Params("id"), req)
	if err != nil {
		return errprocess.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// ResetNotification 清除某個發送者的未讀數
// @Summary Reset unread counter
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path string true "recipient user id, must be the caller"
// @Param request body domain.ResetNotificationReq true "sender"
// @Success 200 {object} map[string]string "reset"
// @Failure 401 {object} map[string]string "not the caller"
// @Router /api/messages/reset-notification/{id} [patch]
func (h *ChatHandler) ResetNotification(c *fiber.Ctx) error {
	userID, _ := middlewares.UserID(c)

	var req domain.ResetNotificationReq
	if err := c.BodyParser(&req); err != nil {
		return errprocess.Respond(c, errprocess.Validation("Invalid request body"))
	}

	if err := h.notifications.Reset(c.UserContext(), userID, c.Params("id"), req.SenderID); err != nil {
		return errprocess.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification reset successfully"})
}
