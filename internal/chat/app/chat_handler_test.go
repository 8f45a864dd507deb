package app

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"realtime_chat_service/internal/chat/domain"
	memberdomain "realtime_chat_service/internal/member/domain"
	errprocess "realtime_chat_service/pkg/err"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newChatApp(messages MessageUseCase, notifications NotificationUseCase, userID string) *fiber.App {
	h := NewChatHandler(messages, notifications)

	app := fiber.New()
	api := app.Group("/api/messages", func(c *fiber.Ctx) error {
		c.Locals(middlewares.TokenUserID, userID)
		return c.Next()
	})
	api.Get("/users", h.Contacts)
	api.Get("/:id", h.History)
	api.Post("/send/:id", h.Send)
	api.Patch("/reset-notification/:id", h.ResetNotification)
	return app
}

func call(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw
}

func TestChatHandler_Send(t *testing.T) {
	logger.SetNewNop()

	t.Run("created", func(t *testing.T) {
		msgs := new(MockMessageUseCase)
		msgs.On("Send", mock.Anything, "u1", "u2", domain.SendMessageReq{Text: "hi"}).
			Return(&domain.Message{Text: "hi"}, nil).Once()

		code, body := call(t, newChatApp(msgs, nil, "u1"), "POST", "/api/messages/send/u2", `{"text":"hi"}`)
		assert.Equal(t, fiber.StatusCreated, code)

		var got domain.Message
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "hi", got.Text)
		msgs.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		msgs := new(MockMessageUseCase)
		msgs.On("Send", mock.Anything, "u1", "u2", domain.SendMessageReq{}).
			Return(nil, errprocess.Validation("Message text or image is required")).Once()

		code, body := call(t, newChatApp(msgs, nil, "u1"), "POST", "/api/messages/send/u2", `{}`)
		assert.Equal(t, fiber.StatusBadRequest, code)
		assert.JSONEq(t, `{"message":"Message text or image is required"}`, string(body))
	})
}

func TestChatHandler_ContactsAndHistory(t *testing.T) {
	logger.SetNewNop()

	msgs := new(MockMessageUseCase)
	msgs.On("Contacts", mock.Anything, "u1").Return([]memberdomain.User{{FullName: "Alice"}}, nil).Once()
	msgs.On("History", mock.Anything, "u1", "u2").Return([]domain.Message{{Text: "a"}, {Text: "b"}}, nil).Once()

	app := newChatApp(msgs, nil, "u1")

	code, body := call(t, app, "GET", "/api/messages/users", "")
	assert.Equal(t, fiber.StatusOK, code)
	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0]["fullName"])

	code, body = call(t, app, "GET", "/api/messages/u2", "")
	assert.Equal(t, fiber.StatusOK, code)
	var history []domain.Message
	require.NoError(t, json.Unmarshal(body, &history))
	assert.Len(t, history, 2)
	msgs.AssertExpectations(t)
}

func TestChatHandler_ResetNotification(t *testing.T) {
	logger.SetNewNop()

	t.Run("own counter", func(t *testing.T) {
		notes := new(MockNotificationUseCase)
		notes.On("Reset", mock.Anything, "u2", "u2", "u1").Return(nil).Once()

		code, body := call(t, newChatApp(nil, notes, "u2"), "PATCH", "/api/messages/reset-notification/u2", `{"senderId":"u1"}`)
		assert.Equal(t, fiber.StatusOK, code)
		assert.JSONEq(t, `{"message":"Notification reset successfully"}`, string(body))
		notes.AssertExpectations(t)
	})

	t.Run("someone else", func(t *testing.T) {
		notes := new(MockNotificationUseCase)
		notes.On("Reset", mock.Anything, "u1", "u2", "u1").
			Return(errprocess.Unauthorized("Un-Authorized - Cannot reset another user's notifications")).Once()

		code, _ := call(t, newChatApp(nil, notes, "u1"), "PATCH", "/api/messages/reset-notification/u2", `{"senderId":"u1"}`)
		assert.Equal(t, fiber.StatusUnauthorized, code)
	})
}
