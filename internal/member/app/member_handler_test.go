package app

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"realtime_chat_service/internal/member/domain"
	errprocess "realtime_chat_service/pkg/err"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newMemberApp(uc MemberUseCase, userID string) *fiber.App {
	h := NewMemberHandler(uc, time.Hour, true)

	app := fiber.New()
	app.Post("/signup", h.Signup)
	app.Post("/login", h.Login)

	authed := app.Group("/", func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals(middlewares.TokenUserID, userID)
		}
		return c.Next()
	})
	authed.Post("logout", h.Logout)
	authed.Get("check", h.CheckAuth)
	authed.Put("update-profile", h.UpdateProfile)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]interface{}, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out, resp.Header.Get("Set-Cookie")
}

func TestMemberHandler_Signup(t *testing.T) {
	logger.SetNewNop()

	t.Run("sets session cookie", func(t *testing.T) {
		uc := new(MockMemberUseCase)
		user := &domain.User{ID: primitive.NewObjectID(), FullName: "Alice", Email: "alice@example.com", Password: "hashed"}
		uc.On("Signup", mock.Anything, domain.SignupReq{FullName: "Alice", Email: "alice@example.com", Password: "secret1"}).
			Return(user, "signed.jwt.token", nil).Once()

		code, body, cookie := doJSON(t, newMemberApp(uc, ""), "POST", "/signup",
			`{"fullName":"Alice","email":"alice@example.com","password":"secret1"}`)

		assert.Equal(t, fiber.StatusCreated, code)
		assert.Equal(t, "Account created successfully", body["message"])
		authUser := body["authUser"].(map[string]interface{})
		assert.Equal(t, "Alice", authUser["fullName"])
		assert.NotContains(t, authUser, "password")
		assert.NotContains(t, body, "token")

		assert.Contains(t, cookie, "jwt=signed.jwt.token")
		assert.Contains(t, strings.ToLower(cookie), "httponly")
		assert.Contains(t, strings.ToLower(cookie), "samesite=strict")
		assert.Contains(t, strings.ToLower(cookie), "secure")
		uc.AssertExpectations(t)
	})

	t.Run("usecase error mapped", func(t *testing.T) {
		uc := new(MockMemberUseCase)
		uc.On("Signup", mock.Anything, mock.Anything).Return(nil, "", errprocess.Conflict("User already exists with this email")).Once()

		code, body, cookie := doJSON(t, newMemberApp(uc, ""), "POST", "/signup", `{"fullName":"A","email":"a@b.co","password":"secret1"}`)

		assert.Equal(t, fiber.StatusBadRequest, code)
		assert.Equal(t, "User already exists with this email", body["message"])
		assert.Empty(t, cookie)
	})

	t.Run("bad body", func(t *testing.T) {
		code, body, _ := doJSON(t, newMemberApp(new(MockMemberUseCase), ""), "POST", "/signup", `{`)
		assert.Equal(t, fiber.StatusBadRequest, code)
		assert.Equal(t, "Invalid request body", body["message"])
	})
}

func TestMemberHandler_Login(t *testing.T) {
	logger.SetNewNop()

	uc := new(MockMemberUseCase)
	uc.On("Login", mock.Anything, domain.LoginReq{Email: "bob@example.com", Password: "secret1"}).
		Return(nil, "", errprocess.NotFound("User not found with this email")).Once()

	code, body, _ := doJSON(t, newMemberApp(uc, ""), "POST", "/login", `{"email":"bob@example.com","password":"secret1"}`)

	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "User not found with this email", body["message"])
	uc.AssertExpectations(t)
}

func TestMemberHandler_Logout(t *testing.T) {
	logger.SetNewNop()

	t.Run("clears cookie", func(t *testing.T) {
		uc := new(MockMemberUseCase)
		uc.On("Logout", mock.Anything, "u1").Return(nil).Once()

		code, body, cookie := doJSON(t, newMemberApp(uc, "u1"), "POST", "/logout", "")

		assert.Equal(t, fiber.StatusOK, code)
		assert.Equal(t, "Logged out successfully", body["message"])
		assert.Contains(t, cookie, "jwt=;")
		uc.AssertExpectations(t)
	})

	t.Run("no user", func(t *testing.T) {
		code, _, _ := doJSON(t, newMemberApp(new(MockMemberUseCase), ""), "POST", "/logout", "")
		assert.Equal(t, fiber.StatusUnauthorized, code)
	})
}

func TestMemberHandler_CheckAndUpdate(t *testing.T) {
	logger.SetNewNop()

	uc := new(MockMemberUseCase)
	uc.On("CheckAuth", mock.Anything, "u1").Return(&domain.User{FullName: "Alice"}, nil).Once()
	uc.On("UpdateProfile", mock.Anything, "u1", domain.UpdateProfileReq{ProfilePic: "data:image/png;base64,AA=="}).
		Return(&domain.User{FullName: "Alice", ProfilePic: "http://minio/p.png"}, nil).Once()

	app := newMemberApp(uc, "u1")

	code, body, _ := doJSON(t, app, "GET", "/check", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Alice", body["authUser"].(map[string]interface{})["fullName"])

	code, body, _ = doJSON(t, app, "PUT", "/update-profile", `{"profilePic":"data:image/png;base64,AA=="}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "http://minio/p.png", body["updatedUser"].(map[string]interface{})["profilePic"])
	uc.AssertExpectations(t)
}
