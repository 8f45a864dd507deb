package app

import (
	"time"

	"realtime_chat_service/internal/member/domain"
	errprocess "realtime_chat_service/pkg/err"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MemberHandler 处理帳號相关的 HTTP 请求
type MemberHandler struct {
	Usecase      MemberUseCase
	SessionTTL   time.Duration
	CookieSecure bool
}

// NewMemberHandler 创建新的 MemberHandler
func NewMemberHandler(uc MemberUseCase, sessionTTL time.Duration, cookieSecure bool) *MemberHandler {
	return &MemberHandler{
		Usecase:      uc,
		SessionTTL:   sessionTTL,
		CookieSecure: cookieSecure,
	}
}

func (h *MemberHandler) setSessionCookie(c *fiber.Ctx, tk string) {
	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieToken,
		Value:    tk,
		MaxAge:   int(h.SessionTTL.Seconds()),
		Expires:  time.Now().Add(h.SessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   h.CookieSecure,
	})
}

func (h *MemberHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieToken,
		Value:    "",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   h.CookieSecure,
	})
}

// Signup 注册新用户
// @Summary Sign up
// @Description Create an account and start a session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.SignupReq true "signup"
// @Success 201 {object} map[string]interface{} "message + authUser"
// @Failure 400 {object} map[string]string "validation error"
// @Router /api/auth/signup [post]
func (h *MemberHandler) Signup(c *fiber.Ctx) error {
	var req domain.SignupReq
	if err := c.BodyParser(&req); err != nil {
		return errprocess.Respond(c, errprocess.Validation("Invalid request body"))
	}

	user, tk, err := h.Usecase.Signup(c.UserContext(), req)
	if err != nil {
		return errprocess.Respond(c, err)
	}

	h.setSessionCookie(c, tk)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Account created successfully",
		"authUser": user,
	})
}

// Login 用户登录
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginReq true "credentials"
// @Success 200 {object} map[string]interface{} "message + authUser"
// @Failure 400 {object} map[string]string "invalid credentials"
// @Failure 404 {object} map[string]string "unknown email"
// @Router /api/auth/login [post]
func (h *MemberHandler) Login(c *fiber.Ctx) error {
	var req domain.LoginReq
	if err := c.BodyParser(&req); err != nil {
		return errprocess.Respond(c, errprocess.Validation("Invalid request body"))
	}

	user, tk, err := h.Usecase.Login(c.UserContext(), req)
	if err != nil {
		logger.Log.Debug("login rejected", zap.String("email", req.Email), zap.Error(err))
		return errprocess.Respond(c, err)
	}

	h.setSessionCookie(c, tk)
	return c.JSON(fiber.Map{
		"message":  "Logged in successfully",
		"authUser": user,
	})
}

// Logout 用户登出
// @Summary Log out
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]string "logged out"
// @Failure 401 {object} map[string]string "no session"
// @Router /api/auth/logout [post]
func (h *MemberHandler) Logout(c *fiber.Ctx) error {
	userID, ok := middlewares.UserID(c)
	if !ok {
		return errprocess.Respond(c, errprocess.Unauthorized("Un-Authorized - No token found"))
	}

	if err := h.Usecase.Logout(c.UserContext(), userID); err != nil {
		return errprocess.Respond(c, err)
	}

	h.clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// CheckAuth 回傳目前 session 的使用者
// @Summary Check session
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{} "message + authUser"
// @Failure 401 {object} map[string]string "no session"
// @Router /api/auth/check [get]
func (h *MemberHandler) CheckAuth(c *fiber.Ctx) error {
	userID, _ := middlewares.UserID(c)

	user, err := h.Usecase.CheckAuth(c.UserContext(), userID)
	if err != nil {
		return errprocess.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Authenticated successfully",
		"authUser": user,
	})
}

// UpdateProfile 更新頭像
// @Summary Update profile picture
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.UpdateProfileReq true "profilePic data URL"
// @Success 200 {object} map[string]interface{} "message + updatedUser"
// @Failure 400 {object} map[string]string "missing picture"
// @Router /api/auth/update-profile [put]
func (h *MemberHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := middlewares.UserID(c)

	var req domain.UpdateProfileReq
	if err := c.BodyParser(&req); err != nil {
		return errprocess.Respond(c, errprocess.Validation("Invalid request body"))
	}

	user, err := h.Usecase.UpdateProfile(c.UserContext(), userID, req)
	if err != nil {
		return errprocess.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message":     "Profile updated successfully",
		"updatedUser": user,
	})
}
