package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	chatdomain "realtime_chat_service/internal/chat/domain"
	memberdomain "realtime_chat_service/internal/member/domain"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const defaultTimeout = 10 * time.Second

// APIError non-2xx answer from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// ErrNoChatSelected send without an open conversation
var ErrNoChatSelected = errors.New("no chat selected")

// StatusOf return the HTTP status of an APIError, 0 otherwise
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type authResponse struct {
	Message     string             `json:"message"`
	AuthUser    *memberdomain.User `json:"authUser"`
	UpdatedUser *memberdomain.User `json:"updatedUser"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// APIClient REST client, keeps the jwt cookie issued at login
type APIClient struct {
	baseURL string
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

// NewAPIClient baseURL like http://localhost:5001
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
	}
}

// Token current session token, empty when logged out
func (c *APIClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replace the session token
func (c *APIClient) SetToken(tk string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = tk
}

func (c *APIClient) agent(method, url string) *fiber.Agent {
	switch method {
	case fiber.MethodPost:
		return fiber.Post(url)
	case fiber.MethodPut:
		return fiber.Put(url)
	case fiber.MethodPatch:
		return fiber.Patch(url)
	default:
		return fiber.Get(url)
	}
}

func (c *APIClient) do(method, path string, in, out interface{}) error {
	a := c.agent(method, c.baseURL+path).Timeout(c.timeout)
	if tk := c.Token(); tk != "" {
		a.Cookie(middlewares.CookieToken, tk)
	}
	if in != nil {
		a.JSON(in)
	}

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	a.SetResponse(resp)

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}

	// 登入與註冊會發新的 cookie, 登出會清空
	var ck fasthttp.Cookie
	ck.SetKey(middlewares.CookieToken)
	if resp.Header.Cookie(&ck) {
		c.SetToken(string(ck.Value()))
	}

	if code < 200 || code >= 300 {
		var m messageResponse
		_ = json.Unmarshal(body, &m)
		return &APIError{Status: code, Message: m.Message}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Signup POST /api/auth/signup
func (c *APIClient) Signup(req memberdomain.SignupReq) (*memberdomain.User, error) {
	var out authResponse
	if err := c.do(fiber.MethodPost, "/api/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return out.AuthUser, nil
}

// Login POST /api/auth/login
func (c *APIClient) Login(req memberdomain.LoginReq) (*memberdomain.User, error) {
	var out authResponse
	if err := c.do(fiber.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	return out.AuthUser, nil
}

// Logout POST /api/auth/logout
func (c *APIClient) Logout() error {
	err := c.do(fiber.MethodPost, "/api/auth/logout", nil, nil)
	c.SetToken("")
	return err
}

// CheckAuth GET /api/auth/check
func (c *APIClient) CheckAuth() (*memberdomain.User, error) {
	var out authResponse
	if err := c.do(fiber.MethodGet, "/api/auth/check", nil, &out); err != nil {
		return nil, err
	}
	return out.AuthUser, nil
}

// UpdateProfile PUT /api/auth/update-profile
func (c *APIClient) UpdateProfile(profilePic string) (*memberdomain.User, error) {
	var out authResponse
	if err := c.do(fiber.MethodPut, "/api/auth/update-profile", memberdomain.UpdateProfileReq{ProfilePic: profilePic}, &out); err != nil {
		return nil, err
	}
	return out.UpdatedUser, nil
}

// Contacts GET /api/messages/users
func (c *APIClient) Contacts() ([]memberdomain.User, error) {
	var users []memberdomain.User
	if err := c.do(fiber.MethodGet, "/api/messages/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// History GET /api/messages/:id
func (c *APIClient) History(peerID string) ([]chatdomain.Message, error) {
	var messages []chatdomain.Message
	if err := c.do(fiber.MethodGet, "/api/messages/"+peerID, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage POST /api/messages/send/:id
func (c *APIClient) SendMessage(receiverID string, req chatdomain.SendMessageReq) (*chatdomain.Message, error) {
	var msg chatdomain.Message
	if err := c.do(fiber.MethodPost, "/api/messages/send/"+receiverID, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ResetNotification PATCH /api/messages/reset-notification/:id
func (c *APIClient) ResetNotification(recipientID, senderID string) error {
	return c.do(fiber.MethodPatch, "/api/messages/reset-notification/"+recipientID, chatdomain.ResetNotificationReq{SenderID: senderID}, nil)
}
