package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	chatdomain "realtime_chat_service/internal/chat/domain"
	memberdomain "realtime_chat_service/internal/member/domain"
	"realtime_chat_service/pkg"
	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// AuthAPI auth endpoints used by AuthStore
type AuthAPI interface {
	Signup(req memberdomain.SignupReq) (*memberdomain.User, error)
	Login(req memberdomain.LoginReq) (*memberdomain.User, error)
	Logout() error
	CheckAuth() (*memberdomain.User, error)
	UpdateProfile(profilePic string) (*memberdomain.User, error)
	Token() string
}

// RealtimeConn an open socket
type RealtimeConn interface {
	Emitter
	Listen(handler EventHandler) error
	Close() error
}

// Dialer open a RealtimeConn with the session token
type Dialer func(ctx context.Context, wsURL, token string) (RealtimeConn, error)

// DialSocket default Dialer
func DialSocket(ctx context.Context, wsURL, token string) (RealtimeConn, error) {
	s, err := Dial(ctx, wsURL, token)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// AuthStore 登入狀態, socket 與上線名單
type AuthStore struct {
	api   AuthAPI
	wsURL string
	dial  Dialer

	mu           sync.RWMutex
	authUser     *memberdomain.User
	message      string
	conn         RealtimeConn
	onlineUsers  []string
	typingSender string
	handler      EventHandler
}

// NewAuthStore dial nil uses DialSocket
func NewAuthStore(api AuthAPI, wsURL string, dial Dialer) *AuthStore {
	if dial == nil {
		dial = DialSocket
	}
	return &AuthStore{api: api, wsURL: wsURL, dial: dial}
}

// SetEventHandler handler for every server event, set before connecting
func (a *AuthStore) SetEventHandler(h EventHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler = h
}

// CheckAuth restore the session and connect the socket
func (a *AuthStore) CheckAuth(ctx context.Context) error {
	user, err := a.api.CheckAuth()
	return a.afterAuth(ctx, user, "Authenticated successfully", err)
}

// Signup create an account and connect the socket
func (a *AuthStore) Signup(ctx context.Context, req memberdomain.SignupReq) error {
	user, err := a.api.Signup(req)
	return a.afterAuth(ctx, user, "Account created successfully", err)
}

// Login and connect the socket
func (a *AuthStore) Login(ctx context.Context, req memberdomain.LoginReq) error {
	user, err := a.api.Login(req)
	return a.afterAuth(ctx, user, "Logged in successfully", err)
}

func (a *AuthStore) afterAuth(ctx context.Context, user *memberdomain.User, okMsg string, err error) error {
	a.mu.Lock()
	if err != nil {
		a.authUser = nil
		a.message = messageOf(err)
		a.mu.Unlock()
		return err
	}
	a.authUser = user
	a.message = okMsg
	a.mu.Unlock()

	return a.ConnectSocket(ctx)
}

// Logout drop the session and the socket
func (a *AuthStore) Logout() error {
	err := a.api.Logout()

	a.mu.Lock()
	a.authUser = nil
	a.onlineUsers = nil
	a.typingSender = ""
	if err != nil {
		a.message = messageOf(err)
	} else {
		a.message = "Logged out successfully"
	}
	a.mu.Unlock()

	a.DisconnectSocket()
	return err
}

// UpdateProfile replace the profile picture
func (a *AuthStore) UpdateProfile(profilePic string) error {
	user, err := a.api.UpdateProfile(profilePic)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.message = messageOf(err)
		return err
	}
	a.authUser = user
	a.message = "Profile updated successfully"
	return nil
}

// ConnectSocket no-op when logged out or already connected
func (a *AuthStore) ConnectSocket(ctx context.Context) error {
	a.mu.RLock()
	skip := a.authUser == nil || a.conn != nil
	a.mu.RUnlock()
	if skip {
		return nil
	}

	conn, err := a.dial(ctx, a.wsURL, a.api.Token())
	if err != nil {
		return err
	}

	a.mu.Lock()
	if a.conn != nil {
		a.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	a.conn = conn
	a.mu.Unlock()

	go func() {
		if err := conn.Listen(a.dispatch); err != nil {
			logger.Log.Warn("socket closed", zap.Error(err))
		}
		a.mu.Lock()
		if a.conn == conn {
			a.conn = nil
			a.onlineUsers = nil
		}
		a.mu.Unlock()
	}()
	return nil
}

// DisconnectSocket close the socket if open
func (a *AuthStore) DisconnectSocket() {
	a.mu.Lock()
	conn := a.conn
	a.conn = nil
	a.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (a *AuthStore) dispatch(event chatdomain.Event, data json.RawMessage) {
	a.mu.RLock()
	h := a.handler
	a.mu.RUnlock()

	if h != nil {
		h(event, data)
		return
	}
	a.HandleEvent(event, data)
}

// HandleEvent presence and typing events, reports whether it consumed the event
func (a *AuthStore) HandleEvent(event chatdomain.Event, data json.RawMessage) bool {
	switch event {
	case chatdomain.EventGetOnlineUsers:
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			logger.Log.Warn("bad getOnlineUsers payload", zap.Error(err))
			return true
		}
		a.mu.Lock()
		a.onlineUsers = ids
		a.mu.Unlock()
		return true

	case chatdomain.EventUserTyping:
		var p chatdomain.UserTypingPayload
		_ = json.Unmarshal(data, &p)
		a.mu.Lock()
		a.typingSender = p.SenderName
		a.mu.Unlock()
		return true

	case chatdomain.EventUserStoppedTyping:
		a.mu.Lock()
		a.typingSender = ""
		a.mu.Unlock()
		return true
	}
	return false
}

// Emit send through the open socket
func (a *AuthStore) Emit(event chatdomain.Event, data interface{}) error {
	a.mu.RLock()
	conn := a.conn
	a.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}
	return conn.Emit(event, data)
}

// AuthUser logged in user, nil when logged out
func (a *AuthStore) AuthUser() *memberdomain.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.authUser
}

// Message last server message
func (a *AuthStore) Message() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.message
}

// OnlineUsers last presence snapshot
func (a *AuthStore) OnlineUsers() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.onlineUsers...)
}

// IsOnline userID in the last snapshot
func (a *AuthStore) IsOnline(userID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return pkg.Contains(a.onlineUsers, userID)
}

// TypingSender name of the peer currently typing, empty when nobody
func (a *AuthStore) TypingSender() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.typingSender
}

// ChatAPI message endpoints used by ChatStore
type ChatAPI interface {
	Contacts() ([]memberdomain.User, error)
	History(peerID string) ([]chatdomain.Message, error)
	SendMessage(receiverID string, req chatdomain.SendMessageReq) (*chatdomain.Message, error)
	ResetNotification(recipientID, senderID string) error
}

// Session what ChatStore needs from AuthStore
type Session interface {
	Emitter
	AuthUser() *memberdomain.User
	HandleEvent(event chatdomain.Event, data json.RawMessage) bool
}

// ChatStore 聯絡人, 目前對話與未讀數
type ChatStore struct {
	api            ChatAPI
	session        Session
	typingInterval time.Duration

	mu            sync.RWMutex
	users         []memberdomain.User
	messages      []chatdomain.Message
	selected      string
	notifications memberdomain.Notifications
	typing        *TypingNotifier
}

// NewChatStore create ChatStore, typingInterval <= 0 uses DefaultTypingInterval
func NewChatStore(api ChatAPI, session Session, typingInterval time.Duration) *ChatStore {
	return &ChatStore{
		api:            api,
		session:        session,
		typingInterval: typingInterval,
		notifications:  memberdomain.Notifications{},
	}
}

func (c *ChatStore) me() string {
	if u := c.session.AuthUser(); u != nil {
		return u.ID.Hex()
	}
	return ""
}

// LoadUsers fetch contacts, the own record carries the unread map
func (c *ChatStore) LoadUsers() error {
	users, err := c.api.Contacts()
	if err != nil {
		return err
	}

	me := c.me()
	notifications := memberdomain.Notifications{}
	for _, u := range users {
		if u.ID.Hex() == me {
			for k, v := range u.Notifications {
				notifications[k] = v
			}
			break
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = users
	c.notifications = notifications
	// 正在看的對話不顯示未讀
	if c.selected != "" {
		c.notifications.Reset(c.selected)
	}
	return nil
}

// SelectUser switch the open conversation
func (c *ChatStore) SelectUser(peerID string) error {
	me := c.me()
	next := NewTypingNotifier(c.session, peerID, c.senderName(), c.typingInterval)

	c.mu.Lock()
	prev, old := c.selected, c.typing
	c.selected = peerID
	c.messages = nil
	c.typing = next
	unread := c.notifications.Count(peerID)
	c.mu.Unlock()

	// Stop 會寫 socket, 不可持有 c.mu
	if old != nil {
		old.Stop()
	}

	if prev != "" && prev != peerID {
		c.emit(chatdomain.EventChatClosed, chatdomain.ChatViewPayload{UserID: me, ChatWith: prev})
	}
	c.emit(chatdomain.EventChatOpened, chatdomain.ChatViewPayload{UserID: me, ChatWith: peerID})

	messages, err := c.api.History(peerID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	if c.selected == peerID {
		c.messages = messages
	}
	c.mu.Unlock()

	if unread > 0 {
		if err := c.api.ResetNotification(me, peerID); err != nil {
			return err
		}
		c.mu.Lock()
		c.notifications.Reset(peerID)
		c.mu.Unlock()
	}
	return nil
}

// CloseChat leave the open conversation
func (c *ChatStore) CloseChat() {
	c.mu.Lock()
	prev, old := c.selected, c.typing
	c.typing = nil
	c.selected = ""
	c.messages = nil
	c.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	if prev != "" {
		c.emit(chatdomain.EventChatClosed, chatdomain.ChatViewPayload{UserID: c.me(), ChatWith: prev})
	}
}

// Keystroke feed the typing notifier of the open conversation
func (c *ChatStore) Keystroke() {
	c.mu.RLock()
	t := c.typing
	c.mu.RUnlock()
	if t != nil {
		t.Keystroke()
	}
}

// Send message to the open conversation
func (c *ChatStore) Send(req chatdomain.SendMessageReq) (*chatdomain.Message, error) {
	c.mu.RLock()
	peer, t := c.selected, c.typing
	c.mu.RUnlock()
	if peer == "" {
		return nil, ErrNoChatSelected
	}

	if t != nil {
		t.MessageSent()
	}

	msg, err := c.api.SendMessage(peer, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.selected == peer {
		c.messages = append(c.messages, *msg)
	}
	c.mu.Unlock()
	return msg, nil
}

// HandleEvent server events, set as the AuthStore event handler
func (c *ChatStore) HandleEvent(event chatdomain.Event, data json.RawMessage) {
	if c.session.HandleEvent(event, data) {
		return
	}

	switch event {
	case chatdomain.EventNewMessage:
		var msg chatdomain.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Log.Warn("bad newMessage payload", zap.Error(err))
			return
		}
		sender := msg.SenderID.Hex()

		c.mu.Lock()
		if sender == c.selected {
			c.messages = append(c.messages, msg)
		} else {
			c.notifications.Increment(sender)
		}
		c.mu.Unlock()

	case chatdomain.EventUpdateLastSeen:
		var p chatdomain.LastSeenPayload
		if err := json.Unmarshal(data, &p); err != nil {
			logger.Log.Warn("bad update-last-seen payload", zap.Error(err))
			return
		}
		c.mu.Lock()
		for i := range c.users {
			if c.users[i].ID.Hex() == p.UserID {
				at := p.LastSeen
				c.users[i].LastSeen = &at
			}
		}
		c.mu.Unlock()

	case chatdomain.EventError:
		logger.Log.Warn("server event error", zap.ByteString("data", data))
	}
}

// Users contacts ordered by local unread count then name
func (c *ChatStore) Users() []memberdomain.User {
	c.mu.RLock()
	users := append([]memberdomain.User(nil), c.users...)
	unread := c.notificationsCopy()
	c.mu.RUnlock()

	memberdomain.SortContacts(users, unread)
	return users
}

// Messages of the open conversation
func (c *ChatStore) Messages() []chatdomain.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]chatdomain.Message(nil), c.messages...)
}

// Selected open conversation peer, empty when none
func (c *ChatStore) Selected() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// Notifications local unread map
func (c *ChatStore) Notifications() memberdomain.Notifications {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notificationsCopy()
}

func (c *ChatStore) notificationsCopy() memberdomain.Notifications {
	out := make(memberdomain.Notifications, len(c.notifications))
	for k, v := range c.notifications {
		out[k] = v
	}
	return out
}

// senderName first name of the signed-in user
func (c *ChatStore) senderName() string {
	if u := c.session.AuthUser(); u != nil {
		if f := strings.Fields(u.FullName); len(f) > 0 {
			return f[0]
		}
	}
	return ""
}

func (c *ChatStore) emit(event chatdomain.Event, data interface{}) {
	if err := c.session.Emit(event, data); err != nil {
		logger.Log.Debug("emit failed", zap.String("event", string(event)), zap.Error(err))
	}
}

func messageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
