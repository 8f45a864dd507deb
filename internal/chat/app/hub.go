package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrHubClosed hub 已停止, 不再接受連線
var ErrHubClosed = errors.New("hub closed")

// LastSeenStore persist the time a user went offline
type LastSeenStore interface {
	UpdateLastSeen(ctx context.Context, userID string, at time.Time) error
}

// Client 一條 websocket 連線在 hub 內的代表
type Client struct {
	ID     string
	UserID string
	send   chan domain.WSResponse
}

// Outbound events for this connection, closed by the hub when it is dropped
func (c *Client) Outbound() <-chan domain.WSResponse {
	return c.send
}

type inboundEvent struct {
	client *Client
	req    domain.WSRequest
}

// connID 優先, userID 與 connID 都為空代表廣播
type outboundEvent struct {
	connID string
	userID string
	resp   domain.WSResponse
}

// HubConfig hub setting
type HubConfig struct {
	ClientBuffer    int
	LastSeenTimeout time.Duration
}

// Hub 中央分派器, 只有 Run 的 goroutine 會改動 clients 以及寫入或關閉 send channel
type Hub struct {
	presence *PresenceRegistry
	tracker  *ActiveChatTracker
	lastSeen LastSeenStore
	events   repository.EventPublisher
	cfg      HubConfig
	now      func() time.Time

	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent
	outbound   chan outboundEvent
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewHub create a hub, call Run before Connect
func NewHub(presence *PresenceRegistry, tracker *ActiveChatTracker, lastSeen LastSeenStore, events repository.EventPublisher, cfg HubConfig) *Hub {
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = 64
	}
	if cfg.LastSeenTimeout <= 0 {
		cfg.LastSeenTimeout = 5 * time.Second
	}
	if events == nil {
		events = repository.NewNopEventPublisher()
	}
	return &Hub{
		presence:   presence,
		tracker:    tracker,
		lastSeen:   lastSeen,
		events:     events,
		cfg:        cfg,
		now:        time.Now,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundEvent, 256),
		outbound:   make(chan outboundEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run 處理所有 hub 事件直到 ctx 結束
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.onRegister(c)
		case c := <-h.unregister:
			h.onUnregister(c)
		case in := <-h.inbound:
			h.onInbound(in)
		case out := <-h.outbound:
			h.deliver(out)
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
	h.presence.Clear()
	h.tracker.Clear()

	// last-seen 寫入仍在進行中
	h.wg.Wait()
	logger.Log.Info("hub stopped")
}

// Connect register a new connection for userID
func (h *Hub) Connect(userID string) (*Client, error) {
	c := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		send:   make(chan domain.WSResponse, h.cfg.ClientBuffer),
	}
	select {
	case h.register <- c:
		return c, nil
	case <-h.done:
		return nil, ErrHubClosed
	}
}

// Disconnect drop the connection, safe to call after the hub stopped
func (h *Hub) Disconnect(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Dispatch hand a client frame to the hub
func (h *Hub) Dispatch(c *Client, req domain.WSRequest) {
	select {
	case h.inbound <- inboundEvent{client: c, req: req}:
	case <-h.done:
	}
}

// SendToUser push to the current connection of userID, no-op when offline
func (h *Hub) SendToUser(userID string, resp domain.WSResponse) {
	if userID == "" {
		return
	}
	select {
	case h.outbound <- outboundEvent{userID: userID, resp: resp}:
	case <-h.done:
	}
}

// SendToClient push to one specific connection
func (h *Hub) SendToClient(c *Client, resp domain.WSResponse) {
	select {
	case h.outbound <- outboundEvent{connID: c.ID, resp: resp}:
	case <-h.done:
	}
}

// Broadcast push to every connection
func (h *Hub) Broadcast(resp domain.WSResponse) {
	select {
	case h.outbound <- outboundEvent{resp: resp}:
	case <-h.done:
	}
}

func (h *Hub) onRegister(c *Client) {
	h.clients[c.ID] = c
	h.presence.Register(c.UserID, c.ID)
	logger.Log.Info("user connected", zap.String("userID", c.UserID), zap.String("connID", c.ID))

	h.broadcastOnline()
}

func (h *Hub) onUnregister(c *Client) {
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	close(c.send)

	// 被新連線取代的舊連線關閉時不影響上線狀態
	if !h.presence.Unregister(c.UserID, c.ID) {
		logger.Log.Debug("superseded connection closed", zap.String("userID", c.UserID), zap.String("connID", c.ID))
		return
	}
	logger.Log.Info("user disconnected", zap.String("userID", c.UserID), zap.String("connID", c.ID))

	h.tracker.Remove(c.UserID)
	h.broadcastOnline()

	h.wg.Add(1)
	go h.persistLastSeen(c.UserID)
}

func (h *Hub) persistLastSeen(userID string) {
	defer h.wg.Done()

	at := h.now().UTC()
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.LastSeenTimeout)
	defer cancel()

	if err := h.lastSeen.UpdateLastSeen(ctx, userID, at); err != nil {
		logger.Log.Error("update last seen failed", zap.String("userID", userID), zap.Error(err))
		return
	}

	h.Broadcast(domain.NewResponse(domain.EventUpdateLastSeen, domain.LastSeenPayload{UserID: userID, LastSeen: at}))

	if err := h.events.Publish(ctx, domain.ChatEvent{Type: domain.EventUserOffline, UserID: userID, OccurredAt: at}); err != nil {
		logger.Log.Warn("publish user.offline failed", zap.String("userID", userID), zap.Error(err))
	}
}

func (h *Hub) broadcastOnline() {
	h.deliver(outboundEvent{resp: domain.NewResponse(domain.EventGetOnlineUsers, h.presence.OnlineUsers())})
}

func (h *Hub) deliver(out outboundEvent) {
	if out.connID != "" {
		if c, ok := h.clients[out.connID]; ok {
			h.push(c, out.resp)
		}
		return
	}
	if out.userID == "" {
		for _, c := range h.clients {
			h.push(c, out.resp)
		}
		return
	}

	connID, ok := h.presence.Lookup(out.userID)
	if !ok {
		return
	}
	if c, ok := h.clients[connID]; ok {
		h.push(c, out.resp)
	}
}

// push 不阻塞, buffer 滿了就丟棄
func (h *Hub) push(c *Client, resp domain.WSResponse) {
	select {
	case c.send <- resp:
	default:
		logger.Log.Warn("outbound buffer full, event dropped",
			zap.String("userID", c.UserID), zap.String("connID", c.ID), zap.String("event", string(resp.Event)))
	}
}

func (h *Hub) onInbound(in inboundEvent) {
	c, req := in.client, in.req

	switch req.Event {
	case domain.EventTyping:
		var p domain.TypingPayload
		if !h.decode(c, req, &p) || !h.requireReceiver(c, p.ReceiverID) {
			return
		}
		h.deliver(outboundEvent{userID: p.ReceiverID, resp: domain.NewResponse(domain.EventUserTyping, domain.UserTypingPayload{SenderName: p.SenderName})})

	case domain.EventStopTyping:
		var p domain.TypingPayload
		if !h.decode(c, req, &p) || !h.requireReceiver(c, p.ReceiverID) {
			return
		}
		h.deliver(outboundEvent{userID: p.ReceiverID, resp: domain.NewResponse(domain.EventUserStoppedTyping, nil)})

	case domain.EventChatOpened, domain.EventChatClosed:
		var p domain.ChatViewPayload
		if !h.decode(c, req, &p) {
			return
		}
		if p.ChatWith == "" {
			h.push(c, domain.NewError("chatWith is required"))
			return
		}
		if p.UserID != "" && p.UserID != c.UserID {
			logger.Log.Warn("chat view for another user ignored, using connection user",
				zap.String("userID", c.UserID), zap.String("payloadUserID", p.UserID))
		}
		if req.Event == domain.EventChatOpened {
			h.tracker.Open(c.UserID, p.ChatWith)
		} else {
			h.tracker.Close(c.UserID, p.ChatWith)
		}
		logger.Log.Debug(string(req.Event), zap.String("userID", c.UserID), zap.String("chatWith", p.ChatWith))

	default:
		h.push(c, domain.NewError("unknown event: "+string(req.Event)))
	}
}

func (h *Hub) decode(c *Client, req domain.WSRequest, v interface{}) bool {
	if len(req.Data) == 0 {
		h.push(c, domain.NewError("missing data for "+string(req.Event)))
		return false
	}
	if err := json.Unmarshal(req.Data, v); err != nil {
		logger.Log.Debug("malformed event data", zap.String("event", string(req.Event)), zap.Error(err))
		h.push(c, domain.NewError("malformed data for "+string(req.Event)))
		return false
	}
	return true
}

func (h *Hub) requireReceiver(c *Client, receiverID string) bool {
	if receiverID == "" {
		h.push(c, domain.NewError("receiverId is required"))
		return false
	}
	return true
}
