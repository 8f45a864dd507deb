package app

import (
	"encoding/json"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
	maxFrameSize        = 64 * 1024
)

// ChatWebsocketHandler 將 websocket 連線接到 hub
type ChatWebsocketHandler struct {
	hub          *Hub
	pingInterval time.Duration
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(hub *Hub, pingInterval time.Duration) *ChatWebsocketHandler {
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	return &ChatWebsocketHandler{
		hub:          hub,
		pingInterval: pingInterval,
	}
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *ChatWebsocketHandler) HandleConnection(conn *websocket.Conn) {
	userID, _ := conn.Locals(middlewares.TokenUserID).(string)
	if userID == "" {
		closeWebSocketConnection(conn, websocket.ClosePolicyViolation, "missing user")
		return
	}

	client, err := h.hub.Connect(userID)
	if err != nil {
		closeWebSocketConnection(conn, websocket.CloseGoingAway, "server shutting down")
		return
	}

	writerDone := make(chan struct{})
	go h.writeLoop(conn, client, writerDone)

	defer func() {
		h.hub.Disconnect(client)
		<-writerDone
		logger.Log.Info("websocket close", zap.String("userID", userID), zap.String("connID", client.ID))
	}()

	conn.SetReadLimit(maxFrameSize)

	//server發出ping之後client連線正常會回pong
	conn.SetPongHandler(func(string) error {
		logger.Log.Debug("Received PONG", zap.String("userID", userID))
		return nil
	})

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			// 檢查是否為 Close 正常結束
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Debug("Connection closed", zap.String("userID", userID), zap.Error(err))
			} else {
				//直接斷線 1006
				logger.Log.Warn("websocket read error", zap.String("userID", userID), zap.Error(err))
			}
			return
		}

		if mt != websocket.TextMessage {
			h.hub.SendToClient(client, domain.NewError("unsupported message type"))
			continue
		}

		var req domain.WSRequest
		if err := json.Unmarshal(message, &req); err != nil || req.Event == "" {
			h.hub.SendToClient(client, domain.NewError("malformed frame"))
			continue
		}
		h.hub.Dispatch(client, req)
	}
}

// writeLoop 唯一寫入 conn 的 goroutine, hub 關閉 channel 後結束
func (h *ChatWebsocketHandler) writeLoop(conn *websocket.Conn, client *Client, done chan<- struct{}) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		// 讓 read loop 結束
		_ = conn.Close()
		close(done)
	}()

	for {
		select {
		case resp, ok := <-client.Outbound():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
				return
			}
			if err := h.sendResponse(conn, resp); err != nil {
				logger.Log.Warn("write message error", zap.String("userID", client.UserID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				logger.Log.Debug("Ping error", zap.String("userID", client.UserID), zap.Error(err))
				return
			}
		}
	}
}

// sendResponse - 發送 JSON 給前端
func (h *ChatWebsocketHandler) sendResponse(conn *websocket.Conn, resp domain.WSResponse) error {
	b, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Error("marshal ws response", zap.String("event", string(resp.Event)), zap.Error(err))
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func closeWebSocketConnection(conn *websocket.Conn, code int, reason string) {
	if err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason)); err != nil {
		logger.Log.Debug("Failed to send CloseMessage", zap.Error(err))
	}
	_ = conn.Close()
}
