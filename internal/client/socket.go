package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/middlewares"

	gws "github.com/gorilla/websocket"
)

// ErrNotConnected emit without an open socket
var ErrNotConnected = errors.New("socket not connected")

// Emitter send an event to the server
type Emitter interface {
	Emit(event domain.Event, data interface{}) error
}

// EventHandler receive a server event
type EventHandler func(event domain.Event, data json.RawMessage)

// Socket websocket connection to /ws
type Socket struct {
	conn *gws.Conn

	writeMu sync.Mutex
}

// Dial open the socket with the session cookie
func Dial(ctx context.Context, wsURL, token string) (*Socket, error) {
	header := http.Header{}
	header.Set("Cookie", (&http.Cookie{Name: middlewares.CookieToken, Value: token}).String())

	conn, _, err := gws.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, err
	}
	return &Socket{conn: conn}, nil
}

// Emit write one frame, safe for concurrent use
func (s *Socket) Emit(event domain.Event, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return s.conn.WriteJSON(domain.WSRequest{Event: event, Data: raw})
}

// Listen read frames until the socket closes
func (s *Socket) Listen(handler EventHandler) error {
	for {
		var f struct {
			Event domain.Event    `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := s.conn.ReadJSON(&f); err != nil {
			if gws.IsCloseError(err, gws.CloseNormalClosure, gws.CloseGoingAway) {
				return nil
			}
			return err
		}
		handler(f.Event, f.Data)
	}
}

// Close send a close frame then drop the connection
func (s *Socket) Close() error {
	s.writeMu.Lock()
	_ = s.conn.WriteControl(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, ""), time.Now().Add(time.Second))
	s.writeMu.Unlock()
	return s.conn.Close()
}
