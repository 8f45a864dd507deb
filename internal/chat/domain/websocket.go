package domain

import (
	"encoding/json"
	"time"
)

// Event websocket event name
type Event string

const (
	// EventGetOnlineUsers server -> all, online user ids
	EventGetOnlineUsers Event = "getOnlineUsers"
	// EventTyping client, {receiverId, senderName}
	EventTyping Event = "typing"
	// EventStopTyping client, {receiverId}
	EventStopTyping Event = "stopTyping"
	// EventUserTyping server -> receiver, {senderName}
	EventUserTyping Event = "userTyping"
	// EventUserStoppedTyping server -> receiver, {}
	EventUserStoppedTyping Event = "userStoppedTyping"
	// EventChatOpened client, {userId, chatWith}
	EventChatOpened Event = "chat-opened"
	// EventChatClosed client, {userId, chatWith}
	EventChatClosed Event = "chat-closed"
	// EventNewMessage server -> receiver, full message
	EventNewMessage Event = "newMessage"
	// EventUpdateLastSeen server -> all, {userId, lastSeen}
	EventUpdateLastSeen Event = "update-last-seen"
	// EventError server -> sender
	EventError Event = "error"
)

// WSRequest websocket Request
type WSRequest struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// WSResponse websocket Response
type WSResponse struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data"`
}

// TypingPayload typing data
type TypingPayload struct {
	ReceiverID string `json:"receiverId"`
	SenderName string `json:"senderName,omitempty"`
}

// UserTypingPayload userTyping data
type UserTypingPayload struct {
	SenderName string `json:"senderName"`
}

// ChatViewPayload chat-opened / chat-closed data
type ChatViewPayload struct {
	UserID   string `json:"userId"`
	ChatWith string `json:"chatWith"`
}

// LastSeenPayload update-last-seen data
type LastSeenPayload struct {
	UserID   string    `json:"userId"`
	LastSeen time.Time `json:"lastSeen"`
}

// ErrorPayload error data
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewResponse build a server frame
func NewResponse(event Event, data interface{}) WSResponse {
	if data == nil {
		data = struct{}{}
	}
	return WSResponse{Event: event, Data: data}
}

// NewError build an error frame
func NewError(msg string) WSResponse {
	return WSResponse{Event: EventError, Data: ErrorPayload{Message: msg}}
}
