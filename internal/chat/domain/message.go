package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message 表示一則一對一訊息, 建立後不可修改
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SenderID   primitive.ObjectID `bson:"senderId" json:"senderId"`
	ReceiverID primitive.ObjectID `bson:"receiverId" json:"receiverId"`
	Text       string             `bson:"text,omitempty" json:"text,omitempty"`
	Image      string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsBetween check the message belong to the conversation of a and b
func (m *Message) IsBetween(a, b primitive.ObjectID) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// SendMessageReq POST /api/messages/send/:id body
type SendMessageReq struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// IsEmpty no text and no image
func (r SendMessageReq) IsEmpty() bool {
	return strings.TrimSpace(r.Text) == "" && strings.TrimSpace(r.Image) == ""
}

// ResetNotificationReq PATCH /api/messages/reset-notification/:id body
type ResetNotificationReq struct {
	SenderID string `json:"senderId"`
}

// EventType chat event stream type
type EventType string

const (
	// EventMessageCreated a message was persisted
	EventMessageCreated EventType = "message.created"
	// EventUserOffline last connection of a user closed
	EventUserOffline EventType = "user.offline"
)

// ChatEvent 寫入 kafka 的事件
type ChatEvent struct {
	Type       EventType `json:"type"`
	UserID     string    `json:"userId,omitempty"`
	MessageID  string    `json:"messageId,omitempty"`
	SenderID   string    `json:"senderId,omitempty"`
	ReceiverID string    `json:"receiverId,omitempty"`
	HasImage   bool      `json:"hasImage,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Key partition key, events of one conversation stay ordered
func (e ChatEvent) Key() string {
	if e.SenderID == "" {
		return e.UserID
	}
	if e.SenderID < e.ReceiverID {
		return e.SenderID + ":" + e.ReceiverID
	}
	return e.ReceiverID + ":" + e.SenderID
}
