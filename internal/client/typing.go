package client

import (
	"sync"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// DefaultTypingInterval quiet time before stopTyping
const DefaultTypingInterval = 2 * time.Second

// TypingNotifier 單一對話的輸入狀態 Idle <-> Typing
// 每次按鍵送出 typing 並重設計時器, 計時到或送出訊息時送出 stopTyping
type TypingNotifier struct {
	emitter    Emitter
	receiverID string
	senderName string
	interval   time.Duration

	mu     sync.Mutex
	typing bool
	timer  *time.Timer
	gen    uint64
}

// NewTypingNotifier interval <= 0 uses DefaultTypingInterval
func NewTypingNotifier(emitter Emitter, receiverID, senderName string, interval time.Duration) *TypingNotifier {
	if interval <= 0 {
		interval = DefaultTypingInterval
	}
	return &TypingNotifier{
		emitter:    emitter,
		receiverID: receiverID,
		senderName: senderName,
		interval:   interval,
	}
}

// Keystroke Idle -> Typing, or restart the quiet timer
func (n *TypingNotifier) Keystroke() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.emit(domain.EventTyping, domain.TypingPayload{ReceiverID: n.receiverID, SenderName: n.senderName})
	n.typing = true

	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	n.timer = time.AfterFunc(n.interval, func() { n.expire(gen) })
}

// MessageSent Typing -> Idle
func (n *TypingNotifier) MessageSent() {
	n.Stop()
}

// Stop Typing -> Idle, no-op when idle
func (n *TypingNotifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toIdle()
}

// IsTyping current state
func (n *TypingNotifier) IsTyping() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.typing
}

func (n *TypingNotifier) expire(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	// 已被新的按鍵取代
	if gen != n.gen {
		return
	}
	n.toIdle()
}

func (n *TypingNotifier) toIdle() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	if !n.typing {
		return
	}
	n.typing = false
	n.emit(domain.EventStopTyping, domain.TypingPayload{ReceiverID: n.receiverID})
}

func (n *TypingNotifier) emit(event domain.Event, data interface{}) {
	if err := n.emitter.Emit(event, data); err != nil {
		logger.Log.Debug("typing emit failed", zap.String("event", string(event)), zap.Error(err))
	}
}
