package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"realtime_chat_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
)

// EventPublisher 發布聊天事件到外部 stream
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ChatEvent) error
	Close() error
}

// KafkaWriter the part of *kafka.Writer we use
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaEventPublisher struct {
	writer KafkaWriter
}

// NewKafkaEventPublisher create EventPublisher on a kafka writer
func NewKafkaEventPublisher(w KafkaWriter) EventPublisher {
	return &kafkaEventPublisher{writer: w}
}

// Publish 將 event 序列化後寫入 topic, key 為對話
func (p *kafkaEventPublisher) Publish(ctx context.Context, event domain.ChatEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal chat event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("write chat event: %w", err)
	}
	return nil
}

func (p *kafkaEventPublisher) Close() error {
	return p.writer.Close()
}

type nopEventPublisher struct{}

// NewNopEventPublisher kafka 未啟用時使用
func NewNopEventPublisher() EventPublisher {
	return nopEventPublisher{}
}

func (nopEventPublisher) Publish(context.Context, domain.ChatEvent) error { return nil }

func (nopEventPublisher) Close() error { return nil }
