package app

import (
	"context"
	"errors"

	memberrepo "realtime_chat_service/internal/member/repository"
	errprocess "realtime_chat_service/pkg/err"
)

// NotificationStore per-sender unread counter on the recipient document
type NotificationStore interface {
	IncrementNotification(ctx context.Context, recipientID, senderID string) error
	ResetNotification(ctx context.Context, recipientID, senderID string) error
}

// NotificationUseCase 未讀計數
type NotificationUseCase interface {
	Increment(ctx context.Context, recipientID, senderID string) error
	// Reset callerID 只能重置自己的計數
	Reset(ctx context.Context, callerID, recipientID, senderID string) error
}

type notificationUseCase struct {
	store NotificationStore
}

// NewNotificationUseCase create NotificationUseCase
func NewNotificationUseCase(store NotificationStore) NotificationUseCase {
	return &notificationUseCase{store: store}
}

func (n *notificationUseCase) Increment(ctx context.Context, recipientID, senderID string) error {
	return mapUserErr(n.store.IncrementNotification(ctx, recipientID, senderID), "increment notification")
}

func (n *notificationUseCase) Reset(ctx context.Context, callerID, recipientID, senderID string) error {
	if callerID != recipientID {
		return errprocess.Unauthorized("Un-Authorized - Cannot reset another user's notifications")
	}
	if senderID == "" {
		return errprocess.Validation("senderId is required")
	}
	return mapUserErr(n.store.ResetNotification(ctx, recipientID, senderID), "reset notification")
}

func mapUserErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, memberrepo.ErrInvalidID):
		return errprocess.Validation("Invalid user id")
	case errors.Is(err, memberrepo.ErrUserNotFound):
		return errprocess.NotFound(msgUserNotFound)
	default:
		return errprocess.Internal(op, err)
	}
}
