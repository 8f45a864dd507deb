package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	memberdomain "realtime_chat_service/internal/member/domain"
	"realtime_chat_service/pkg/database"
	errprocess "realtime_chat_service/pkg/err"
	"realtime_chat_service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgUserNotFound     = "User not found"
	msgMessageRequired  = "Message text or image is required"
	msgInvalidUserID    = "Invalid user id"
	attachmentFolderFmt = "messages/"
)

// UserDirectory read access to chat users
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*memberdomain.User, error)
	ListUsers(ctx context.Context) ([]memberdomain.User, error)
}

// ImageUploader store a data URL image and return its public URL
type ImageUploader interface {
	UploadImage(ctx context.Context, folder, dataURL string) (string, error)
}

// Pusher realtime delivery, implemented by Hub
type Pusher interface {
	SendToUser(userID string, resp domain.WSResponse)
}

// ViewTracker implemented by ActiveChatTracker
type ViewTracker interface {
	IsViewing(viewerID, peerID string) bool
}

// MessageUseCase 聯絡人, 歷史訊息與送出訊息
type MessageUseCase interface {
	Contacts(ctx context.Context, viewerID string) ([]memberdomain.User, error)
	History(ctx context.Context, viewerID, peerID string) ([]domain.Message, error)
	Send(ctx context.Context, senderID, receiverID string, req domain.SendMessageReq) (*domain.Message, error)
}

type messageUseCase struct {
	users         UserDirectory
	msgRepo       repository.MessageRepository
	notifications NotificationUseCase
	tracker       ViewTracker
	pusher        Pusher
	uploader      ImageUploader
	events        repository.EventPublisher
	now           func() time.Time
}

// NewMessageUseCase init message use case
func NewMessageUseCase(
	users UserDirectory,
	msgRepo repository.MessageRepository,
	notifications NotificationUseCase,
	tracker ViewTracker,
	pusher Pusher,
	uploader ImageUploader,
	events repository.EventPublisher,
) MessageUseCase {
	if events == nil {
		events = repository.NewNopEventPublisher()
	}
	return &messageUseCase{
		users:         users,
		msgRepo:       msgRepo,
		notifications: notifications,
		tracker:       tracker,
		pusher:        pusher,
		uploader:      uploader,
		events:        events,
		now:           time.Now,
	}
}

// Contacts 所有使用者 (含自己), 依自己對該使用者的未讀數降冪, 再依名稱
func (uc *messageUseCase) Contacts(ctx context.Context, viewerID string) ([]memberdomain.User, error) {
	users, err := uc.users.ListUsers(ctx)
	if err != nil {
		return nil, errprocess.Internal("list users", err)
	}

	var unread memberdomain.Notifications
	for i := range users {
		if users[i].ID.Hex() == viewerID {
			unread = users[i].Notifications
			break
		}
	}

	memberdomain.SortContacts(users, unread)
	return users, nil
}

// History 與 peer 的所有訊息, 依建立時間
func (uc *messageUseCase) History(ctx context.Context, viewerID, peerID string) ([]domain.Message, error) {
	messages, err := uc.msgRepo.FindConversation(ctx, viewerID, peerID)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			return nil, errprocess.Validation(msgInvalidUserID)
		}
		return nil, errprocess.Internal("find conversation", err)
	}
	return messages, nil
}

// Send 送出訊息
func (uc *messageUseCase) Send(ctx context.Context, senderID, receiverID string, req domain.SendMessageReq) (*domain.Message, error) {
	// 1. 驗證
	senderOID, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return nil, errprocess.Validation(msgInvalidUserID)
	}
	receiverOID, err := primitive.ObjectIDFromHex(receiverID)
	if err != nil {
		return nil, errprocess.Validation(msgInvalidUserID)
	}
	if req.IsEmpty() {
		return nil, errprocess.Validation(msgMessageRequired)
	}
	if _, err := uc.users.FindByID(ctx, receiverID); err != nil {
		return nil, mapUserErr(err, "find receiver")
	}

	// 2. 圖片先上傳, 失敗就不寫入任何資料
	var imageURL string
	if strings.TrimSpace(req.Image) != "" {
		imageURL, err = uc.uploader.UploadImage(ctx, attachmentFolderFmt+senderID, req.Image)
		if err != nil {
			if errors.Is(err, database.ErrInvalidDataURL) {
				return nil, errprocess.Validation(err.Error())
			}
			return nil, errprocess.Internal("upload attachment", err)
		}
	}

	// 3. 寫入
	now := uc.now().UTC()
	msg := &domain.Message{
		SenderID:   senderOID,
		ReceiverID: receiverOID,
		Text:       strings.TrimSpace(req.Text),
		Image:      imageURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.msgRepo.InsertMessage(ctx, msg); err != nil {
		return nil, errprocess.Internal("insert message", err)
	}

	// 4. 對方沒在看這個對話才累加未讀
	if !uc.tracker.IsViewing(receiverID, senderID) {
		if err := uc.notifications.Increment(ctx, receiverID, senderID); err != nil {
			return nil, err
		}
	}

	// 5. 只推給對方目前的連線
	uc.pusher.SendToUser(receiverID, domain.NewResponse(domain.EventNewMessage, msg))

	// 6. 事件流, 失敗只記錄
	event := domain.ChatEvent{
		Type:       domain.EventMessageCreated,
		MessageID:  msg.ID.Hex(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		HasImage:   imageURL != "",
		OccurredAt: now,
	}
	if err := uc.events.Publish(ctx, event); err != nil {
		logger.Log.Warn("publish message.created failed", zap.String("messageID", msg.ID.Hex()), zap.Error(err))
	}

	return msg, nil
}
