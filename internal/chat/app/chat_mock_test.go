package app

import (
	"context"
	"sync"
	"time"

	"realtime_chat_service/internal/chat/domain"
	memberdomain "realtime_chat_service/internal/member/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserDirectory Mock UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) FindByID(ctx context.Context, id string) (*memberdomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*memberdomain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserDirectory) ListUsers(ctx context.Context) ([]memberdomain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]memberdomain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) InsertMessage(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) FindConversation(ctx context.Context, a, b string) ([]domain.Message, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepository) EnsureIndexes(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockNotificationStore Mock NotificationStore
type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) IncrementNotification(ctx context.Context, recipientID, senderID string) error {
	return m.Called(ctx, recipientID, senderID).Error(0)
}

func (m *MockNotificationStore) ResetNotification(ctx context.Context, recipientID, senderID string) error {
	return m.Called(ctx, recipientID, senderID).Error(0)
}

// MockNotificationUseCase Mock NotificationUseCase
type MockNotificationUseCase struct {
	mock.Mock
}

func (m *MockNotificationUseCase) Increment(ctx context.Context, recipientID, senderID string) error {
	return m.Called(ctx, recipientID, senderID).Error(0)
}

func (m *MockNotificationUseCase) Reset(ctx context.Context, callerID, recipientID, senderID string) error {
	return m.Called(ctx, callerID, recipientID, senderID).Error(0)
}

// MockMessageUseCase Mock MessageUseCase
type MockMessageUseCase struct {
	mock.Mock
}

func (m *MockMessageUseCase) Contacts(ctx context.Context, viewerID string) ([]memberdomain.User, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) != nil {
		return args.Get(0).([]memberdomain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageUseCase) History(ctx context.Context, viewerID, peerID string) ([]domain.Message, error) {
	args := m.Called(ctx, viewerID, peerID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageUseCase) Send(ctx context.Context, senderID, receiverID string, req domain.SendMessageReq) (*domain.Message, error) {
	args := m.Called(ctx, senderID, receiverID, req)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUploader Mock ImageUploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadImage(ctx context.Context, folder, dataURL string) (string, error) {
	args := m.Called(ctx, folder, dataURL)
	return args.String(0), args.Error(1)
}

// MockEventPublisher Mock EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.ChatEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}

// MockLastSeenStore Mock LastSeenStore
type MockLastSeenStore struct {
	mock.Mock
}

func (m *MockLastSeenStore) UpdateLastSeen(ctx context.Context, userID string, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

// recordingPusher 記錄推送, 取代 hub
type recordingPusher struct {
	mu   sync.Mutex
	sent map[string][]domain.WSResponse
}

func newRecordingPusher() *recordingPusher {
	return &recordingPusher{sent: make(map[string][]domain.WSResponse)}
}

func (p *recordingPusher) SendToUser(userID string, resp domain.WSResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent[userID] = append(p.sent[userID], resp)
}

func (p *recordingPusher) To(userID string) []domain.WSResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.WSResponse(nil), p.sent[userID]...)
}
