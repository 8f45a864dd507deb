package app

import (
	"context"
	"time"

	"realtime_chat_service/internal/member/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepo Mock UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) FindByFullName(ctx context.Context, fullName string) (*domain.User, error) {
	args := m.Called(ctx, fullName)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) UpdateProfilePic(ctx context.Context, id, url string) (*domain.User, error) {
	args := m.Called(ctx, id, url)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) IncrementNotification(ctx context.Context, recipientID, senderID string) error {
	args := m.Called(ctx, recipientID, senderID)
	return args.Error(0)
}

func (m *MockUserRepo) ResetNotification(ctx context.Context, recipientID, senderID string) error {
	args := m.Called(ctx, recipientID, senderID)
	return args.Error(0)
}

func (m *MockUserRepo) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepo) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockRedisRepo 針對 UserSession 的 Mock
type MockRedisRepo struct {
	mock.Mock
}

func (m *MockRedisRepo) Set(ctx context.Context, key string, value domain.UserSession, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockRedisRepo) Get(ctx context.Context, key string) (domain.UserSession, error) {
	args := m.Called(ctx, key)
	if args.Get(0) != nil {
		return args.Get(0).(domain.UserSession), args.Error(1)
	}
	return domain.UserSession{}, args.Error(1)
}

func (m *MockRedisRepo) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockRedisRepo) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}

func (m *MockRedisRepo) GetTTL(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

// MockUploader Mock ImageUploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadImage(ctx context.Context, folder, dataURL string) (string, error) {
	args := m.Called(ctx, folder, dataURL)
	return args.String(0), args.Error(1)
}

// MockMemberUseCase Mock MemberUseCase, used by handler tests
type MockMemberUseCase struct {
	mock.Mock
}

func (m *MockMemberUseCase) Signup(ctx context.Context, req domain.SignupReq) (*domain.User, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *MockMemberUseCase) Login(ctx context.Context, req domain.LoginReq) (*domain.User, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *MockMemberUseCase) Logout(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockMemberUseCase) CheckAuth(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMemberUseCase) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileReq) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMemberUseCase) ValidateSession(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}
