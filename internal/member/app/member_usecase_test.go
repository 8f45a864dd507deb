package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"realtime_chat_service/internal/member/domain"
	"realtime_chat_service/internal/member/repository"
	"realtime_chat_service/pkg/database"
	"realtime_chat_service/pkg/encrypt"
	errprocess "realtime_chat_service/pkg/err"
	"realtime_chat_service/pkg/logger"
	token "realtime_chat_service/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newUseCase(repo *MockUserRepo, redis *MockRedisRepo, up *MockUploader) MemberUseCase {
	return NewMemberUseCase(repo, time.Hour, redis, up, encrypt.HashPassword)
}

func assertKind(t *testing.T, err error, kind errprocess.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, errprocess.KindOf(err))
	assert.Equal(t, msg, errprocess.PublicMessage(err))
}

func TestMemberUseCase_Signup(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	valid := domain.SignupReq{FullName: "Alice", Email: " Alice@Example.com ", Password: "secret1"}

	t.Run("success", func(t *testing.T) {
		repo, redis := new(MockUserRepo), new(MockRedisRepo)
		newID := primitive.NewObjectID()

		repo.On("FindByFullName", ctx, "Alice").Return(nil, repository.ErrUserNotFound).Once()
		repo.On("FindByEmail", ctx, "alice@example.com").Return(nil, repository.ErrUserNotFound).Once()
		repo.On("CreateUser", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "alice@example.com" && u.Password != "secret1" && u.Notifications != nil
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = newID
		}).Return(nil).Once()
		redis.On("Set", ctx, newID.Hex(), mock.AnythingOfType("domain.UserSession"), time.Hour).Return(nil).Once()

		user, tk, err := newUseCase(repo, redis, nil).Signup(ctx, valid)

		require.NoError(t, err)
		assert.Equal(t, newID, user.ID)
		claims, err := token.ParseJWT(tk)
		require.NoError(t, err)
		assert.Equal(t, newID.Hex(), claims.UserID)
		repo.AssertExpectations(t)
		redis.AssertExpectations(t)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, _, err := newUseCase(new(MockUserRepo), new(MockRedisRepo), nil).Signup(ctx, domain.SignupReq{Email: "a@b.co"})
		assertKind(t, err, errprocess.KindValidation, "All fields are required")
	})

	t.Run("full name taken", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByFullName", ctx, "Alice").Return(&domain.User{FullName: "Alice"}, nil).Once()

		_, _, err := newUseCase(repo, new(MockRedisRepo), nil).Signup(ctx, valid)
		assertKind(t, err, errprocess.KindConflict, "This username is already taken. Try another one")
	})

	t.Run("invalid email", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByFullName", ctx, "Alice").Return(nil, repository.ErrUserNotFound).Once()

		_, _, err := newUseCase(repo, new(MockRedisRepo), nil).Signup(ctx, domain.SignupReq{FullName: "Alice", Email: "alice@", Password: "secret1"})
		assertKind(t, err, errprocess.KindValidation, "Invalid email format")
	})

	t.Run("short password", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByFullName", ctx, "Alice").Return(nil, repository.ErrUserNotFound).Once()

		_, _, err := newUseCase(repo, new(MockRedisRepo), nil).Signup(ctx, domain.SignupReq{FullName: "Alice", Email: "alice@example.com", Password: "123"})
		assertKind(t, err, errprocess.KindValidation, "Password must be at-least 6 characters")
	})

	t.Run("email taken", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByFullName", ctx, "Alice").Return(nil, repository.ErrUserNotFound).Once()
		repo.On("FindByEmail", ctx, "alice@example.com").Return(&domain.User{}, nil).Once()

		_, _, err := newUseCase(repo, new(MockRedisRepo), nil).Signup(ctx, valid)
		assertKind(t, err, errprocess.KindConflict, "User already exists with this email")
	})

	t.Run("hash failure", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByFullName", ctx, "Alice").Return(nil, repository.ErrUserNotFound).Once()
		repo.On("FindByEmail", ctx, "alice@example.com").Return(nil, repository.ErrUserNotFound).Once()

		uc := NewMemberUseCase(repo, time.Hour, new(MockRedisRepo), nil, func(string) (string, error) {
			return "", errors.New("hash password error")
		})
		_, _, err := uc.Signup(ctx, valid)
		assertKind(t, err, errprocess.KindInternal, errprocess.InternalMessage)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByFullName", ctx, "Alice").Return(nil, errors.New("mongo down")).Once()

		_, _, err := newUseCase(repo, new(MockRedisRepo), nil).Signup(ctx, valid)
		assertKind(t, err, errprocess.KindInternal, errprocess.InternalMessage)
	})
}

func TestMemberUseCase_Login(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	hashed, err := encrypt.HashPassword("secret1")
	require.NoError(t, err)
	stored := &domain.User{ID: primitive.NewObjectID(), FullName: "Alice", Email: "alice@example.com", Password: hashed}

	t.Run("success", func(t *testing.T) {
		repo, redis := new(MockUserRepo), new(MockRedisRepo)
		repo.On("FindByEmail", ctx, "alice@example.com").Return(stored, nil).Once()
		redis.On("Set", ctx, stored.ID.Hex(), mock.MatchedBy(func(s domain.UserSession) bool {
			return s.UserID == stored.ID.Hex() && s.Token != ""
		}), time.Hour).Return(nil).Once()

		user, tk, err := newUseCase(repo, redis, nil).Login(ctx, domain.LoginReq{Email: "ALICE@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, stored, user)
		assert.NotEmpty(t, tk)
		redis.AssertExpectations(t)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByEmail", ctx, "bob@example.com").Return(nil, repository.ErrUserNotFound).Once()

		_, _, err := newUseCase(repo, new(MockRedisRepo), nil).Login(ctx, domain.LoginReq{Email: "bob@example.com", Password: "secret1"})
		assertKind(t, err, errprocess.KindNotFound, "User not found with this email")
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByEmail", ctx, "alice@example.com").Return(stored, nil).Once()

		_, _, err := newUseCase(repo, new(MockRedisRepo), nil).Login(ctx, domain.LoginReq{Email: "alice@example.com", Password: "secret2"})
		assertKind(t, err, errprocess.KindValidation, "Invalid credentials")
	})

	t.Run("missing fields", func(t *testing.T) {
		_, _, err := newUseCase(new(MockUserRepo), new(MockRedisRepo), nil).Login(ctx, domain.LoginReq{Email: "alice@example.com"})
		assertKind(t, err, errprocess.KindValidation, "All fields are required")
	})
}

func TestMemberUseCase_Session(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	t.Run("logout drops session", func(t *testing.T) {
		redis := new(MockRedisRepo)
		redis.On("Del", ctx, "u1").Return(nil).Once()

		assert.NoError(t, newUseCase(new(MockUserRepo), redis, nil).Logout(ctx, "u1"))
		redis.AssertExpectations(t)
	})

	t.Run("validate live session", func(t *testing.T) {
		redis := new(MockRedisRepo)
		redis.On("Get", ctx, "u1").Return(domain.UserSession{Token: "tk", UserID: "u1", ExpiredAt: time.Now().Add(time.Hour)}, nil).Once()

		assert.NoError(t, newUseCase(new(MockUserRepo), redis, nil).ValidateSession(ctx, "u1", "tk"))
	})

	t.Run("validate missing session", func(t *testing.T) {
		redis := new(MockRedisRepo)
		redis.On("Get", ctx, "u1").Return(nil, database.ErrRedisNil).Once()

		err := newUseCase(new(MockUserRepo), redis, nil).ValidateSession(ctx, "u1", "tk")
		assert.Equal(t, errprocess.KindUnauthorized, errprocess.KindOf(err))
	})

	t.Run("validate replaced token", func(t *testing.T) {
		redis := new(MockRedisRepo)
		redis.On("Get", ctx, "u1").Return(domain.UserSession{Token: "newer", ExpiredAt: time.Now().Add(time.Hour)}, nil).Once()

		err := newUseCase(new(MockUserRepo), redis, nil).ValidateSession(ctx, "u1", "tk")
		assert.Equal(t, errprocess.KindUnauthorized, errprocess.KindOf(err))
	})
}

func TestMemberUseCase_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()
	id := primitive.NewObjectID().Hex()
	pic := "data:image/png;base64,aGVsbG8="

	t.Run("success", func(t *testing.T) {
		repo, up := new(MockUserRepo), new(MockUploader)
		up.On("UploadImage", ctx, "profiles/"+id, pic).Return("http://minio/chat/p.png", nil).Once()
		repo.On("UpdateProfilePic", ctx, id, "http://minio/chat/p.png").Return(&domain.User{ProfilePic: "http://minio/chat/p.png"}, nil).Once()

		user, err := newUseCase(repo, new(MockRedisRepo), up).UpdateProfile(ctx, id, domain.UpdateProfileReq{ProfilePic: pic})
		require.NoError(t, err)
		assert.Equal(t, "http://minio/chat/p.png", user.ProfilePic)
		up.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("missing picture", func(t *testing.T) {
		_, err := newUseCase(new(MockUserRepo), new(MockRedisRepo), new(MockUploader)).UpdateProfile(ctx, id, domain.UpdateProfileReq{})
		assertKind(t, err, errprocess.KindValidation, "Profile picture is required")
	})

	t.Run("not a data url", func(t *testing.T) {
		up := new(MockUploader)
		up.On("UploadImage", ctx, "profiles/"+id, "http://x").Return("", database.ErrInvalidDataURL).Once()

		_, err := newUseCase(new(MockUserRepo), new(MockRedisRepo), up).UpdateProfile(ctx, id, domain.UpdateProfileReq{ProfilePic: "http://x"})
		assert.Equal(t, errprocess.KindValidation, errprocess.KindOf(err))
	})

	t.Run("upload failure", func(t *testing.T) {
		up := new(MockUploader)
		up.On("UploadImage", ctx, "profiles/"+id, pic).Return("", errors.New("minio offline")).Once()

		_, err := newUseCase(new(MockUserRepo), new(MockRedisRepo), up).UpdateProfile(ctx, id, domain.UpdateProfileReq{ProfilePic: pic})
		assert.Equal(t, errprocess.KindInternal, errprocess.KindOf(err))
	})
}

func TestMemberUseCase_CheckAuth(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	repo := new(MockUserRepo)
	repo.On("FindByID", ctx, "gone").Return(nil, repository.ErrUserNotFound).Once()

	_, err := newUseCase(repo, new(MockRedisRepo), nil).CheckAuth(ctx, "gone")
	assertKind(t, err, errprocess.KindNotFound, "User not found")
}
