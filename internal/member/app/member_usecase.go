package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"realtime_chat_service/internal/member/domain"
	"realtime_chat_service/internal/member/repository"
	"realtime_chat_service/pkg/database"
	"realtime_chat_service/pkg/encrypt"
	errprocess "realtime_chat_service/pkg/err"
	"realtime_chat_service/pkg/logger"
	token "realtime_chat_service/pkg/token"

	"go.uber.org/zap"
)

const (
	msgFieldsRequired  = "All fields are required"
	msgNameTaken       = "This username is already taken. Try another one"
	msgInvalidEmail    = "Invalid email format"
	msgEmailTaken      = "User already exists with this email"
	msgEmailNotFound   = "User not found with this email"
	msgBadCredentials  = "Invalid credentials"
	msgUserNotFound    = "User not found"
	msgPicRequired     = "Profile picture is required"
	msgSessionExpired  = "Un-Authorized - Session expired"
	msgSessionReplaced = "Un-Authorized - Session replaced"
)

// ImageUploader store a data URL image and return its public URL
type ImageUploader interface {
	UploadImage(ctx context.Context, folder, dataURL string) (string, error)
}

// MemberUseCase 這裡封裝了對外提供的帳號服務
type MemberUseCase interface {
	Signup(ctx context.Context, req domain.SignupReq) (*domain.User, string, error)
	Login(ctx context.Context, req domain.LoginReq) (*domain.User, string, error)
	Logout(ctx context.Context, userID string) error
	CheckAuth(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileReq) (*domain.User, error)
	ValidateSession(ctx context.Context, userID, token string) error
}

type memberUseCase struct {
	userRepo     repository.UserRepository
	sessionTTL   time.Duration
	redisRepo    database.RedisRepository[domain.UserSession]
	uploader     ImageUploader
	hashPassword func(string) (string, error)
}

// NewMemberUseCase 建立一個新的 MemberUseCase
func NewMemberUseCase(userRepo repository.UserRepository,
	sessionTTL time.Duration,
	redisRepo database.RedisRepository[domain.UserSession],
	uploader ImageUploader,
	hashPassword func(string) (string, error),
) MemberUseCase {
	if hashPassword == nil {
		hashPassword = encrypt.HashPassword
	}
	return &memberUseCase{
		userRepo:     userRepo,
		sessionTTL:   sessionTTL,
		redisRepo:    redisRepo,
		uploader:     uploader,
		hashPassword: hashPassword,
	}
}

// Signup 驗證欄位後建立使用者並簽發 session
func (m *memberUseCase) Signup(ctx context.Context, req domain.SignupReq) (*domain.User, string, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := domain.NormalizeEmail(req.Email)
	if fullName == "" || email == "" || req.Password == "" {
		return nil, "", errprocess.Validation(msgFieldsRequired)
	}

	// 1. 名稱唯一
	if _, err := m.userRepo.FindByFullName(ctx, fullName); err == nil {
		return nil, "", errprocess.Conflict(msgNameTaken)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", errprocess.Internal("find by full name", err)
	}

	// 2. email 格式與密碼長度
	if !domain.IsValidEmail(email) {
		return nil, "", errprocess.Validation(msgInvalidEmail)
	}
	if err := encrypt.ValidatePasswordStrength(req.Password); err != nil {
		return nil, "", errprocess.Validation(err.Error())
	}

	// 3. email 唯一
	if _, err := m.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, "", errprocess.Conflict(msgEmailTaken)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", errprocess.Internal("find by email", err)
	}

	hashed, err := m.hashPassword(req.Password)
	if err != nil {
		return nil, "", errprocess.Internal("hash password", err)
	}

	user := &domain.User{
		FullName:      fullName,
		Email:         email,
		Password:      hashed,
		Notifications: domain.Notifications{},
	}
	if err := m.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, "", errprocess.Conflict(msgEmailTaken)
		}
		return nil, "", errprocess.Internal("create user", err)
	}

	tk, err := m.issueSession(ctx, user.ID.Hex())
	if err != nil {
		return nil, "", err
	}

	logger.Log.Info("user signed up", zap.String("userID", user.ID.Hex()))
	return user, tk, nil
}

// Login 驗證帳密後簽發 session
func (m *memberUseCase) Login(ctx context.Context, req domain.LoginReq) (*domain.User, string, error) {
	email := domain.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", errprocess.Validation(msgFieldsRequired)
	}
	if !domain.IsValidEmail(email) {
		return nil, "", errprocess.Validation(msgInvalidEmail)
	}
	if err := encrypt.ValidatePasswordStrength(req.Password); err != nil {
		return nil, "", errprocess.Validation(err.Error())
	}

	user, err := m.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", errprocess.NotFound(msgEmailNotFound)
		}
		return nil, "", errprocess.Internal("find by email", err)
	}

	if err := user.IsPasswordMatch(req.Password); err != nil {
		logger.Log.Debug("password mismatch", zap.String("userID", user.ID.Hex()))
		return nil, "", errprocess.Validation(msgBadCredentials)
	}

	tk, err := m.issueSession(ctx, user.ID.Hex())
	if err != nil {
		return nil, "", err
	}
	return user, tk, nil
}

func (m *memberUseCase) issueSession(ctx context.Context, userID string) (string, error) {
	tk, err := token.GenerateJWTWrapper(userID)
	if err != nil {
		return "", errprocess.Internal("generate jwt", err)
	}

	now := time.Now()
	session := domain.UserSession{
		Token:        tk,
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(m.sessionTTL),
	}
	if err := m.redisRepo.Set(ctx, userID, session, m.sessionTTL); err != nil {
		return "", errprocess.Internal("store session", err)
	}
	return tk, nil
}

// Logout 刪除 redis session, 舊 token 之後無法再通過驗證
func (m *memberUseCase) Logout(ctx context.Context, userID string) error {
	if err := m.redisRepo.Del(ctx, userID); err != nil {
		return errprocess.Internal("delete session", err)
	}
	return nil
}

// CheckAuth 取得目前登入的使用者
func (m *memberUseCase) CheckAuth(ctx context.Context, userID string) (*domain.User, error) {
	user, err := m.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return nil, errprocess.NotFound(msgUserNotFound)
		}
		return nil, errprocess.Internal("find user", err)
	}
	return user, nil
}

// UpdateProfile 上傳頭像並更新使用者
func (m *memberUseCase) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileReq) (*domain.User, error) {
	if strings.TrimSpace(req.ProfilePic) == "" {
		return nil, errprocess.Validation(msgPicRequired)
	}

	url, err := m.uploader.UploadImage(ctx, "profiles/"+userID, req.ProfilePic)
	if err != nil {
		if errors.Is(err, database.ErrInvalidDataURL) {
			return nil, errprocess.Validation(err.Error())
		}
		return nil, errprocess.Internal("upload profile pic", err)
	}

	user, err := m.userRepo.UpdateProfilePic(ctx, userID, url)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return nil, errprocess.NotFound(msgUserNotFound)
		}
		return nil, errprocess.Internal("update profile pic", err)
	}
	return user, nil
}

// ValidateSession token must be the one stored for the user
func (m *memberUseCase) ValidateSession(ctx context.Context, userID, tk string) error {
	session, err := m.redisRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrRedisNil) {
			return errprocess.Unauthorized(msgSessionExpired)
		}
		return errprocess.Internal("get session", err)
	}
	if session.Token != tk {
		return errprocess.Unauthorized(msgSessionReplaced)
	}
	if session.IsExpired() {
		return errprocess.Unauthorized(msgSessionExpired)
	}
	return nil
}
