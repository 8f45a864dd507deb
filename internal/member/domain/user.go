package domain

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"realtime_chat_service/pkg/encrypt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifications unread count per sender id, a missing key means zero
type Notifications map[string]int

// Increment add one unread message from senderID
func (n *Notifications) Increment(senderID string) int {
	if *n == nil {
		*n = Notifications{}
	}
	(*n)[senderID]++
	return (*n)[senderID]
}

// Reset drop the entry for senderID
func (n *Notifications) Reset(senderID string) {
	delete(*n, senderID)
}

// Count unread messages from senderID
func (n Notifications) Count(senderID string) int {
	return n[senderID]
}

// Total unread messages over all senders
func (n Notifications) Total() int {
	total := 0
	for _, c := range n {
		total += c
	}
	return total
}

// User 用來表示聊天使用者
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName      string             `bson:"fullName" json:"fullName"`
	Email         string             `bson:"email" json:"email"`
	Password      string             `bson:"password" json:"-"`
	ProfilePic    string             `bson:"profilePic" json:"profilePic"`
	LastSeen      *time.Time         `bson:"lastSeen,omitempty" json:"lastSeen,omitempty"`
	Notifications Notifications      `bson:"notifications" json:"notifications"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsPasswordMatch 密碼驗證
func (u *User) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(u.Password, inputPwd)
}

// UserSession 用來表示使用者的 Session, 存在 redis
type UserSession struct {
	Token        string    `json:"Token"`
	UserID       string    `json:"UserID"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// IsExpired 檢查 Session 是否已過期
func (s *UserSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// SignupReq signup body
type SignupReq struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginReq login body
type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileReq update-profile body, ProfilePic is a data URL
type UpdateProfileReq struct {
	ProfilePic string `json:"profilePic"`
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// NormalizeEmail trim and lowercase
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail check the address shape
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// SortContacts order a contact list for a viewer with the given unread map:
// unread count desc, then fullName case-insensitive, then id
func SortContacts(users []User, unread Notifications) {
	sort.SliceStable(users, func(i, j int) bool {
		ci, cj := unread.Count(users[i].ID.Hex()), unread.Count(users[j].ID.Hex())
		if ci != cj {
			return ci > cj
		}
		ni, nj := strings.ToLower(users[i].FullName), strings.ToLower(users[j].FullName)
		if ni != nj {
			return ni < nj
		}
		return users[i].ID.Hex() < users[j].ID.Hex()
	})
}
