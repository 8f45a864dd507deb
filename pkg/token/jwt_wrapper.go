package token

import "realtime_chat_service/pkg/config"

// 這個變數會在測試時被覆蓋
var (
	GenerateJWTFunc = GenerateJWT
	ParseJWTFunc    = ParseJWT
)

// GenerateJWTWrapper 讓 usecase test 可以替換簽發行為
func GenerateJWTWrapper(userID string) (string, error) {
	return GenerateJWTFunc(userID, string(RoleUser), config.EnvConfig.ChatService)
}

// ParseJWTWrapper 讓 usecase test 可以替換解析行為
func ParseJWTWrapper(t string) (*Claims, error) {
	return ParseJWTFunc(t)
}
