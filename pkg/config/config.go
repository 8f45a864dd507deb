package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port        string `mapstructure:"port"`
	ClientURL   string `mapstructure:"client_url"`
	StaticDir   string `mapstructure:"static_dir"`
	BodyLimitMB int    `mapstructure:"body_limit_mb"`

	JWT       JWTConfig       `mapstructure:"jwt"`
	MongoSQL  DatabaseConfig  `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Presence  PresenceConfig  `mapstructure:"presence"`
}

// JWTConfig definition session token setting
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// RedisConfig definition redis setting
// Sentinels 為空時使用單機 Addr
type RedisConfig struct {
	Addr       string   `mapstructure:"addr"`
	Password   string   `mapstructure:"password"`
	RedisDB    int      `mapstructure:"redis_db"`
	MasterName string   `mapstructure:"master_name"`
	Sentinels  []string `mapstructure:"sentinels"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	URI           string `mapstructure:"uri"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// MinIOConfig definition object storage setting
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	PublicURL     string `mapstructure:"public_url"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// KafkaConfig definition chat event stream setting
type KafkaConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// RateLimitConfig definition auth route limiter
type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	Burst     int `mapstructure:"burst"`
}

// PresenceConfig definition realtime hub setting
type PresenceConfig struct {
	LastSeenTimeout time.Duration `mapstructure:"last_seen_timeout"`
	ClientBuffer    int           `mapstructure:"client_buffer"`
}

// ApplyDefaults fill zero values with the service defaults
func (c *Chat) ApplyDefaults() {
	if c.Port == "" {
		c.Port = "5001"
	}
	if c.ClientURL == "" {
		c.ClientURL = "http://localhost:5173"
	}
	if c.BodyLimitMB <= 0 {
		c.BodyLimitMB = 5
	}
	if c.JWT.TTL <= 0 {
		c.JWT.TTL = 7 * 24 * time.Hour
	}
	if c.MongoSQL.Database == "" {
		c.MongoSQL.Database = "chat_db"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "chat-events"
	}
	if c.RateLimit.PerMinute <= 0 {
		c.RateLimit.PerMinute = 20
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 5
	}
	if c.Presence.LastSeenTimeout <= 0 {
		c.Presence.LastSeenTimeout = 5 * time.Second
	}
	if c.Presence.ClientBuffer <= 0 {
		c.Presence.ClientBuffer = 64
	}
}
