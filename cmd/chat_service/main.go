package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "realtime_chat_service/cmd/chat_service/docs" // 引入生成的 Swagger 文档
	"realtime_chat_service/internal/api/handlers"
	"realtime_chat_service/internal/api/router"
	chatapp "realtime_chat_service/internal/chat/app"
	chatrepo "realtime_chat_service/internal/chat/repository"
	memberapp "realtime_chat_service/internal/member/app"
	memberdomain "realtime_chat_service/internal/member/domain"
	memberrepo "realtime_chat_service/internal/member/repository"
	"realtime_chat_service/pkg/config"
	"realtime_chat_service/pkg/database"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/middlewares"
	testtool "realtime_chat_service/pkg/test_tool"
	"realtime_chat_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

//go:generate swag init -g ../../internal/api/router/router.go -d ./,../../internal -o ./docs
func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLog)
	defer logger.Log.Sync()

	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAML)
	cfg.ApplyDefaults()
	if config.EnvConfig.ChatServicePort != "" {
		cfg.Port = config.EnvConfig.ChatServicePort
	}
	token.Configure(cfg.JWT.Secret, cfg.JWT.TTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Mongo (使用者與訊息)
	uri := database.MongoURI(cfg.MongoSQL.URI, cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval) * time.Second,
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s:%d]", cfg.MongoSQL.Host, cfg.MongoSQL.Port)),
			zap.Error(err),
		)
	}
	defer mongo.Close(context.Background())

	userRepo := memberrepo.NewMongoUserRepository(mongo.Database)
	msgRepo := chatrepo.NewMongoMessageRepository(mongo.Database)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal("create user indexes", zap.Error(err))
	}
	if err := msgRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal("create message indexes", zap.Error(err))
	}

	// 2. Redis (session)
	masterName, sentinels := cfg.Redis.MasterName, cfg.Redis.Sentinels
	if len(sentinels) == 0 {
		masterName, sentinels = config.GetRedisSetting()
	}
	redisClient, err := database.NewRedisClient(ctx, database.RedisConnection{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.RedisDB,
		MasterName: masterName,
		Sentinels:  sentinels,
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	defer redisClient.Close()
	sessions := database.NewRedisRepository[memberdomain.UserSession](redisClient, "session:")

	// 3. MinIO (圖片)
	media, err := database.NewMinIOConnection(ctx, database.MinIOConnection{
		Endpoint:      cfg.MinIO.Endpoint,
		User:          cfg.MinIO.User,
		Password:      cfg.MinIO.Password,
		BucketName:    cfg.MinIO.Bucket,
		UseSSL:        cfg.MinIO.UseSSL,
		PublicURL:     cfg.MinIO.PublicURL,
		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval) * time.Second,
	})
	if err != nil {
		logger.Log.Fatal("connect minio err", zap.Error(err))
	}

	// 4. Kafka (聊天事件, 可關閉)
	events := newEventPublisher(ctx, cfg.Kafka)
	defer events.Close()

	// 5. Hub 與 UseCases
	presence := chatapp.NewPresenceRegistry()
	tracker := chatapp.NewActiveChatTracker()
	hub := chatapp.NewHub(presence, tracker, userRepo, events, chatapp.HubConfig{
		ClientBuffer:    cfg.Presence.ClientBuffer,
		LastSeenTimeout: cfg.Presence.LastSeenTimeout,
	})

	memberUC := memberapp.NewMemberUseCase(userRepo, cfg.JWT.TTL, sessions, media, nil)
	notificationUC := chatapp.NewNotificationUseCase(userRepo)
	messageUC := chatapp.NewMessageUseCase(userRepo, msgRepo, notificationUC, tracker, hub, media, events)

	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	testtool.StartPprof()

	limiter := middlewares.NewLimiterStore(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, time.Minute)
	defer limiter.Stop()

	// 6. Fiber
	r := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(recover.New())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.ClientURL,
		AllowCredentials: true,
	}))
	r.Use(fiber_log.New(fiber_log.Config{
		Output: file, // 将日志输出到文件
	}))

	staticDir := ""
	if config.IsProduction() {
		staticDir = cfg.StaticDir
	}

	// 注册路由
	router.RegisterRoutes(r, router.Handlers{
		Member:    memberapp.NewMemberHandler(memberUC, cfg.JWT.TTL, !config.IsDevelopment()),
		Chat:      chatapp.NewChatHandler(messageUC, notificationUC),
		Websocket: chatapp.NewChatWebsocketHandler(hub, 0),
		Sessions:  memberUC,
		Limiter:   limiter,
		StaticDir: staticDir,
	})

	go func() {
		<-ctx.Done()
		logger.Log.Info("shutting down chat service")
		if err := r.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Log.Warn("fiber shutdown", zap.Error(err))
		}
	}()

	port := ":" + cfg.Port
	logger.Log.Info(fmt.Sprintf("Chat Service listening on %s", port))
	if err := r.Listen(port); err != nil {
		logger.Log.Error("Failed to start Fiber", zap.Error(err))
	}

	stop()
	<-hubDone
}

// newEventPublisher kafka 關閉或連不上時改用 Nop
func newEventPublisher(ctx context.Context, k config.KafkaConfig) chatrepo.EventPublisher {
	if !k.Enabled {
		logger.Log.Info("kafka disabled, chat events are not published")
		return chatrepo.NewNopEventPublisher()
	}

	writer, err := database.NewKafkaWriterWithRetry(ctx, database.KafkaConnection{
		Brokers:       k.Brokers,
		Topic:         k.Topic,
		RetryCount:    k.RetryCount,
		RetryInterval: time.Duration(k.RetryInterval) * time.Second,
	})
	if err != nil {
		logger.Log.Warn("kafka unavailable, chat events are not published", zap.Error(err))
		return chatrepo.NewNopEventPublisher()
	}
	return chatrepo.NewKafkaEventPublisher(writer)
}
