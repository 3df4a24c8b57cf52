package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-app/config"
	"social-app/internal/handler"
	"social-app/internal/model"
	"social-app/internal/repository"
	"social-app/internal/service"
	dbPkg "social-app/pkg/db"
	"social-app/pkg/jwt"
	"social-app/pkg/logger"
	redisPkg "social-app/pkg/redis"
	"social-app/pkg/response"
	"social-app/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== 社交消息核心服务启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_host", cfg.Database.Host),
		zap.Int("database_port", cfg.Database.Port),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化数据库连接
	if _, err := dbPkg.InitDB(cfg.Database); err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(
		&model.User{},
		&model.FriendRequest{},
		&model.FriendEdge{},
		&model.Message{},
	); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 3.2 初始化Redis（仅角标缓存与离线事件，失败不阻止启动）
	if err := redisPkg.InitRedis(cfg.Redis); err != nil {
		log.Warn("Redis连接失败，角标缓存与离线推送降级", zap.Error(err))
	} else {
		defer redisPkg.Close()
		log.Info("Redis连接成功")
	}

	// 3.3 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	db := dbPkg.GetDB()
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	socialSvc := service.NewSocialService(friendRepo, userRepo)
	messageSvc := service.NewMessageService(messageRepo, userRepo)
	friendHandler := handler.NewFriendHandler(socialSvc)
	messageHandler := handler.NewMessageHandler(messageSvc)
	userHandler := handler.NewUserHandler(socialSvc)

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()
	router.Use(logger.LoggerMiddleware())
	router.Use(logger.ErrorLoggerMiddleware())

	// 6. 健康检查
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := dbPkg.HealthCheck(); err != nil {
			status = "db-down"
		}
		redisStatus := "ok"
		if err := redisPkg.HealthCheck(); err != nil {
			redisStatus = "down"
		}
		response.Success(c, gin.H{
			"status": status,
			"redis":  redisStatus,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	// 6.1 业务路由（全部需要认证）
	v1 := router.Group("/api/v1")
	v1.Use(requestTimeout(cfg.Server.RequestTimeout))
	v1.Use(jwtSvc.AuthMiddleware())
	{
		friends := v1.Group("/friends")
		{
			friends.POST("/request", friendHandler.SendRequest)   // 发起好友请求
			friends.POST("/respond", friendHandler.Respond)       // 接受/拒绝请求
			friends.GET("", friendHandler.ListFriends)            // 好友列表
			friends.GET("/requests", friendHandler.ListRequests)  // 待处理请求
			friends.GET("/status/:user_id", friendHandler.Status) // 关系状态
		}

		users := v1.Group("/users")
		{
			users.GET("/search", userHandler.Search)    // 搜索用户
			users.GET("/:user_id", userHandler.GetUser) // 用户公开信息
		}

		messages := v1.Group("/messages")
		{
			messages.POST("", messageHandler.SendMessage)             // 发送消息
			messages.GET("/unread/count", messageHandler.GetUnreadCount) // 未读总数
			messages.GET("/:user_id", messageHandler.GetThread)       // 消息线程
			messages.POST("/:user_id/read", messageHandler.MarkRead)  // 标记已读
		}

		v1.GET("/conversations", messageHandler.ListConversations) // 对话列表
	}

	// WebSocket路由
	router.GET("/ws", websocket.WsHandler(jwtSvc, cfg.WebSocket))

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// requestTimeout 为每个请求设定执行时间预算
// 超时后存储访问随context取消，错误以Transient类别返回给调用方
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
