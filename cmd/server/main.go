// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"papermind-go/internal/config"
	"papermind-go/internal/handler"
	"papermind-go/internal/middleware"
	"papermind-go/internal/model"
	"papermind-go/internal/pipeline"
	"papermind-go/internal/repository"
	"papermind-go/internal/service"
	"papermind-go/pkg/agent"
	"papermind-go/pkg/database"
	"papermind-go/pkg/es"
	"papermind-go/pkg/kafka"
	"papermind-go/pkg/log"
	"papermind-go/pkg/storage"
	"papermind-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	startedAt := time.Now()

	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、MinIO、Elasticsearch 与 Kafka
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	if err := database.DB.AutoMigrate(&model.TempArtifact{}); err != nil {
		log.Fatal("迁移数据库表失败", err)
	}

	// 4. 初始化 Repository
	conversationRepo := repository.NewConversationRepository(database.RDB)
	artifactRepo := repository.NewArtifactRepository(database.DB)

	// 上次运行若有未释放的临时文档（比如进程被强杀），启动时提示运维排查
	if held, err := artifactRepo.FindHeldArtifacts(); err == nil && len(held) > 0 {
		log.Warnf("发现 %d 个未释放的临时文档记录，请检查对象存储是否有残留", len(held))
	}

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)
	agentClient := agent.NewClient(cfg.Agent)
	sessionService := service.NewSessionService(conversationRepo)
	artifactService := service.NewArtifactService(cfg.MinIO, artifactRepo)
	analyzeService := service.NewAnalyzeService(sessionService, artifactService, agentClient, conversationRepo, cfg.Agent)
	chatService := service.NewChatService(sessionService, conversationRepo)
	conversationService := service.NewConversationService(conversationRepo)
	searchService := service.NewSearchService(es.ESClient, cfg.Elasticsearch)

	// 6. 启动后台 Kafka 消费者，将入账消息写入检索索引
	indexer := pipeline.NewIndexer(cfg.Elasticsearch)
	go kafka.StartConsumer(cfg.Kafka, indexer)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "uptime": time.Since(startedAt).String()})
	})

	apiV1 := r.Group("/api/v1")
	apiV1.Use(middleware.AuthMiddleware(jwtManager))
	{
		apiV1.POST("/analyze", handler.NewAnalyzeHandler(analyzeService).Analyze)
		apiV1.POST("/chat", handler.NewChatHandler(chatService).Chat)

		sessions := apiV1.Group("/sessions")
		{
			conversationHandler := handler.NewConversationHandler(conversationService)
			sessions.GET("", conversationHandler.ListSessions)
			// search 路由要先于 :id 注册，避免被参数路由吞掉
			sessions.GET("/search", handler.NewSearchHandler(searchService).Search)
			sessions.GET("/:id", conversationHandler.GetTranscript)
			sessions.DELETE("/:id", conversationHandler.DeleteSession)
		}
	}

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
