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

	"cinematch-go/internal/config"
	"cinematch-go/internal/handler"
	"cinematch-go/internal/middleware"
	"cinematch-go/internal/model"
	"cinematch-go/internal/pipeline"
	"cinematch-go/internal/repository"
	"cinematch-go/internal/service"
	"cinematch-go/internal/vectorindex"
	"cinematch-go/pkg/database"
	"cinematch-go/pkg/es"
	"cinematch-go/pkg/kafka"
	"cinematch-go/pkg/log"
	"cinematch-go/pkg/omdb"
	"cinematch-go/pkg/storage"
	"cinematch-go/pkg/tasks"
	"cinematch-go/pkg/textnorm"
	"cinematch-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 配置校验：缺失外部凭证（如 OMDb API Key）必须在服务启动前快速失败
	if err := cfg.Validate(); err != nil {
		log.Fatal("配置校验失败", err)
	}

	// 4. 初始化数据库、Redis、MinIO、Elasticsearch、Kafka
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	if err := database.DB.AutoMigrate(&model.Movie{}); err != nil {
		log.Fatal("迁移 movies 表失败", err)
	}

	// 5. 初始化 Repository
	movieRepo := repository.NewMovieRepository(database.DB)
	metadataCacheRepo := repository.NewMetadataCacheRepository(
		database.RDB, time.Duration(cfg.OMDb.CacheTTLHours)*time.Hour)

	// 6. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	omdbClient := omdb.NewClient(cfg.OMDb)
	normalizer := textnorm.New()
	authService := service.NewAuthService(cfg.Admin, jwtManager)
	movieService := service.NewMovieService(movieRepo, cfg.Elasticsearch)
	recommendService := service.NewRecommendService(nil, metadataCacheRepo, omdbClient, cfg.Index.DefaultTopK)
	adminService := service.NewAdminService(recommendService)

	// 7. 初始化索引构建管道 (Processor)，构建完成后整体替换在线索引
	processor := pipeline.NewProcessor(
		normalizer,
		movieRepo,
		cfg.Dataset,
		cfg.Index,
		cfg.MinIO,
		cfg.Elasticsearch,
		recommendService.SwapIndex,
	)

	// 8. 启动后台 Kafka 消费者（索引重建任务）
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 8.1 启动时加载已有索引；没有可用索引则触发一次初始构建
	initCtx, cancelInit := context.WithCancel(context.Background())
	defer cancelInit()
	go initIndex(initCtx, processor, recommendService, cfg.Index.Dir)

	// 9. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 10. 初始化 Handler 并注册路由
	authHandler := handler.NewAuthHandler(authService)
	movieHandler := handler.NewMovieHandler(movieService)
	recommendHandler := handler.NewRecommendHandler(recommendService)
	adminHandler := handler.NewAdminHandler(adminService)
	streamHandler := handler.NewStreamHandler(recommendService)

	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组（管理员）
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refreshToken", authHandler.RefreshToken)
		}

		// Movie 路由组（标题选择器数据源，公开访问）
		movies := apiV1.Group("/movies")
		{
			movies.GET("/titles", movieHandler.ListTitles)
			movies.GET("/search", movieHandler.SearchTitles)
		}

		// Recommend 路由（公开访问）
		apiV1.GET("/recommend", recommendHandler.Recommend)

		// Admin 路由组，需要管理员 JWT
		admin := apiV1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(jwtManager))
		{
			admin.POST("/index/rebuild", adminHandler.TriggerRebuild)
			admin.GET("/index/status", adminHandler.IndexStatus)
		}
	}

	// WebSocket 流式推荐
	r.GET("/ws/recommend", streamHandler.Handle)

	// 启动 HTTP 服务器并实现优雅停机
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

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}

// initIndex 在启动时恢复在线索引：
// 优先加载磁盘上已有的索引产物；缺失或损坏时直接执行一次初始构建。
func initIndex(ctx context.Context, processor *pipeline.Processor, recommendService service.RecommendService, indexDir string) {
	if vectorindex.Exists(indexDir) {
		idx, err := vectorindex.Load(indexDir)
		if err == nil {
			recommendService.SwapIndex(idx)
			log.Infof("initIndex: 已加载磁盘索引, 行数: %d", idx.Size())
			return
		}
		log.Warnf("initIndex: 加载磁盘索引失败，将重新构建: %v", err)
	} else {
		log.Info("initIndex: 未发现索引产物，执行初始构建")
	}

	task := tasks.IndexBuildTask{
		TaskID:      fmt.Sprintf("bootstrap-%d", time.Now().UnixNano()),
		RequestedBy: "startup",
		RequestedAt: time.Now().Unix(),
	}
	if err := processor.Process(ctx, task); err != nil {
		// 索引缺失且构建失败属于致命构建错误：没有语料可服务
		log.Fatal("initIndex: 初始索引构建失败", err)
	}
}
