package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	appConfig "github.com/Xushengqwer/forum_service/config"
	"github.com/Xushengqwer/forum_service/constant"
	"github.com/Xushengqwer/forum_service/controller"
	"github.com/Xushengqwer/forum_service/dependencies"
	_ "github.com/Xushengqwer/forum_service/docs" // swag 生成的接口文档
	"github.com/Xushengqwer/forum_service/mq/consumer"
	"github.com/Xushengqwer/forum_service/mq/producer"
	"github.com/Xushengqwer/forum_service/repo/mysql"
	redisrepo "github.com/Xushengqwer/forum_service/repo/redis"
	"github.com/Xushengqwer/forum_service/router"
	"github.com/Xushengqwer/forum_service/service"
	"github.com/Xushengqwer/forum_service/tasks"

	sharedCore "github.com/Xushengqwer/go-common/core"
	sharedTracing "github.com/Xushengqwer/go-common/core/tracing"

	"go.uber.org/zap"
)

// @title           Forum Service API
// @version         1.0
// @description     论坛服务，提供帖子、评论、用户资料镜像与 AI 评论集成功能。
// @termsOfService  http://swagger.io/terms/

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8083

// @schemes http https
func main() {
	// --- 配置和基础设置 ---
	var configFile string
	flag.StringVar(&configFile, "config", "config/config.development.yaml", "Path to configuration file")
	flag.Parse()

	// 1. 加载配置
	var cfg appConfig.ForumConfig
	if err := sharedCore.LoadConfig(configFile, &cfg); err != nil {
		log.Fatalf("FATAL: 加载配置失败 (%s): %v", configFile, err)
	}

	configBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		log.Fatalf("无法序列化配置以进行打印: %v", err)
	}
	log.Printf("✅ 配置加载成功！最终生效的配置如下:\n%s\n", string(configBytes))

	// 2. 初始化 Logger
	logger, loggerErr := sharedCore.NewZapLogger(cfg.ZapConfig)
	if loggerErr != nil {
		log.Fatalf("FATAL: 初始化 ZapLogger 失败: %v", loggerErr)
	}
	defer func() {
		logger.Info("正在同步日志...")
		if err := logger.Logger().Sync(); err != nil {
			log.Printf("WARN: ZapLogger Sync 失败: %v\n", err)
		}
	}()
	logger.Info("Logger 初始化成功")

	// 3. 初始化 TracerProvider
	if cfg.TracerConfig.Enabled {
		tracerShutdown, err := sharedTracing.InitTracerProvider(
			constant.ServiceName,
			constant.ServiceVersion,
			cfg.TracerConfig,
		)
		if err != nil {
			logger.Fatal("初始化 TracerProvider 失败", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			logger.Info("正在关闭 TracerProvider...")
			if err := tracerShutdown(ctx); err != nil {
				logger.Error("关闭 TracerProvider 失败", zap.Error(err))
			} else {
				logger.Info("TracerProvider 已成功关闭")
			}
		}()
		logger.Info("分布式追踪已初始化")
	} else {
		logger.Info("分布式追踪已禁用")
	}

	// --- 4. 初始化核心依赖 ---
	// 4.1 数据库 (MySQL)
	db, dbErr := dependencies.InitMySQL(&cfg, logger)
	if dbErr != nil {
		logger.Fatal("初始化 MySQL 数据库失败", zap.Error(dbErr))
	}
	logger.Info("MySQL 数据库连接成功")

	// 4.2 Redis
	rdb, redisErr := dependencies.InitRedis(&cfg.RedisConfig, logger)
	if redisErr != nil {
		logger.Fatal("初始化 Redis 失败", zap.Error(redisErr))
	}
	logger.Info("Redis 连接成功")

	// 4.3 上传网关客户端
	uploadClient, uploadErr := dependencies.InitUploadClient(&cfg.UploadConfig, logger)
	if uploadErr != nil {
		logger.Fatal("初始化上传网关客户端失败", zap.Error(uploadErr))
	}
	logger.Info("上传网关客户端初始化成功")

	// 4.4 Kafka 生产者 (Writer 惰性创建，未配置 brokers 时发布会失败并记录日志)
	kafkaProducer := producer.NewKafkaProducer(&cfg.KafkaConfig, logger)
	logger.Info("Kafka 生产者已初始化")

	// --- 5. 初始化数据仓库层 (Repositories) ---
	postRepo := mysql.NewPostRepository(db, logger)
	commentRepo := mysql.NewCommentRepository(db, logger)
	profileRepo := mysql.NewUserProfileRepository(db, logger)
	logger.Debug("MySQL Repositories 初始化完成")

	hotPostsRepo := redisrepo.NewHotPostsRepository(rdb, logger)
	logger.Debug("Redis Repositories 初始化完成")

	// --- 6. 初始化服务层 (Services) ---
	postService := service.NewPostService(db, postRepo, profileRepo, uploadClient, kafkaProducer, logger)
	commentService := service.NewCommentService(db, postRepo, commentRepo, profileRepo, uploadClient, kafkaProducer, logger)
	profileService := service.NewUserProfileService(profileRepo, logger)
	hotPostService := service.NewHotPostService(postRepo, hotPostsRepo, logger)
	logger.Debug("Services 初始化完成")

	// --- 7. 初始化控制器层 (Controllers) ---
	postController := controller.NewPostController(postService)
	commentController := controller.NewCommentController(commentService)
	hotPostController := controller.NewHotPostController(hotPostService)
	userProfileController := controller.NewUserProfileController(profileService)
	logger.Debug("Controllers 初始化完成")

	// --- 8. 初始化 Kafka 消费者 ---
	var consumers []*consumer.Consumer
	var consumerWg sync.WaitGroup
	consumerCtx, consumerCancel := context.WithCancel(context.Background())

	if len(cfg.KafkaConfig.Brokers) > 0 {
		if cfg.KafkaConfig.ConsumerGroupID == "" {
			logger.Warn("Kafka ConsumerGroupID 未在配置中设置，将使用默认值 'forum_service_group'")
			cfg.KafkaConfig.ConsumerGroupID = "forum_service_group"
		}

		// --- 8.1 AI 评论响应队列消费者 ---
		aiResponseQueue := cfg.KafkaConfig.Queues.AICommentResponse
		if aiResponseQueue != "" {
			aiHandler := consumer.NewAICommentHandler(db, postRepo, commentRepo, profileRepo, logger)
			aiRouter := consumer.NewRouter(logger)
			aiRouter.Register(constant.EventTypeAICommentCreated, aiHandler.HandleAICommentCreated)

			aiConsumer, err := consumer.NewConsumer(&cfg.KafkaConfig, aiResponseQueue, aiRouter, logger)
			if err != nil {
				logger.Fatal("初始化 AI 评论响应消费者失败", zap.Error(err))
			}
			consumers = append(consumers, aiConsumer)
			logger.Info("AI 评论响应消费者已准备就绪", zap.String("queue", aiResponseQueue))
		} else {
			logger.Warn("AI 评论响应队列未配置，跳过对应消费者创建")
		}

		// --- 8.2 用户资料同步队列消费者 ---
		userSyncQueue := cfg.KafkaConfig.Queues.UserInfoSync
		if userSyncQueue != "" {
			userSyncHandler := consumer.NewUserSyncHandler(profileRepo, logger)
			userSyncRouter := consumer.NewRouter(logger)
			userSyncRouter.Register(constant.EventTypeUserCreated, userSyncHandler.HandleUserCreated)
			userSyncRouter.Register(constant.EventTypeUserUpdated, userSyncHandler.HandleUserUpdated)

			userSyncConsumer, err := consumer.NewConsumer(&cfg.KafkaConfig, userSyncQueue, userSyncRouter, logger)
			if err != nil {
				logger.Fatal("初始化用户资料同步消费者失败", zap.Error(err))
			}
			consumers = append(consumers, userSyncConsumer)
			logger.Info("用户资料同步消费者已准备就绪", zap.String("queue", userSyncQueue))
		} else {
			logger.Warn("用户资料同步队列未配置，跳过对应消费者创建")
		}

		// --- 8.3 启动所有已初始化的消费者 ---
		if len(consumers) > 0 {
			logger.Info(fmt.Sprintf("准备启动 %d 个 Kafka 消费者...", len(consumers)))
			for _, c := range consumers {
				consumerWg.Add(1)
				go func(cons *consumer.Consumer) {
					defer consumerWg.Done()
					cons.Start(consumerCtx)
				}(c)
			}
		} else {
			logger.Warn("没有配置任何有效的 Kafka 消费者。")
		}
	} else {
		logger.Warn("Kafka Brokers 未配置，跳过所有 Kafka 消费者初始化。")
	}

	// --- 9. 初始化定时任务 ---
	rankTask := tasks.NewHotPostsRankTask(postRepo, hotPostsRepo, logger)
	logger.Info("后台定时任务已初始化并启动")

	// --- 10. 设置 Gin 路由器 ---
	ginRouter := router.SetupRouter(logger, &cfg, postController, commentController, hotPostController, userProfileController)
	logger.Info("Gin 路由器已设置")

	// --- 11. 启动 HTTP 服务器 ---
	serverAddr := fmt.Sprintf(":%s", cfg.ServerConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: ginRouter,
	}

	go func() {
		logger.Info("HTTP 服务器开始监听", zap.String("address", serverAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器启动失败", zap.Error(err))
		}
		logger.Info("HTTP 服务器已停止监听")
	}()

	// --- 12. 实现优雅关停 ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	logger.Info("收到关停信号，开始优雅退出...", zap.String("signal", receivedSignal.String()))

	shutdownCtx, shutdownCancelFunc := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancelFunc()

	// a. 停止 HTTP 服务器 (允许处理完当前请求)
	logger.Info("正在关闭 HTTP 服务器...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭 HTTP 服务器失败", zap.Error(err))
	} else {
		logger.Info("HTTP 服务器已成功关闭")
	}

	// b. 关闭 Kafka 消费者
	logger.Info("正在发送停止信号给 Kafka 消费者...")
	consumerCancel()
	logger.Info("等待 Kafka 消费者停止...")
	consumerWg.Wait()

	for _, c := range consumers {
		if err := c.Close(); err != nil {
			logger.Error("关闭某个 Kafka 消费者时出错", zap.Error(err))
		}
	}
	logger.Info("所有 Kafka 消费者已停止。")

	// c. 关闭 Kafka 生产者
	if err := kafkaProducer.Close(); err != nil {
		logger.Error("关闭 Kafka 生产者时出错", zap.Error(err))
	}

	// d. 停止定时任务调度器 (等待任务结束)
	rankTask.Stop()
	logger.Info("所有定时任务已停止")

	logger.Info("服务已成功关闭")
}
