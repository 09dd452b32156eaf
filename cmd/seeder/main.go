package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/forum_service/config"
	"github.com/Xushengqwer/forum_service/dependencies"
	"github.com/Xushengqwer/forum_service/mq/producer"
	"github.com/Xushengqwer/forum_service/repo/mysql"
	forumService "github.com/Xushengqwer/forum_service/service"
)

func main() {
	// --- 0. 解析命令行参数 ---
	var configFile string
	var numUsers int
	var numPosts int
	var commentsPerPost int
	flag.StringVar(&configFile, "config", "config/config.development.yaml", "配置文件路径")
	flag.IntVar(&numUsers, "users", 10, "要生成的用户数量 (默认: 10)")
	flag.IntVar(&numPosts, "posts", 50, "要生成的帖子数量 (默认: 50)")
	flag.IntVar(&commentsPerPost, "comments", 5, "每个帖子的评论数量上限 (默认: 5)")
	flag.Parse()

	absConfigFile, err := filepath.Abs(configFile)
	if err != nil {
		fmt.Printf("无法获取配置文件的绝对路径 '%s': %v\n", configFile, err)
		absConfigFile = configFile
	}
	fmt.Printf("准备使用配置文件 '%s' 生成 %d 个用户、%d 条帖子...\n", absConfigFile, numUsers, numPosts)

	if numUsers <= 0 || numPosts <= 0 || commentsPerPost < 0 {
		fmt.Println("错误: users/posts 必须大于 0，comments 不能为负")
		os.Exit(1)
	}

	// --- 1. 加载配置 ---
	var cfg appConfig.ForumConfig
	if err := core.LoadConfig(absConfigFile, &cfg); err != nil {
		fmt.Printf("加载配置失败 (%s): %v\n", absConfigFile, err)
		os.Exit(1)
	}
	fmt.Println("配置加载成功。")

	// --- 2. 初始化日志记录器 ---
	logger, loggerErr := core.NewZapLogger(cfg.ZapConfig)
	if loggerErr != nil {
		fmt.Printf("初始化 ZapLogger 失败: %v\n", loggerErr)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Logger().Sync()
	}()
	logger.Info("Logger 初始化成功 (Seeder)")

	// --- 3. 初始化 MySQL 数据库连接 ---
	db, dbErr := dependencies.InitMySQL(&cfg, logger)
	if dbErr != nil {
		logger.Fatal("初始化 MySQL 失败 (Seeder)", zap.Error(dbErr))
	}
	logger.Info("MySQL 连接成功 (Seeder)")

	// --- 4. 初始化上传网关客户端与 Kafka 生产者 ---
	// 填充数据不携带附件，上传客户端只为满足服务层依赖
	uploadClient, uploadErr := dependencies.InitUploadClient(&cfg.UploadConfig, logger)
	if uploadErr != nil {
		logger.Fatal("初始化上传网关客户端失败 (Seeder)", zap.Error(uploadErr))
	}
	kafkaProducer := producer.NewKafkaProducer(&cfg.KafkaConfig, logger)
	logger.Info("Kafka 生产者已初始化 (Seeder)")

	// --- 5. 初始化 Repositories 与 Services ---
	postRepo := mysql.NewPostRepository(db, logger)
	commentRepo := mysql.NewCommentRepository(db, logger)
	profileRepo := mysql.NewUserProfileRepository(db, logger)

	postSvc := forumService.NewPostService(db, postRepo, profileRepo, uploadClient, kafkaProducer, logger)
	commentSvc := forumService.NewCommentService(db, postRepo, commentRepo, profileRepo, uploadClient, kafkaProducer, logger)
	logger.Info("Services 已初始化 (Seeder)")

	// --- 6. 执行数据填充 ---
	ctx := context.Background()
	startTime := time.Now()

	Seed(ctx, db, profileRepo, postSvc, commentSvc, logger, numUsers, numPosts, commentsPerPost)

	fmt.Printf("数据填充完成！总耗时: %v\n", time.Since(startTime))
	logger.Info("Seeder main: 所有任务完成，准备退出。")
}
