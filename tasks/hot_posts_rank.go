package tasks

import (
	"context"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Xushengqwer/forum_service/constant"
	"github.com/Xushengqwer/forum_service/repo/mysql"
	"github.com/Xushengqwer/forum_service/repo/redis"
)

// HotPostsRankTask 负责定时重建 Redis 中的热帖排行榜。
// 榜单数据源是 MySQL 中的实时热度分值，重建失败只影响榜单新鲜度，
// 读侧会自动回源数据库。
type HotPostsRankTask struct {
	postRepo     mysql.PostRepository
	hotPostsRepo redis.HotPostsRepository
	cron         *cron.Cron
	logger       *core.ZapLogger
}

// NewHotPostsRankTask 初始化并启动热帖榜单的定时刷新任务。
// 启动时先同步刷新一次，避免服务冷启动后榜单长期为空。
func NewHotPostsRankTask(postRepo mysql.PostRepository, hotPostsRepo redis.HotPostsRepository, logger *core.ZapLogger) *HotPostsRankTask {
	cronV3 := cron.New()

	task := &HotPostsRankTask{
		postRepo:     postRepo,
		hotPostsRepo: hotPostsRepo,
		cron:         cronV3,
		logger:       logger,
	}
	task.startCronJob()
	return task
}

// startCronJob 配置并启动 cron 作业。
func (t *HotPostsRankTask) startCronJob() {
	schedule := constant.HotPostsRankCronSpec
	t.logger.Info("准备启动热帖榜单刷新定时任务", zap.String("schedule", schedule))

	entryID, err := t.cron.AddFunc(schedule, func() {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		t.refreshRank(ctx)

		t.logger.Info("热帖榜单刷新任务执行完毕", zap.Duration("duration", time.Since(startTime)))
	})
	if err != nil {
		t.logger.Fatal("添加热帖榜单刷新 cron 作业失败", zap.Error(err), zap.String("schedule", schedule))
	}

	t.cron.Start()
	t.logger.Info("热帖榜单刷新定时任务已启动", zap.Uint("cronEntryID", uint(entryID)))

	// 冷启动补一次
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	t.refreshRank(ctx)
}

// refreshRank 从 MySQL 取热度前 N 的帖子并整体重建 Redis 榜单。
func (t *HotPostsRankTask) refreshRank(ctx context.Context) {
	posts, err := t.postRepo.GetTopPostsByTrend(ctx, constant.HotPostsRankSize)
	if err != nil {
		t.logger.Error("查询热度榜帖子失败，本轮榜单保持不变", zap.Error(err))
		return
	}

	if err := t.hotPostsRepo.RefreshRank(ctx, posts); err != nil {
		t.logger.Error("重建热帖榜单失败，本轮榜单保持不变", zap.Error(err))
		return
	}
}

// Stop 停止定时任务并等待正在执行的作业完成。
func (t *HotPostsRankTask) Stop() {
	t.logger.Info("正在停止热帖榜单刷新定时任务...")
	stopCtx := t.cron.Stop()
	<-stopCtx.Done()
	t.logger.Info("热帖榜单刷新定时任务已停止")
}
