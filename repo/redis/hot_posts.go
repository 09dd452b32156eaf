package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Xushengqwer/go-common/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Xushengqwer/forum_service/constant"
	"github.com/Xushengqwer/forum_service/models/entities"
)

// HotPostsRepository 定义了热帖排行榜在 Redis 中的缓存操作接口。
// 榜单以 ZSet 存储，member 为帖子 ID，score 为热度分值。
type HotPostsRepository interface {
	// RefreshRank 以传入的帖子集合整体重建排行榜。
	// - 先删后写在同一 pipeline 中执行，读侧最多短暂读到空榜，不会读到新旧混合的榜单。
	RefreshRank(ctx context.Context, posts []*entities.Post) error

	// GetTopPostIDs 按热度降序取前 limit 个帖子 ID。
	// - 榜单为空时返回空切片，由调用方决定是否回源数据库。
	GetTopPostIDs(ctx context.Context, limit int) ([]uint64, error)
}

// hotPostsRepository 是 HotPostsRepository 接口的具体实现。
type hotPostsRepository struct {
	client *redis.Client
	logger *core.ZapLogger
}

// NewHotPostsRepository 是 hotPostsRepository 的构造函数。
func NewHotPostsRepository(client *redis.Client, logger *core.ZapLogger) HotPostsRepository {
	return &hotPostsRepository{
		client: client,
		logger: logger,
	}
}

// RefreshRank 整体重建热帖榜单。
func (r *hotPostsRepository) RefreshRank(ctx context.Context, posts []*entities.Post) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, constant.HotPostsRankKey)

	if len(posts) > 0 {
		members := make([]redis.Z, 0, len(posts))
		for _, post := range posts {
			members = append(members, redis.Z{
				Score:  float64(post.TrendScore()),
				Member: strconv.FormatUint(post.ID, 10),
			})
		}
		pipe.ZAdd(ctx, constant.HotPostsRankKey, members...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("重建热帖榜单失败",
			zap.String("key", constant.HotPostsRankKey),
			zap.Int("postCount", len(posts)),
			zap.Error(err),
		)
		return fmt.Errorf("重建热帖榜单失败: %w", err)
	}

	r.logger.Info("热帖榜单已重建",
		zap.String("key", constant.HotPostsRankKey),
		zap.Int("postCount", len(posts)),
	)
	return nil
}

// GetTopPostIDs 按热度降序读取榜单前 limit 个帖子 ID。
func (r *hotPostsRepository) GetTopPostIDs(ctx context.Context, limit int) ([]uint64, error) {
	if limit <= 0 {
		limit = constant.HotPostsRankSize
	}

	members, err := r.client.ZRevRange(ctx, constant.HotPostsRankKey, 0, int64(limit-1)).Result()
	if err != nil {
		r.logger.Error("读取热帖榜单失败", zap.String("key", constant.HotPostsRankKey), zap.Error(err))
		return nil, fmt.Errorf("读取热帖榜单失败: %w", err)
	}

	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		id, parseErr := strconv.ParseUint(m, 10, 64)
		if parseErr != nil {
			r.logger.Warn("热帖榜单包含非法成员，已跳过",
				zap.String("member", m),
				zap.Error(parseErr),
			)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
