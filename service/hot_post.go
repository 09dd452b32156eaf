package service

import (
	"context"
	"fmt"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/forum_service/constant"
	"github.com/Xushengqwer/forum_service/models/vo"
	"github.com/Xushengqwer/forum_service/repo/mysql"
	"github.com/Xushengqwer/forum_service/repo/redis"
)

// HotPostService 定义了热帖排行榜的查询接口。
type HotPostService interface {
	// GetHotPosts 按热度降序返回榜单帖子。
	// - 优先读 Redis 榜单缓存，缓存为空或不可用时直接回源 MySQL。
	GetHotPosts(ctx context.Context, limit int) ([]*vo.PostVO, error)
}

// hotPostService 是 HotPostService 接口的具体实现。
type hotPostService struct {
	postRepo     mysql.PostRepository
	hotPostsRepo redis.HotPostsRepository
	logger       *core.ZapLogger
}

// NewHotPostService 是 hotPostService 的构造函数。
func NewHotPostService(postRepo mysql.PostRepository, hotPostsRepo redis.HotPostsRepository, logger *core.ZapLogger) HotPostService {
	return &hotPostService{
		postRepo:     postRepo,
		hotPostsRepo: hotPostsRepo,
		logger:       logger,
	}
}

// GetHotPosts 读榜单缓存，miss 时回源数据库。
func (s *hotPostService) GetHotPosts(ctx context.Context, limit int) ([]*vo.PostVO, error) {
	if limit <= 0 || limit > constant.HotPostsRankSize {
		limit = constant.HotPostsRankSize
	}

	ids, err := s.hotPostsRepo.GetTopPostIDs(ctx, limit)
	if err != nil {
		// 缓存故障降级为数据库直查，不向调用方透出
		s.logger.Warn("读取热帖榜单缓存失败，回源数据库", zap.Error(err))
		ids = nil
	}

	if len(ids) > 0 {
		posts, err := s.postRepo.GetPostsByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("按榜单批量查询帖子失败: %w", err)
		}
		return vo.MapPostsToPostVOs(posts), nil
	}

	posts, err := s.postRepo.GetTopPostsByTrend(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("查询热帖失败: %w", err)
	}
	return vo.MapPostsToPostVOs(posts), nil
}
