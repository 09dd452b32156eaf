package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/forum_service/constant"
	"github.com/Xushengqwer/forum_service/models/entities"
	"github.com/Xushengqwer/forum_service/models/enums"
)

// PostQuery 封装帖子列表查询的全部条件。
type PostQuery struct {
	// Search 可选，按标题模糊匹配。
	Search string
	// RoleFilter 可选，按作者角色筛选；nil 表示不筛选。
	RoleFilter *enums.UserRole
	// SortByTrend 为 true 时按热度降序，否则按创建时间降序。
	SortByTrend bool
	// Page 从 1 开始。
	Page int
	// PageSize 每页数量。
	PageSize int
}

// PostRepository 定义了帖子数据在 MySQL 中的持久化操作接口。
// 接口的设计旨在将数据访问逻辑与业务逻辑（服务层）解耦。
type PostRepository interface {
	// CreatePost 持久化一个新的帖子记录。
	// - 这是帖子生命周期的起点，对应用户发布帖子的操作。
	// - db 参数允许调用方传入事务句柄；传 nil 时使用默认连接。
	CreatePost(ctx context.Context, db *gorm.DB, post *entities.Post) error

	// GetPostByID 根据单个 ID 检索帖子信息，并预加载作者资料。
	// - 如果未找到帖子，返回 commonerrors.ErrRepoNotFound。
	GetPostByID(ctx context.Context, id uint64) (*entities.Post, error)

	// ListPosts 分页查询帖子列表，支持关键词搜索、作者角色筛选与两种排序。
	// - 返回帖子列表与符合条件的总记录数。
	ListPosts(ctx context.Context, query *PostQuery) ([]*entities.Post, int64, error)

	// UpdatePost 更新指定帖子的标题、正文与附件列表。
	UpdatePost(ctx context.Context, post *entities.Post) error

	// DeletePost 对指定帖子执行物理删除。
	// - 帖子删除是不可恢复的硬删除，附属评论由调用方在同一事务内清理。
	// - 未删除任何行时返回 commonerrors.ErrRepoNotFound。
	DeletePost(ctx context.Context, db *gorm.DB, id uint64) error

	// DeleteCommentsByPostID 删除指定帖子下的全部评论记录（物理删除）。
	// - 与 DeletePost 配合在同一事务内使用，保证删帖不留孤儿评论。
	DeleteCommentsByPostID(ctx context.Context, db *gorm.DB, postID uint64) (int64, error)

	// IncrementViewCount 以单条 UPDATE 原子地将浏览量加一。
	// - 并发安全依赖数据库的行级原子更新，而非读改写。
	IncrementViewCount(ctx context.Context, postID uint64) error

	// IncrementCommentCount 以单条 UPDATE 原子地将评论计数加一。
	IncrementCommentCount(ctx context.Context, db *gorm.DB, postID uint64) error

	// DecrementCommentCount 以单条 UPDATE 原子地将评论计数减一，且不允许减至负数。
	DecrementCommentCount(ctx context.Context, db *gorm.DB, postID uint64) error

	// GetTopPostsByTrend 按热度分值降序取前 limit 条帖子，供热榜任务刷新缓存。
	GetTopPostsByTrend(ctx context.Context, limit int) ([]*entities.Post, error)

	// GetPostsByIDs 按 ID 集合批量取帖子并预加载作者，结果按入参顺序排列。
	GetPostsByIDs(ctx context.Context, ids []uint64) ([]*entities.Post, error)
}

// postRepository 是 PostRepository 接口针对 MySQL 的具体实现。
type postRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewPostRepository 是 postRepository 的构造函数。
func NewPostRepository(db *gorm.DB, logger *core.ZapLogger) PostRepository {
	return &postRepository{
		db:     db,
		logger: logger,
	}
}

// trendScoreExpr 是热度排序使用的 SQL 表达式，权重与 entities.Post.TrendScore 保持一致。
const trendScoreExpr = "(view_count + comment_count * 10)"

// CreatePost 实现帖子的数据库插入操作。
func (r *postRepository) CreatePost(ctx context.Context, db *gorm.DB, post *entities.Post) error {
	if db == nil {
		db = r.db
	}
	if err := db.WithContext(ctx).Create(post).Error; err != nil {
		r.logger.Error("创建帖子失败",
			zap.Uint64("userID", post.UserID),
			zap.String("title", post.Title),
			zap.Error(err),
		)
		return fmt.Errorf("创建帖子失败: %w", err)
	}
	return nil
}

// GetPostByID 根据 ID 查询帖子并预加载作者镜像。
func (r *postRepository) GetPostByID(ctx context.Context, id uint64) (*entities.Post, error) {
	var post entities.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("查询帖子失败", zap.Uint64("postID", id), zap.Error(err))
		return nil, fmt.Errorf("查询帖子(ID: %d)失败: %w", id, err)
	}
	return &post, nil
}

// ListPosts 分页查询帖子列表。
func (r *postRepository) ListPosts(ctx context.Context, query *PostQuery) ([]*entities.Post, int64, error) {
	db := r.db.WithContext(ctx).Model(&entities.Post{})

	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		db = db.Where("posts.title LIKE ?", pattern)
	}
	if query.RoleFilter != nil {
		db = db.Joins("JOIN user_profiles ON user_profiles.user_id = posts.user_id").
			Where("user_profiles.role = ?", *query.RoleFilter)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		r.logger.Error("统计帖子总数失败", zap.Error(err))
		return nil, 0, fmt.Errorf("统计帖子总数失败: %w", err)
	}

	// 同分时以 id 兜底，保证分页顺序稳定
	if query.SortByTrend {
		db = db.Order(trendScoreExpr + " DESC, posts.id DESC")
	} else {
		db = db.Order("posts.created_at DESC, posts.id DESC")
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = constant.DefaultPageSize
	}

	var posts []*entities.Post
	err := db.Preload("Author").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		r.logger.Error("查询帖子列表失败", zap.Error(err))
		return nil, 0, fmt.Errorf("查询帖子列表失败: %w", err)
	}
	return posts, total, nil
}

// UpdatePost 保存帖子的可编辑字段。
func (r *postRepository) UpdatePost(ctx context.Context, post *entities.Post) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"title":      post.Title,
			"content":    post.Content,
			"file_paths": post.FilePaths,
		}).Error
	if err != nil {
		r.logger.Error("更新帖子失败", zap.Uint64("postID", post.ID), zap.Error(err))
		return fmt.Errorf("更新帖子(ID: %d)失败: %w", post.ID, err)
	}
	return nil
}

// DeletePost 物理删除帖子。
func (r *postRepository) DeletePost(ctx context.Context, db *gorm.DB, id uint64) error {
	if db == nil {
		db = r.db
	}
	result := db.WithContext(ctx).Delete(&entities.Post{}, id)
	if result.Error != nil {
		r.logger.Error("删除帖子失败", zap.Uint64("postID", id), zap.Error(result.Error))
		return fmt.Errorf("删除帖子(ID: %d)失败: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

// DeleteCommentsByPostID 物理删除帖子下的全部评论。
func (r *postRepository) DeleteCommentsByPostID(ctx context.Context, db *gorm.DB, postID uint64) (int64, error) {
	if db == nil {
		db = r.db
	}
	result := db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&entities.Comment{})
	if result.Error != nil {
		r.logger.Error("删除帖子附属评论失败", zap.Uint64("postID", postID), zap.Error(result.Error))
		return 0, fmt.Errorf("删除帖子(ID: %d)附属评论失败: %w", postID, result.Error)
	}
	return result.RowsAffected, nil
}

// IncrementViewCount 原子递增浏览量。
func (r *postRepository) IncrementViewCount(ctx context.Context, postID uint64) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("id = ?", postID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	if err != nil {
		r.logger.Error("递增帖子浏览量失败", zap.Uint64("postID", postID), zap.Error(err))
		return fmt.Errorf("递增帖子(ID: %d)浏览量失败: %w", postID, err)
	}
	return nil
}

// IncrementCommentCount 原子递增评论计数。
func (r *postRepository) IncrementCommentCount(ctx context.Context, db *gorm.DB, postID uint64) error {
	if db == nil {
		db = r.db
	}
	err := db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("id = ?", postID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	if err != nil {
		r.logger.Error("递增帖子评论计数失败", zap.Uint64("postID", postID), zap.Error(err))
		return fmt.Errorf("递增帖子(ID: %d)评论计数失败: %w", postID, err)
	}
	return nil
}

// DecrementCommentCount 原子递减评论计数，计数为 0 时不再扣减。
func (r *postRepository) DecrementCommentCount(ctx context.Context, db *gorm.DB, postID uint64) error {
	if db == nil {
		db = r.db
	}
	err := db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("id = ? AND comment_count > 0", postID).
		UpdateColumn("comment_count", gorm.Expr("comment_count - ?", 1)).Error
	if err != nil {
		r.logger.Error("递减帖子评论计数失败", zap.Uint64("postID", postID), zap.Error(err))
		return fmt.Errorf("递减帖子(ID: %d)评论计数失败: %w", postID, err)
	}
	return nil
}

// GetTopPostsByTrend 取热度前 limit 的帖子（只取排序所需字段即可，这里直接取整行便于复用 VO 映射）。
func (r *postRepository) GetTopPostsByTrend(ctx context.Context, limit int) ([]*entities.Post, error) {
	var posts []*entities.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order(trendScoreExpr + " DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		r.logger.Error("查询热度榜帖子失败", zap.Int("limit", limit), zap.Error(err))
		return nil, fmt.Errorf("查询热度榜帖子失败: %w", err)
	}
	return posts, nil
}

// GetPostsByIDs 按 ID 批量查询并保持入参顺序。
func (r *postRepository) GetPostsByIDs(ctx context.Context, ids []uint64) ([]*entities.Post, error) {
	if len(ids) == 0 {
		return []*entities.Post{}, nil
	}

	var posts []*entities.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id IN ?", ids).
		Find(&posts).Error
	if err != nil {
		r.logger.Error("按 ID 批量查询帖子失败", zap.Int("idCount", len(ids)), zap.Error(err))
		return nil, fmt.Errorf("按 ID 批量查询帖子失败: %w", err)
	}

	byID := make(map[uint64]*entities.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*entities.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}
