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
)

// CommentRepository 定义了评论数据在 MySQL 中的持久化操作接口。
type CommentRepository interface {
	// CreateComment 持久化一条新的评论记录。
	// - db 参数允许调用方传入事务句柄；传 nil 时使用默认连接。
	CreateComment(ctx context.Context, db *gorm.DB, comment *entities.Comment) error

	// GetCommentByID 根据 ID 检索评论（包含已软删除的评论）。
	// - 未找到时返回 commonerrors.ErrRepoNotFound。
	GetCommentByID(ctx context.Context, id uint64) (*entities.Comment, error)

	// ListCommentsByPostID 分页查询帖子下的可见评论，按创建时间升序。
	// - 已软删除的评论不出现在结果中。
	// - 预加载作者资料与父评论（含父评论作者）。
	// - 返回评论列表与可见评论总数。
	ListCommentsByPostID(ctx context.Context, postID uint64, page, pageSize int) ([]*entities.Comment, int64, error)

	// UpdateComment 更新评论的正文与附件列表。
	// - UPDATE 带 is_deleted = false 守卫，已软删除的评论不会被改写复活。
	// - 返回受影响行数，0 表示评论已被并发软删除（或已不存在）。
	UpdateComment(ctx context.Context, comment *entities.Comment) (int64, error)

	// SoftDeleteComment 对评论执行软删除：置删除标记并抹除正文与附件。
	// - 评论行保留在库中，维持回复树的引用完整性。
	// - UPDATE 带 is_deleted = false 守卫，并发的两次删除只有一次生效。
	// - 返回受影响行数，0 表示评论已被删除，调用方应跳过计数递减。
	SoftDeleteComment(ctx context.Context, db *gorm.DB, id uint64) (int64, error)
}

// commentRepository 是 CommentRepository 接口针对 MySQL 的具体实现。
type commentRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewCommentRepository 是 commentRepository 的构造函数。
func NewCommentRepository(db *gorm.DB, logger *core.ZapLogger) CommentRepository {
	return &commentRepository{
		db:     db,
		logger: logger,
	}
}

// CreateComment 实现评论的数据库插入操作。
func (r *commentRepository) CreateComment(ctx context.Context, db *gorm.DB, comment *entities.Comment) error {
	if db == nil {
		db = r.db
	}
	if err := db.WithContext(ctx).Create(comment).Error; err != nil {
		r.logger.Error("创建评论失败",
			zap.Uint64("postID", comment.PostID),
			zap.Uint64("userID", comment.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("创建评论失败: %w", err)
	}
	return nil
}

// GetCommentByID 根据 ID 查询评论。
func (r *commentRepository) GetCommentByID(ctx context.Context, id uint64) (*entities.Comment, error) {
	var comment entities.Comment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("查询评论失败", zap.Uint64("commentID", id), zap.Error(err))
		return nil, fmt.Errorf("查询评论(ID: %d)失败: %w", id, err)
	}
	return &comment, nil
}

// ListCommentsByPostID 分页查询帖子下的可见评论。
func (r *commentRepository) ListCommentsByPostID(ctx context.Context, postID uint64, page, pageSize int) ([]*entities.Comment, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&entities.Comment{}).
		Where("post_id = ? AND is_deleted = ?", postID, false)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		r.logger.Error("统计帖子评论总数失败", zap.Uint64("postID", postID), zap.Error(err))
		return nil, 0, fmt.Errorf("统计帖子(ID: %d)评论总数失败: %w", postID, err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = constant.DefaultPageSize
	}

	var comments []*entities.Comment
	err := base.
		Preload("Author").
		Preload("Parent").
		Preload("Parent.Author").
		Order("created_at ASC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&comments).Error
	if err != nil {
		r.logger.Error("查询帖子评论列表失败", zap.Uint64("postID", postID), zap.Error(err))
		return nil, 0, fmt.Errorf("查询帖子(ID: %d)评论列表失败: %w", postID, err)
	}
	return comments, total, nil
}

// UpdateComment 保存评论的可编辑字段。
// is_deleted = false 写进 WHERE 而不是先读后判，避免和并发软删除竞争后把内容写回去。
func (r *commentRepository) UpdateComment(ctx context.Context, comment *entities.Comment) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Comment{}).
		Where("id = ? AND is_deleted = ?", comment.ID, false).
		Updates(map[string]interface{}{
			"content":    comment.Content,
			"file_paths": comment.FilePaths,
		})
	if result.Error != nil {
		r.logger.Error("更新评论失败", zap.Uint64("commentID", comment.ID), zap.Error(result.Error))
		return 0, fmt.Errorf("更新评论(ID: %d)失败: %w", comment.ID, result.Error)
	}
	return result.RowsAffected, nil
}

// SoftDeleteComment 置删除标记并抹除评论内容。
// 守卫条件保证标记只能从 false 翻到 true，重复删除的 UPDATE 不命中任何行。
func (r *commentRepository) SoftDeleteComment(ctx context.Context, db *gorm.DB, id uint64) (int64, error) {
	if db == nil {
		db = r.db
	}
	result := db.WithContext(ctx).
		Model(&entities.Comment{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"content":    nil,
			"file_paths": nil,
		})
	if result.Error != nil {
		r.logger.Error("软删除评论失败", zap.Uint64("commentID", id), zap.Error(result.Error))
		return 0, fmt.Errorf("软删除评论(ID: %d)失败: %w", id, result.Error)
	}
	return result.RowsAffected, nil
}
