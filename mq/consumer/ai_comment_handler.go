package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/forum_service/metrics"
	"github.com/Xushengqwer/forum_service/models/entities"
	"github.com/Xushengqwer/forum_service/models/events"
	"github.com/Xushengqwer/forum_service/repo/mysql"
)

// AICommentHandler 处理 AI 服务回写的评论创建事件。
// 事件到达时帖子可能已被删除，此时事件静默丢弃而非报错。
type AICommentHandler struct {
	db          *gorm.DB
	postRepo    mysql.PostRepository
	commentRepo mysql.CommentRepository
	profileRepo mysql.UserProfileRepository
	logger      *core.ZapLogger
}

// NewAICommentHandler 创建 AI 评论事件处理器。
func NewAICommentHandler(
	db *gorm.DB,
	postRepo mysql.PostRepository,
	commentRepo mysql.CommentRepository,
	profileRepo mysql.UserProfileRepository,
	logger *core.ZapLogger,
) *AICommentHandler {
	return &AICommentHandler{
		db:          db,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// HandleAICommentCreated 消费 AI_COMMENT_CREATED 事件，落库评论并维护帖子评论计数。
func (h *AICommentHandler) HandleAICommentCreated(ctx context.Context, payload json.RawMessage) error {
	var event events.AICommentCreatedPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("AI 评论事件载荷解析失败，已丢弃", zap.Error(err))
		return nil
	}
	if event.PostID == 0 || event.UserID == 0 || event.Content == "" {
		h.logger.Error("AI 评论事件载荷缺少必要字段，已丢弃",
			zap.Uint64("postID", event.PostID),
			zap.Uint64("userID", event.UserID),
		)
		return nil
	}

	// 帖子可能在 AI 响应到达前被删除，这属于正常竞态而非故障
	if _, err := h.postRepo.GetPostByID(ctx, event.PostID); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			metrics.AICommentsDropped.Inc()
			h.logger.Warn("AI 评论对应的帖子已不存在，事件已丢弃",
				zap.Uint64("postID", event.PostID),
			)
			return nil
		}
		return fmt.Errorf("检查 AI 评论目标帖子(ID: %d)失败: %w", event.PostID, err)
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		placeholder := entities.NewPlaceholderProfile(event.UserID)
		if _, created, err := h.profileRepo.EnsureProfile(ctx, tx, placeholder); err != nil {
			return err
		} else if created {
			metrics.AutoProvisionedProfiles.Inc()
		}

		comment := &entities.Comment{
			PostID:   event.PostID,
			UserID:   event.UserID,
			ParentID: event.ParentID,
			Content:  &event.Content,
		}
		if err := h.commentRepo.CreateComment(ctx, tx, comment); err != nil {
			return err
		}
		return h.postRepo.IncrementCommentCount(ctx, tx, event.PostID)
	})
	if err != nil {
		h.logger.Error("落库 AI 评论失败",
			zap.Uint64("postID", event.PostID),
			zap.Uint64("userID", event.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("落库 AI 评论(PostID: %d)失败: %w", event.PostID, err)
	}

	h.logger.Info("AI 评论已落库",
		zap.Uint64("postID", event.PostID),
		zap.Uint64("userID", event.UserID),
	)
	return nil
}
