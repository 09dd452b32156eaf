package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/forum_service/constant"
	"github.com/Xushengqwer/forum_service/dependencies"
	"github.com/Xushengqwer/forum_service/metrics"
	"github.com/Xushengqwer/forum_service/models/dto"
	"github.com/Xushengqwer/forum_service/models/entities"
	"github.com/Xushengqwer/forum_service/models/enums"
	"github.com/Xushengqwer/forum_service/models/events"
	"github.com/Xushengqwer/forum_service/models/vo"
	"github.com/Xushengqwer/forum_service/mq/producer"
	"github.com/Xushengqwer/forum_service/myErrors"
	"github.com/Xushengqwer/forum_service/repo/mysql"
)

// CommentService 定义了处理评论核心业务逻辑的接口。
type CommentService interface {
	// CreateComment 处理用户在帖子下发表评论的业务流程。
	// - 评论落库与帖子评论计数递增在同一事务内完成。
	// - 评论内容包含 @ 提及标记时异步通知 AI 评论服务。
	CreateComment(ctx context.Context, userID uint64, postID uint64, req *dto.CreateCommentRequest, files []dependencies.UploadFile) (*vo.CommentVO, error)

	// ListComments 分页查询帖子下的可见评论，按创建时间升序。
	ListComments(ctx context.Context, postID uint64, req *dto.ListCommentsRequest) (*vo.CommentListVO, error)

	// UpdateComment 更新评论的正文与附件，仅作者本人可操作，已删除的评论不可编辑。
	UpdateComment(ctx context.Context, userID uint64, postID uint64, commentID uint64, req *dto.UpdateCommentRequest, newFiles []dependencies.UploadFile) (*vo.CommentVO, error)

	// DeleteComment 软删除评论并同步递减帖子评论计数，作者本人或管理员可操作。
	DeleteComment(ctx context.Context, userID uint64, postID uint64, commentID uint64) error
}

// commentService 是 CommentService 接口的具体实现。
type commentService struct {
	db           *gorm.DB
	postRepo     mysql.PostRepository
	commentRepo  mysql.CommentRepository
	profileRepo  mysql.UserProfileRepository
	uploadClient dependencies.UploadClientInterface
	kafkaSvc     producer.Producer
	logger       *core.ZapLogger
}

// NewCommentService 是 commentService 的构造函数。
func NewCommentService(
	db *gorm.DB,
	postRepo mysql.PostRepository,
	commentRepo mysql.CommentRepository,
	profileRepo mysql.UserProfileRepository,
	uploadClient dependencies.UploadClientInterface,
	kafkaSvc producer.Producer,
	logger *core.ZapLogger,
) CommentService {
	return &commentService{
		db:           db,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		profileRepo:  profileRepo,
		uploadClient: uploadClient,
		kafkaSvc:     kafkaSvc,
		logger:       logger,
	}
}

// containsMention 判断评论内容是否包含 AI 机器人的 @ 提及标记（不区分大小写）。
func containsMention(content string) bool {
	return strings.Contains(strings.ToLower(content), constant.MentionMarker)
}

// resolveParent 校验父评论的存在性与归属，合法时返回父评论实体。
func (s *commentService) resolveParent(ctx context.Context, postID uint64, parentID *uint64) (*entities.Comment, error) {
	if parentID == nil {
		return nil, nil
	}

	parent, err := s.commentRepo.GetCommentByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrParentCommentNotFound
		}
		return nil, fmt.Errorf("查询父评论失败: %w", err)
	}
	if parent.PostID != postID {
		return nil, myErrors.ErrInvalidParentComment
	}
	return parent, nil
}

// CreateComment 实现评论发表流程。
func (s *commentService) CreateComment(ctx context.Context, userID uint64, postID uint64, req *dto.CreateCommentRequest, files []dependencies.UploadFile) (*vo.CommentVO, error) {
	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("查询评论目标帖子失败: %w", err)
	}

	parentID, err := req.ResolveParentID()
	if err != nil {
		return nil, myErrors.ErrParentCommentNotFound
	}
	parent, err := s.resolveParent(ctx, postID, parentID)
	if err != nil {
		return nil, err
	}

	urls, err := s.uploadClient.Upload(ctx, files)
	if err != nil {
		s.logger.Error("评论附件上传失败",
			zap.Uint64("postID", postID),
			zap.Uint64("userID", userID),
			zap.Error(err),
		)
		return nil, err
	}

	content := req.Content
	comment := &entities.Comment{
		PostID:    postID,
		UserID:    userID,
		ParentID:  parentID,
		Content:   &content,
		FilePaths: urls,
	}

	var author *entities.UserProfile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, created, err := s.profileRepo.EnsureProfile(ctx, tx, entities.NewPlaceholderProfile(userID))
		if err != nil {
			return err
		}
		if created {
			metrics.AutoProvisionedProfiles.Inc()
		}
		author = profile

		if err := s.commentRepo.CreateComment(ctx, tx, comment); err != nil {
			return err
		}
		return s.postRepo.IncrementCommentCount(ctx, tx, postID)
	})
	if err != nil {
		return nil, fmt.Errorf("创建评论失败: %w", err)
	}

	comment.Author = author
	comment.Parent = parent

	if containsMention(content) {
		go s.publishCommentMention(post, comment)
	}

	return vo.NewCommentVOFromEntity(comment), nil
}

// publishCommentMention 异步发布 COMMENT_MENTION 事件，携带帖子与评论的上下文。
func (s *commentService) publishCommentMention(post *entities.Post, comment *entities.Comment) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var content string
	if comment.Content != nil {
		content = *comment.Content
	}
	payload := events.CommentMentionPayload{
		Post: events.PostRef{
			PostID:    post.ID,
			Title:     post.Title,
			Content:   post.Content,
			FilePaths: post.FilePaths,
		},
		Comment: events.CommentRef{
			CommentID: comment.ID,
			Content:   content,
			FilePaths: comment.FilePaths,
		},
	}
	if err := s.kafkaSvc.SendAICommentRequestEvent(ctx, constant.EventTypeCommentMention, payload); err != nil {
		s.logger.Warn("发布评论提及事件失败，AI 回复将缺席",
			zap.Uint64("postID", post.ID),
			zap.Uint64("commentID", comment.ID),
			zap.Error(err),
		)
	}
}

// ListComments 实现评论列表查询。
func (s *commentService) ListComments(ctx context.Context, postID uint64, req *dto.ListCommentsRequest) (*vo.CommentListVO, error) {
	if _, err := s.postRepo.GetPostByID(ctx, postID); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("查询评论目标帖子失败: %w", err)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	comments, total, err := s.commentRepo.ListCommentsByPostID(ctx, postID, page, constant.DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("查询评论列表失败: %w", err)
	}

	return &vo.CommentListVO{
		Comments:    vo.MapCommentsToCommentVOs(comments),
		TotalItems:  total,
		Limit:       constant.DefaultPageSize,
		CurrentPage: page,
	}, nil
}

// loadCommentForWrite 加载评论并校验其归属于指定帖子。
func (s *commentService) loadCommentForWrite(ctx context.Context, postID uint64, commentID uint64) (*entities.Comment, error) {
	comment, err := s.commentRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}
	if comment.PostID != postID {
		return nil, myErrors.ErrCommentNotBelongToPost
	}
	return comment, nil
}

// UpdateComment 实现评论更新，仅作者本人可操作。
func (s *commentService) UpdateComment(ctx context.Context, userID uint64, postID uint64, commentID uint64, req *dto.UpdateCommentRequest, newFiles []dependencies.UploadFile) (*vo.CommentVO, error) {
	comment, err := s.loadCommentForWrite(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted {
		return nil, myErrors.ErrCannotUpdateDeletedComment
	}
	if comment.UserID != userID {
		return nil, myErrors.ErrForbidden
	}

	newURLs, err := s.uploadClient.Upload(ctx, newFiles)
	if err != nil {
		s.logger.Error("更新评论附件上传失败", zap.Uint64("commentID", commentID), zap.Error(err))
		return nil, err
	}

	if req.Content != "" {
		content := req.Content
		comment.Content = &content
	}
	filePaths := make([]string, 0, len(req.OldFilePaths)+len(newURLs))
	filePaths = append(filePaths, req.OldFilePaths...)
	filePaths = append(filePaths, newURLs...)
	comment.FilePaths = filePaths

	rows, err := s.commentRepo.UpdateComment(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("更新评论失败: %w", err)
	}
	// 前面的读取之后评论可能已被并发软删除，UPDATE 未命中即视为已删除
	if rows == 0 {
		return nil, myErrors.ErrCannotUpdateDeletedComment
	}

	if author, err := s.profileRepo.GetProfileByID(ctx, comment.UserID); err == nil {
		comment.Author = author
	}
	return vo.NewCommentVOFromEntity(comment), nil
}

// DeleteComment 实现评论软删除，作者或管理员可操作。
func (s *commentService) DeleteComment(ctx context.Context, userID uint64, postID uint64, commentID uint64) error {
	comment, err := s.loadCommentForWrite(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if comment.IsDeleted {
		return myErrors.ErrCommentAlreadyDeleted
	}

	// 操作者资料缺失视为无法鉴权，直接拒绝
	operator, err := s.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return myErrors.ErrUserNotFound
		}
		return fmt.Errorf("查询操作者资料失败: %w", err)
	}
	if comment.UserID != userID && operator.Role != enums.RoleAdmin {
		s.logger.Warn("非作者且非管理员尝试删除评论",
			zap.Uint64("commentID", commentID),
			zap.Uint64("operatorID", userID),
		)
		return myErrors.ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.commentRepo.SoftDeleteComment(ctx, tx, commentID)
		if err != nil {
			return err
		}
		// 并发的另一次删除已经生效时，跳过递减，否则计数会被多减一次
		if rows == 0 {
			return myErrors.ErrCommentAlreadyDeleted
		}
		return s.postRepo.DecrementCommentCount(ctx, tx, postID)
	})
	if err != nil {
		if errors.Is(err, myErrors.ErrCommentAlreadyDeleted) {
			return myErrors.ErrCommentAlreadyDeleted
		}
		return fmt.Errorf("删除评论失败: %w", err)
	}

	s.logger.Info("评论已软删除",
		zap.Uint64("postID", postID),
		zap.Uint64("commentID", commentID),
		zap.Uint64("operatorID", userID),
	)
	return nil
}
