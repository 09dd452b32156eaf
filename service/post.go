package service

import (
	"context"
	"errors"
	"fmt"
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

// PostService 定义了处理帖子核心业务逻辑的接口。
type PostService interface {
	// CreatePost 处理用户发布新帖子的业务流程。
	// - 附件先上传到网关，任一文件失败则整体失败，不写入任何数据。
	// - 成功创建后异步通知 AI 评论服务，通知失败不影响发帖结果。
	CreatePost(ctx context.Context, userID uint64, req *dto.CreatePostRequest, files []dependencies.UploadFile) (*vo.PostVO, error)

	// ListPosts 分页查询帖子列表，支持关键词搜索、作者角色筛选与时间/热度排序。
	ListPosts(ctx context.Context, req *dto.ListPostsRequest) (*vo.PostListVO, error)

	// GetPostDetail 获取单个帖子的详细信息。
	// - 每次成功获取都会原子地将浏览量加一，返回的浏览量为递增后的值。
	GetPostDetail(ctx context.Context, postID uint64) (*vo.PostVO, error)

	// UpdatePost 更新帖子的标题、正文与附件列表，仅作者本人可操作。
	// - 最终附件列表 = 保留的旧附件 + 新上传附件。
	UpdatePost(ctx context.Context, userID uint64, postID uint64, req *dto.UpdatePostRequest, newFiles []dependencies.UploadFile) (*vo.PostVO, error)

	// DeletePost 物理删除帖子及其全部评论，作者本人或管理员可操作。
	// - 操作者角色以本地资料镜像为准。
	DeletePost(ctx context.Context, userID uint64, postID uint64) error
}

// postService 是 PostService 接口的具体实现。
type postService struct {
	db           *gorm.DB
	postRepo     mysql.PostRepository
	profileRepo  mysql.UserProfileRepository
	uploadClient dependencies.UploadClientInterface
	kafkaSvc     producer.Producer
	logger       *core.ZapLogger
}

// NewPostService 是 postService 的构造函数，通过依赖注入初始化服务实例。
func NewPostService(
	db *gorm.DB,
	postRepo mysql.PostRepository,
	profileRepo mysql.UserProfileRepository,
	uploadClient dependencies.UploadClientInterface,
	kafkaSvc producer.Producer,
	logger *core.ZapLogger,
) PostService {
	return &postService{
		db:           db,
		postRepo:     postRepo,
		profileRepo:  profileRepo,
		uploadClient: uploadClient,
		kafkaSvc:     kafkaSvc,
		logger:       logger,
	}
}

// ensureAuthorProfile 在写入内容前确保作者资料镜像存在。
func (s *postService) ensureAuthorProfile(ctx context.Context, db *gorm.DB, userID uint64) error {
	_, created, err := s.profileRepo.EnsureProfile(ctx, db, entities.NewPlaceholderProfile(userID))
	if err != nil {
		return err
	}
	if created {
		metrics.AutoProvisionedProfiles.Inc()
	}
	return nil
}

// CreatePost 实现发帖流程：上传附件 -> 补全作者镜像 -> 落库 -> 异步通知 AI。
func (s *postService) CreatePost(ctx context.Context, userID uint64, req *dto.CreatePostRequest, files []dependencies.UploadFile) (*vo.PostVO, error) {
	// 上传放在数据库写入之前，避免留下指向不存在附件的帖子
	urls, err := s.uploadClient.Upload(ctx, files)
	if err != nil {
		s.logger.Error("发帖附件上传失败", zap.Uint64("userID", userID), zap.Error(err))
		return nil, err
	}

	post := &entities.Post{
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		FilePaths: urls,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureAuthorProfile(ctx, tx, userID); err != nil {
			return err
		}
		return s.postRepo.CreatePost(ctx, tx, post)
	})
	if err != nil {
		return nil, fmt.Errorf("创建帖子失败: %w", err)
	}

	// 重新加载以带出作者投影
	created, err := s.postRepo.GetPostByID(ctx, post.ID)
	if err != nil {
		s.logger.Error("回读新建帖子失败", zap.Uint64("postID", post.ID), zap.Error(err))
		created = post
	}

	// 通知 AI 评论服务属于尽力而为，失败只记录日志
	go s.publishPostCreated(created)

	return vo.NewPostVOFromEntity(created), nil
}

// publishPostCreated 异步发布 POST_CREATED 事件。
func (s *postService) publishPostCreated(post *entities.Post) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload := events.PostCreatedPayload{
		PostID:    post.ID,
		Title:     post.Title,
		Content:   post.Content,
		FilePaths: post.FilePaths,
	}
	if err := s.kafkaSvc.SendAICommentRequestEvent(ctx, constant.EventTypePostCreated, payload); err != nil {
		s.logger.Warn("发布帖子创建事件失败，AI 评论将缺席",
			zap.Uint64("postID", post.ID),
			zap.Error(err),
		)
	}
}

// ListPosts 实现帖子列表查询。
func (s *postService) ListPosts(ctx context.Context, req *dto.ListPostsRequest) (*vo.PostListVO, error) {
	query := &mysql.PostQuery{
		Search:      req.Search,
		SortByTrend: req.Sort == "trend",
		Page:        req.Page,
		PageSize:    constant.DefaultPageSize,
	}
	switch req.Filter {
	case string(enums.RoleMember):
		role := enums.RoleMember
		query.RoleFilter = &role
	case string(enums.RoleAdmin):
		role := enums.RoleAdmin
		query.RoleFilter = &role
	}

	posts, total, err := s.postRepo.ListPosts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询帖子列表失败: %w", err)
	}

	return &vo.PostListVO{
		Posts: vo.MapPostsToPostVOs(posts),
		Total: total,
		Page:  query.Page,
		Limit: query.PageSize,
	}, nil
}

// GetPostDetail 实现帖子详情查询：先原子递增浏览量，再读取最新数据。
func (s *postService) GetPostDetail(ctx context.Context, postID uint64) (*vo.PostVO, error) {
	if err := s.postRepo.IncrementViewCount(ctx, postID); err != nil {
		return nil, fmt.Errorf("递增帖子浏览量失败: %w", err)
	}

	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("查询帖子详情失败: %w", err)
	}
	return vo.NewPostVOFromEntity(post), nil
}

// UpdatePost 实现帖子更新，仅作者本人可操作。
func (s *postService) UpdatePost(ctx context.Context, userID uint64, postID uint64, req *dto.UpdatePostRequest, newFiles []dependencies.UploadFile) (*vo.PostVO, error) {
	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("查询待更新帖子失败: %w", err)
	}

	if post.UserID != userID {
		s.logger.Warn("非作者尝试更新帖子",
			zap.Uint64("postID", postID),
			zap.Uint64("operatorID", userID),
			zap.Uint64("authorID", post.UserID),
		)
		return nil, myErrors.ErrForbidden
	}

	newURLs, err := s.uploadClient.Upload(ctx, newFiles)
	if err != nil {
		s.logger.Error("更新帖子附件上传失败", zap.Uint64("postID", postID), zap.Error(err))
		return nil, err
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	filePaths := make([]string, 0, len(req.OldFilePaths)+len(newURLs))
	filePaths = append(filePaths, req.OldFilePaths...)
	filePaths = append(filePaths, newURLs...)
	post.FilePaths = filePaths

	if err := s.postRepo.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("更新帖子失败: %w", err)
	}

	updated, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("回读更新后帖子失败: %w", err)
	}
	return vo.NewPostVOFromEntity(updated), nil
}

// DeletePost 实现删帖，作者或管理员可操作，帖子与其评论在同一事务内清理。
func (s *postService) DeletePost(ctx context.Context, userID uint64, postID uint64) error {
	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return myErrors.ErrPostNotFound
		}
		return fmt.Errorf("查询待删除帖子失败: %w", err)
	}

	if post.UserID != userID {
		// 非作者时按本地镜像中的角色判定管理员权限
		operator, err := s.profileRepo.GetProfileByID(ctx, userID)
		if err != nil {
			if errors.Is(err, commonerrors.ErrRepoNotFound) {
				return myErrors.ErrForbidden
			}
			return fmt.Errorf("查询操作者资料失败: %w", err)
		}
		if operator.Role != enums.RoleAdmin {
			s.logger.Warn("非作者且非管理员尝试删除帖子",
				zap.Uint64("postID", postID),
				zap.Uint64("operatorID", userID),
			)
			return myErrors.ErrForbidden
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleted, err := s.postRepo.DeleteCommentsByPostID(ctx, tx, postID)
		if err != nil {
			return err
		}
		s.logger.Info("删帖已级联清理评论",
			zap.Uint64("postID", postID),
			zap.Int64("commentRows", deleted),
		)
		return s.postRepo.DeletePost(ctx, tx, postID)
	})
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return myErrors.ErrPostNotFound
		}
		return fmt.Errorf("删除帖子失败: %w", err)
	}

	s.logger.Info("帖子已删除",
		zap.Uint64("postID", postID),
		zap.Uint64("operatorID", userID),
	)
	return nil
}
