package main

import (
	"context"
	"fmt"

	"github.com/Xushengqwer/go-common/core"
	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/forum_service/models/dto"
	"github.com/Xushengqwer/forum_service/models/entities"
	"github.com/Xushengqwer/forum_service/models/enums"
	"github.com/Xushengqwer/forum_service/repo/mysql"
	"github.com/Xushengqwer/forum_service/service"
)

// 固定账号：1 号为管理员，2 号为 AI 机器人，便于本地联调
const (
	seedAdminUserID = 1
	seedAIUserID    = 2
)

// Seed 通过服务层填充测试数据：用户资料镜像 -> 帖子 -> 评论。
// 评论经由 CommentService 创建，帖子的 comment_count 随之保持一致。
func Seed(
	ctx context.Context,
	db *gorm.DB,
	profileRepo mysql.UserProfileRepository,
	postSvc service.PostService,
	commentSvc service.CommentService,
	logger *core.ZapLogger,
	numUsers, numPosts, commentsPerPost int,
) {
	logger.Info("开始填充测试数据 (通过服务层)...",
		zap.Int("users", numUsers),
		zap.Int("posts", numPosts),
	)

	userIDs := seedProfiles(ctx, profileRepo, logger, numUsers)
	if len(userIDs) == 0 {
		logger.Error("没有任何用户资料写入成功，终止填充")
		return
	}

	postIDs := seedPosts(ctx, postSvc, logger, userIDs, numPosts)
	seedComments(ctx, commentSvc, logger, userIDs, postIDs, commentsPerPost)

	// 随机补一些浏览量，让热度榜有区分度
	for _, postID := range postIDs {
		views := gofakeit.Number(0, 500)
		if err := db.WithContext(ctx).Model(&entities.Post{}).
			Where("id = ?", postID).
			Update("view_count", views).Error; err != nil {
			logger.Warn("写入随机浏览量失败", zap.Uint64("postID", postID), zap.Error(err))
		}
	}

	logger.Info("测试数据填充完毕 (通过服务层)。")
}

// seedProfiles 写入固定的管理员、AI 机器人账号与随机普通用户。
func seedProfiles(ctx context.Context, profileRepo mysql.UserProfileRepository, logger *core.ZapLogger, numUsers int) []uint64 {
	profiles := []*entities.UserProfile{
		{
			UserID:   seedAdminUserID,
			Username: "admin",
			Email:    "admin@example.com",
			Fullname: "Forum Admin",
			Role:     enums.RoleAdmin,
		},
		{
			UserID:   seedAIUserID,
			Username: "uetfa",
			Email:    "uetfa@example.com",
			Fullname: "Forum AI Bot",
			Role:     enums.RoleMember,
		},
	}
	for i := 0; i < numUsers; i++ {
		userID := uint64(seedAIUserID + 1 + i)
		profiles = append(profiles, &entities.UserProfile{
			UserID:          userID,
			Username:        gofakeit.Username(),
			Email:           gofakeit.Email(),
			Fullname:        gofakeit.Name(),
			AvatarImageLink: gofakeit.ImageURL(100, 100),
			Role:            enums.RoleMember,
		})
	}

	userIDs := make([]uint64, 0, len(profiles))
	for _, profile := range profiles {
		if err := profileRepo.UpsertProfile(ctx, profile); err != nil {
			logger.Error("写入用户资料失败", zap.Uint64("userID", profile.UserID), zap.Error(err))
			continue
		}
		userIDs = append(userIDs, profile.UserID)
	}
	logger.Info("用户资料填充完成", zap.Int("count", len(userIDs)))
	return userIDs
}

// seedPosts 以随机作者创建帖子。
func seedPosts(ctx context.Context, postSvc service.PostService, logger *core.ZapLogger, userIDs []uint64, numPosts int) []uint64 {
	postIDs := make([]uint64, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		authorID := userIDs[gofakeit.Number(0, len(userIDs)-1)]
		createReq := &dto.CreatePostRequest{
			Title:   gofakeit.Sentence(gofakeit.Number(5, 15)),
			Content: gofakeit.Paragraph(3, 5, 20, "\n\n"),
		}

		resp, err := postSvc.CreatePost(ctx, authorID, createReq, nil)
		if err != nil {
			logger.Error(fmt.Sprintf("创建帖子 %d/%d 失败", i+1, numPosts),
				zap.Error(err),
				zap.String("title", createReq.Title),
				zap.Uint64("author_id", authorID))
			continue
		}
		postIDs = append(postIDs, resp.PostID)
	}
	logger.Info("帖子填充完成", zap.Int("count", len(postIDs)))
	return postIDs
}

// seedComments 在每个帖子下创建随机数量的评论，偶尔回复前一条评论。
func seedComments(ctx context.Context, commentSvc service.CommentService, logger *core.ZapLogger, userIDs []uint64, postIDs []uint64, commentsPerPost int) {
	if commentsPerPost == 0 {
		return
	}

	total := 0
	for _, postID := range postIDs {
		var lastCommentID uint64
		n := gofakeit.Number(0, commentsPerPost)
		for i := 0; i < n; i++ {
			authorID := userIDs[gofakeit.Number(0, len(userIDs)-1)]
			createReq := &dto.CreateCommentRequest{
				Content: gofakeit.Sentence(gofakeit.Number(3, 20)),
			}
			// 三成概率回复上一条评论，构造回复树
			if lastCommentID != 0 && gofakeit.Number(1, 10) <= 3 {
				createReq.ParentID = fmt.Sprintf("%d", lastCommentID)
			}

			resp, err := commentSvc.CreateComment(ctx, authorID, postID, createReq, nil)
			if err != nil {
				logger.Error("创建评论失败",
					zap.Uint64("postID", postID),
					zap.Uint64("author_id", authorID),
					zap.Error(err))
				continue
			}
			lastCommentID = resp.CommentID
			total++
		}
	}
	logger.Info("评论填充完成", zap.Int("count", total))
}
