package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/forum_service/constant"
	"github.com/Xushengqwer/forum_service/dependencies"
	"github.com/Xushengqwer/forum_service/models/dto"
	"github.com/Xushengqwer/forum_service/models/entities"
	"github.com/Xushengqwer/forum_service/models/enums"
	"github.com/Xushengqwer/forum_service/myErrors"
)

func TestCreatePostPersistsAndNotifiesAI(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	postVO, err := env.postSvc.CreatePost(ctx, 10, &dto.CreatePostRequest{
		Title:   "第一篇帖子",
		Content: "大家好",
	}, []dependencies.UploadFile{
		{Name: "a.png", ContentType: "image/png", Data: []byte("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, "第一篇帖子", postVO.Title)
	assert.Equal(t, []string{"http://cdn.test/a.png"}, postVO.FilePaths)

	// 未知作者的资料镜像被占位补建
	var profile entities.UserProfile
	require.NoError(t, env.db.First(&profile, "user_id = ?", 10).Error)
	assert.Equal(t, "user_10", profile.Username)
	assert.Equal(t, "user10@example.com", profile.Email)
	assert.Equal(t, enums.RoleMember, profile.Role)

	// 发帖事件异步发布
	require.Eventually(t, func() bool {
		for _, eventType := range env.producer.eventTypes() {
			if eventType == constant.EventTypePostCreated {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCreatePostUploadFailureWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.uploader.err = myErrors.ErrFileUploadFailed

	_, err := env.postSvc.CreatePost(context.Background(), 10, &dto.CreatePostRequest{
		Title:   "不会出现的帖子",
		Content: "内容",
	}, []dependencies.UploadFile{{Name: "bad.png"}})
	require.ErrorIs(t, err, myErrors.ErrFileUploadFailed)

	// 上传失败时不应留下任何数据库痕迹
	var count int64
	require.NoError(t, env.db.Model(&entities.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetPostDetailIncrementsViewCountAtomically(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)

	created, err := env.postSvc.CreatePost(ctx, 1, &dto.CreatePostRequest{Title: "标题", Content: "正文"}, nil)
	require.NoError(t, err)

	first, err := env.postSvc.GetPostDetail(ctx, created.PostID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ViewCount)

	second, err := env.postSvc.GetPostDetail(ctx, created.PostID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ViewCount)

	require.NotNil(t, second.Author)
	assert.Equal(t, "author", second.Author.Username)
}

func TestGetPostDetailNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.postSvc.GetPostDetail(context.Background(), 12345)
	assert.ErrorIs(t, err, myErrors.ErrPostNotFound)
}

func TestListPostsFilterByRoleAndSortByTrend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "admin", enums.RoleAdmin)
	env.seedProfile(t, 2, "member", enums.RoleMember)

	adminPost, err := env.postSvc.CreatePost(ctx, 1, &dto.CreatePostRequest{Title: "管理员公告", Content: "内容"}, nil)
	require.NoError(t, err)
	memberPost, err := env.postSvc.CreatePost(ctx, 2, &dto.CreatePostRequest{Title: "普通帖子", Content: "内容"}, nil)
	require.NoError(t, err)

	// 热度: member 帖 100 浏览，admin 帖 5 浏览 + 20 评论 => admin 分值更高
	require.NoError(t, env.db.Model(&entities.Post{}).Where("id = ?", memberPost.PostID).
		Update("view_count", 100).Error)
	require.NoError(t, env.db.Model(&entities.Post{}).Where("id = ?", adminPost.PostID).
		Updates(map[string]interface{}{"view_count": 5, "comment_count": 20}).Error)

	// 角色筛选
	adminOnly, err := env.postSvc.ListPosts(ctx, &dto.ListPostsRequest{Page: 1, Filter: "ADMIN", Sort: "time"})
	require.NoError(t, err)
	require.Len(t, adminOnly.Posts, 1)
	assert.Equal(t, adminPost.PostID, adminOnly.Posts[0].PostID)
	assert.Equal(t, int64(1), adminOnly.Total)

	// 热度排序: 5 + 20*10 = 205 > 100
	byTrend, err := env.postSvc.ListPosts(ctx, &dto.ListPostsRequest{Page: 1, Filter: "ALL", Sort: "trend"})
	require.NoError(t, err)
	require.Len(t, byTrend.Posts, 2)
	assert.Equal(t, adminPost.PostID, byTrend.Posts[0].PostID)
	assert.Equal(t, memberPost.PostID, byTrend.Posts[1].PostID)
}

func TestListPostsSearchMatchesTitleOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)

	_, err := env.postSvc.CreatePost(ctx, 1, &dto.CreatePostRequest{Title: "Go channel 详解", Content: "并发模式"}, nil)
	require.NoError(t, err)
	_, err = env.postSvc.CreatePost(ctx, 1, &dto.CreatePostRequest{Title: "随笔", Content: "顺带聊聊 channel"}, nil)
	require.NoError(t, err)

	// 只匹配标题，正文里的关键词不算
	result, err := env.postSvc.ListPosts(ctx, &dto.ListPostsRequest{Page: 1, Search: "channel", Filter: "ALL", Sort: "time"})
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)
	assert.Equal(t, "Go channel 详解", result.Posts[0].Title)
	assert.Equal(t, int64(1), result.Total)
}

func TestUpdatePostOnlyAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)

	created, err := env.postSvc.CreatePost(ctx, 1, &dto.CreatePostRequest{Title: "原标题", Content: "原内容"}, []dependencies.UploadFile{
		{Name: "old.png"},
	})
	require.NoError(t, err)

	// 非作者被拒绝
	_, err = env.postSvc.UpdatePost(ctx, 2, created.PostID, &dto.UpdatePostRequest{Title: "篡改"}, nil)
	assert.ErrorIs(t, err, myErrors.ErrForbidden)

	// 作者更新：保留旧附件 + 新附件
	updated, err := env.postSvc.UpdatePost(ctx, 1, created.PostID, &dto.UpdatePostRequest{
		Title:        "新标题",
		OldFilePaths: []string{"http://cdn.test/old.png"},
	}, []dependencies.UploadFile{{Name: "new.png"}})
	require.NoError(t, err)
	assert.Equal(t, "新标题", updated.Title)
	assert.Equal(t, "原内容", updated.Content)
	assert.Equal(t, []string{"http://cdn.test/old.png", "http://cdn.test/new.png"}, updated.FilePaths)
}

func TestDeletePostAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)
	env.seedProfile(t, 2, "stranger", enums.RoleMember)
	env.seedProfile(t, 3, "moderator", enums.RoleAdmin)

	created, err := env.postSvc.CreatePost(ctx, 1, &dto.CreatePostRequest{Title: "标题", Content: "内容"}, nil)
	require.NoError(t, err)
	_, err = env.commentSvc.CreateComment(ctx, 2, created.PostID, &dto.CreateCommentRequest{Content: "评论"}, nil)
	require.NoError(t, err)

	// 普通路人被拒绝
	assert.ErrorIs(t, env.postSvc.DeletePost(ctx, 2, created.PostID), myErrors.ErrForbidden)

	// 管理员可删，评论级联清理
	require.NoError(t, env.postSvc.DeletePost(ctx, 3, created.PostID))

	var postCount, commentCount int64
	require.NoError(t, env.db.Model(&entities.Post{}).Count(&postCount).Error)
	require.NoError(t, env.db.Model(&entities.Comment{}).Count(&commentCount).Error)
	assert.Zero(t, postCount)
	assert.Zero(t, commentCount)

	// 再删同一帖子报不存在
	assert.ErrorIs(t, env.postSvc.DeletePost(ctx, 3, created.PostID), myErrors.ErrPostNotFound)
}

func TestDeletePostByAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)

	created, err := env.postSvc.CreatePost(ctx, 1, &dto.CreatePostRequest{Title: "标题", Content: "内容"}, nil)
	require.NoError(t, err)
	require.NoError(t, env.postSvc.DeletePost(ctx, 1, created.PostID))

	_, err = env.postSvc.GetPostDetail(ctx, created.PostID)
	assert.ErrorIs(t, err, myErrors.ErrPostNotFound)
}
