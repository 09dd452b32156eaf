package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/forum_service/constant"
	"github.com/Xushengqwer/forum_service/models/dto"
	"github.com/Xushengqwer/forum_service/models/entities"
	"github.com/Xushengqwer/forum_service/models/enums"
	"github.com/Xushengqwer/forum_service/models/vo"
	"github.com/Xushengqwer/forum_service/myErrors"
)

// createTestPost 建一篇帖子供评论用例使用。
func createTestPost(t *testing.T, env *testEnv, authorID uint64) *vo.PostVO {
	t.Helper()
	post, err := env.postSvc.CreatePost(context.Background(), authorID, &dto.CreatePostRequest{
		Title:   "讨论帖",
		Content: "正文",
	}, nil)
	require.NoError(t, err)
	return post
}

func TestCreateCommentMaintainsCountInvariant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)
	post := createTestPost(t, env, 1)

	for i := 0; i < 3; i++ {
		_, err := env.commentSvc.CreateComment(ctx, 2, post.PostID, &dto.CreateCommentRequest{
			Content: fmt.Sprintf("评论 %d", i),
		}, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(3), env.postCommentCount(t, post.PostID))
	assert.Equal(t, env.visibleCommentCount(t, post.PostID), env.postCommentCount(t, post.PostID))
}

func TestCreateCommentOnMissingPost(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.commentSvc.CreateComment(context.Background(), 1, 999, &dto.CreateCommentRequest{Content: "评论"}, nil)
	assert.ErrorIs(t, err, myErrors.ErrPostNotFound)
}

func TestCreateCommentParentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)
	postA := createTestPost(t, env, 1)
	postB := createTestPost(t, env, 1)

	parent, err := env.commentSvc.CreateComment(ctx, 2, postA.PostID, &dto.CreateCommentRequest{Content: "顶层评论"}, nil)
	require.NoError(t, err)

	// 父评论不存在
	_, err = env.commentSvc.CreateComment(ctx, 2, postA.PostID, &dto.CreateCommentRequest{
		Content:  "回复",
		ParentID: "424242",
	}, nil)
	assert.ErrorIs(t, err, myErrors.ErrParentCommentNotFound)

	// 父评论属于另一篇帖子
	_, err = env.commentSvc.CreateComment(ctx, 2, postB.PostID, &dto.CreateCommentRequest{
		Content:  "跨帖回复",
		ParentID: fmt.Sprintf("%d", parent.CommentID),
	}, nil)
	assert.ErrorIs(t, err, myErrors.ErrInvalidParentComment)

	// "null" 哨兵值等价于顶层评论
	topLevel, err := env.commentSvc.CreateComment(ctx, 2, postA.PostID, &dto.CreateCommentRequest{
		Content:  "另一条顶层评论",
		ParentID: "null",
	}, nil)
	require.NoError(t, err)
	assert.Nil(t, topLevel.ParentID)

	// 合法回复
	reply, err := env.commentSvc.CreateComment(ctx, 3, postA.PostID, &dto.CreateCommentRequest{
		Content:  "合法回复",
		ParentID: fmt.Sprintf("%d", parent.CommentID),
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.CommentID, *reply.ParentID)
	require.NotNil(t, reply.Parent)
	assert.Equal(t, parent.CommentID, reply.Parent.CommentID)
}

func TestCreateCommentMentionTriggersAIEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)
	post := createTestPost(t, env, 1)

	// 大小写混排的提及也要命中
	_, err := env.commentSvc.CreateComment(ctx, 2, post.PostID, &dto.CreateCommentRequest{
		Content: "请 @UetFa 来回答一下",
	}, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, eventType := range env.producer.eventTypes() {
			if eventType == constant.EventTypeCommentMention {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCreateCommentWithoutMentionPublishesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)
	post := createTestPost(t, env, 1)

	before := len(env.producer.eventTypes())
	_, err := env.commentSvc.CreateComment(ctx, 2, post.PostID, &dto.CreateCommentRequest{
		Content: "普通评论，没有提及",
	}, nil)
	require.NoError(t, err)

	// 短暂等待，确认没有新的提及事件被异步发出
	time.Sleep(100 * time.Millisecond)
	for _, eventType := range env.producer.eventTypes()[before:] {
		assert.NotEqual(t, constant.EventTypeCommentMention, eventType)
	}
}

func TestListCommentsOrderingAndDeletedParentProjection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)
	env.seedProfile(t, 2, "commenter", enums.RoleMember)
	post := createTestPost(t, env, 1)

	parent, err := env.commentSvc.CreateComment(ctx, 2, post.PostID, &dto.CreateCommentRequest{Content: "将被删除的评论"}, nil)
	require.NoError(t, err)
	reply, err := env.commentSvc.CreateComment(ctx, 2, post.PostID, &dto.CreateCommentRequest{
		Content:  "对它的回复",
		ParentID: fmt.Sprintf("%d", parent.CommentID),
	}, nil)
	require.NoError(t, err)

	require.NoError(t, env.commentSvc.DeleteComment(ctx, 2, post.PostID, parent.CommentID))

	list, err := env.commentSvc.ListComments(ctx, post.PostID, &dto.ListCommentsRequest{Page: 1})
	require.NoError(t, err)

	// 被删除的评论不在列表中，但回复仍可见且父投影带删除标记
	require.Len(t, list.Comments, 1)
	assert.Equal(t, int64(1), list.TotalItems)
	got := list.Comments[0]
	assert.Equal(t, reply.CommentID, got.CommentID)
	require.NotNil(t, got.Parent)
	assert.True(t, got.Parent.IsDeleted)
	assert.Nil(t, got.Parent.Content)
	require.NotNil(t, got.Parent.Author)
	assert.Equal(t, "commenter", got.Parent.Author.Username)
}

func TestListCommentsAscendingOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)
	post := createTestPost(t, env, 1)

	first, err := env.commentSvc.CreateComment(ctx, 2, post.PostID, &dto.CreateCommentRequest{Content: "最早"}, nil)
	require.NoError(t, err)
	second, err := env.commentSvc.CreateComment(ctx, 2, post.PostID, &dto.CreateCommentRequest{Content: "较晚"}, nil)
	require.NoError(t, err)

	list, err := env.commentSvc.ListComments(ctx, post.PostID, &dto.ListCommentsRequest{Page: 1})
	require.NoError(t, err)
	require.Len(t, list.Comments, 2)
	assert.Equal(t, first.CommentID, list.Comments[0].CommentID)
	assert.Equal(t, second.CommentID, list.Comments[1].CommentID)
}

func TestUpdateCommentRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)
	postA := createTestPost(t, env, 1)
	postB := createTestPost(t, env, 1)

	comment, err := env.commentSvc.CreateComment(ctx, 2, postA.PostID, &dto.CreateCommentRequest{Content: "原始内容"}, nil)
	require.NoError(t, err)

	// 评论不属于该帖子
	_, err = env.commentSvc.UpdateComment(ctx, 2, postB.PostID, comment.CommentID, &dto.UpdateCommentRequest{Content: "改"}, nil)
	assert.ErrorIs(t, err, myErrors.ErrCommentNotBelongToPost)

	// 非作者被拒绝
	_, err = env.commentSvc.UpdateComment(ctx, 3, postA.PostID, comment.CommentID, &dto.UpdateCommentRequest{Content: "改"}, nil)
	assert.ErrorIs(t, err, myErrors.ErrForbidden)

	// 作者正常更新
	updated, err := env.commentSvc.UpdateComment(ctx, 2, postA.PostID, comment.CommentID, &dto.UpdateCommentRequest{Content: "新内容"}, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.Content)
	assert.Equal(t, "新内容", *updated.Content)

	// 已删除的评论不可编辑
	require.NoError(t, env.commentSvc.DeleteComment(ctx, 2, postA.PostID, comment.CommentID))
	_, err = env.commentSvc.UpdateComment(ctx, 2, postA.PostID, comment.CommentID, &dto.UpdateCommentRequest{Content: "再改"}, nil)
	assert.ErrorIs(t, err, myErrors.ErrCannotUpdateDeletedComment)
}

func TestDeleteCommentSoftDeleteSemantics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)
	env.seedProfile(t, 3, "moderator", enums.RoleAdmin)
	post := createTestPost(t, env, 1)

	comment, err := env.commentSvc.CreateComment(ctx, 2, post.PostID, &dto.CreateCommentRequest{Content: "待删评论"}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), env.postCommentCount(t, post.PostID))

	// 没有资料镜像的操作者无法鉴权
	assert.ErrorIs(t, env.commentSvc.DeleteComment(ctx, 42, post.PostID, comment.CommentID), myErrors.ErrUserNotFound)

	// 既非作者也非管理员
	assert.ErrorIs(t, env.commentSvc.DeleteComment(ctx, 1, post.PostID, comment.CommentID), myErrors.ErrForbidden)

	// 管理员删除他人评论
	require.NoError(t, env.commentSvc.DeleteComment(ctx, 3, post.PostID, comment.CommentID))

	// 行仍在库中，内容被抹除，计数回落
	var row entities.Comment
	require.NoError(t, env.db.First(&row, comment.CommentID).Error)
	assert.True(t, row.IsDeleted)
	assert.Nil(t, row.Content)
	assert.Equal(t, int64(0), env.postCommentCount(t, post.PostID))

	// 重复删除被拒绝，计数不会变成负数
	assert.ErrorIs(t, env.commentSvc.DeleteComment(ctx, 3, post.PostID, comment.CommentID), myErrors.ErrCommentAlreadyDeleted)
	assert.Equal(t, int64(0), env.postCommentCount(t, post.PostID))
}

func TestDeleteCommentMissingOrForeign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)
	postA := createTestPost(t, env, 1)
	postB := createTestPost(t, env, 1)

	comment, err := env.commentSvc.CreateComment(ctx, 2, postA.PostID, &dto.CreateCommentRequest{Content: "评论"}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, env.commentSvc.DeleteComment(ctx, 2, postA.PostID, 99999), myErrors.ErrCommentNotFound)
	assert.ErrorIs(t, env.commentSvc.DeleteComment(ctx, 2, postB.PostID, comment.CommentID), myErrors.ErrCommentNotBelongToPost)
}

func TestDeleteCommentLosingRaceSkipsDecrement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)
	env.seedProfile(t, 2, "commenter", enums.RoleMember)
	post := createTestPost(t, env, 1)

	first, err := env.commentSvc.CreateComment(ctx, 2, post.PostID, &dto.CreateCommentRequest{Content: "第一条"}, nil)
	require.NoError(t, err)
	_, err = env.commentSvc.CreateComment(ctx, 2, post.PostID, &dto.CreateCommentRequest{Content: "第二条"}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), env.postCommentCount(t, post.PostID))

	require.NoError(t, env.commentSvc.DeleteComment(ctx, 2, post.PostID, first.CommentID))
	require.Equal(t, int64(1), env.postCommentCount(t, post.PostID))

	// 重放并发删除中后提交的那次软删除：is_deleted 守卫使 UPDATE 不命中任何行，
	// 调用方据此跳过递减，计数不会被同一条评论减两次
	rows, err := env.commentRepo.SoftDeleteComment(ctx, nil, first.CommentID)
	require.NoError(t, err)
	assert.Zero(t, rows)
	assert.Equal(t, int64(1), env.postCommentCount(t, post.PostID))
	assert.Equal(t, env.visibleCommentCount(t, post.PostID), env.postCommentCount(t, post.PostID))
}

func TestUpdateCommentCannotResurrectDeletedContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProfile(t, 1, "author", enums.RoleMember)
	post := createTestPost(t, env, 1)

	comment, err := env.commentSvc.CreateComment(ctx, 1, post.PostID, &dto.CreateCommentRequest{Content: "原始内容"}, nil)
	require.NoError(t, err)
	require.NoError(t, env.commentSvc.DeleteComment(ctx, 1, post.PostID, comment.CommentID))

	// 重放读删竞争中后到的那次内容更新：守卫条件拒绝改写已删除的评论
	resurrected := "复活的内容"
	rows, err := env.commentRepo.UpdateComment(ctx, &entities.Comment{
		ID:      comment.CommentID,
		Content: &resurrected,
	})
	require.NoError(t, err)
	assert.Zero(t, rows)

	var row entities.Comment
	require.NoError(t, env.db.First(&row, comment.CommentID).Error)
	assert.True(t, row.IsDeleted)
	assert.Nil(t, row.Content)
}

func TestHotPostTrendScore(t *testing.T) {
	post := &entities.Post{ViewCount: 5, CommentCount: 20}
	assert.Equal(t, int64(205), post.TrendScore())
}
