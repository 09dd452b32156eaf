package consumer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Xushengqwer/forum_service/models/entities"
	"github.com/Xushengqwer/forum_service/models/enums"
	"github.com/Xushengqwer/forum_service/models/events"
	"github.com/Xushengqwer/forum_service/repo/mysql"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.UserProfile{}, &entities.Post{}, &entities.Comment{}))
	return db
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestAICommentHandlerCreatesCommentAndIncrementsCount(t *testing.T) {
	db := setupTestDB(t)
	logger := newTestLogger(t)
	postRepo := mysql.NewPostRepository(db, logger)
	commentRepo := mysql.NewCommentRepository(db, logger)
	profileRepo := mysql.NewUserProfileRepository(db, logger)

	require.NoError(t, db.Create(&entities.UserProfile{UserID: 1, Username: "author"}).Error)
	post := &entities.Post{UserID: 1, Title: "标题", Content: "正文"}
	require.NoError(t, db.Create(post).Error)

	handler := NewAICommentHandler(db, postRepo, commentRepo, profileRepo, logger)
	payload := mustMarshal(t, events.AICommentCreatedPayload{
		PostID:  post.ID,
		UserID:  99,
		Content: "AI 生成的评论",
	})
	require.NoError(t, handler.HandleAICommentCreated(context.Background(), payload))

	// 评论已落库
	var comments []entities.Comment
	require.NoError(t, db.Where("post_id = ?", post.ID).Find(&comments).Error)
	require.Len(t, comments, 1)
	assert.Equal(t, uint64(99), comments[0].UserID)
	require.NotNil(t, comments[0].Content)
	assert.Equal(t, "AI 生成的评论", *comments[0].Content)

	// 评论计数同步递增
	var reloaded entities.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, int64(1), reloaded.CommentCount)

	// AI 用户的占位资料被补建
	var profile entities.UserProfile
	require.NoError(t, db.First(&profile, "user_id = ?", 99).Error)
	assert.Equal(t, "user_99", profile.Username)
	assert.Equal(t, enums.RoleMember, profile.Role)
}

func TestAICommentHandlerDropsEventForMissingPost(t *testing.T) {
	db := setupTestDB(t)
	logger := newTestLogger(t)
	handler := NewAICommentHandler(db,
		mysql.NewPostRepository(db, logger),
		mysql.NewCommentRepository(db, logger),
		mysql.NewUserProfileRepository(db, logger),
		logger,
	)

	payload := mustMarshal(t, events.AICommentCreatedPayload{
		PostID:  12345,
		UserID:  99,
		Content: "迟到的 AI 评论",
	})
	// 帖子已删除属于正常竞态，事件应被静默丢弃而不是报错重试
	require.NoError(t, handler.HandleAICommentCreated(context.Background(), payload))

	var count int64
	require.NoError(t, db.Model(&entities.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAICommentHandlerDropsMalformedPayload(t *testing.T) {
	db := setupTestDB(t)
	logger := newTestLogger(t)
	handler := NewAICommentHandler(db,
		mysql.NewPostRepository(db, logger),
		mysql.NewCommentRepository(db, logger),
		mysql.NewUserProfileRepository(db, logger),
		logger,
	)

	assert.NoError(t, handler.HandleAICommentCreated(context.Background(), json.RawMessage(`{"post_id":"oops"}`)))
	assert.NoError(t, handler.HandleAICommentCreated(context.Background(), mustMarshal(t, events.AICommentCreatedPayload{})))
}

func TestUserSyncHandlerCreateAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	logger := newTestLogger(t)
	profileRepo := mysql.NewUserProfileRepository(db, logger)
	handler := NewUserSyncHandler(profileRepo, logger)

	created := mustMarshal(t, events.UserProfilePayload{
		UserID:   7,
		Username: "alice",
		Email:    "alice@example.com",
		Role:     "MEMBER",
	})
	require.NoError(t, handler.HandleUserCreated(context.Background(), created))

	var profile entities.UserProfile
	require.NoError(t, db.First(&profile, "user_id = ?", 7).Error)
	assert.Equal(t, "alice", profile.Username)

	// 重复的创建事件应被忽略而不是报错
	require.NoError(t, handler.HandleUserCreated(context.Background(), created))

	updated := mustMarshal(t, events.UserProfilePayload{
		UserID:   7,
		Username: "alice_new",
		Email:    "alice.new@example.com",
		Role:     "ADMIN",
	})
	require.NoError(t, handler.HandleUserUpdated(context.Background(), updated))

	require.NoError(t, db.First(&profile, "user_id = ?", 7).Error)
	assert.Equal(t, "alice_new", profile.Username)
	assert.Equal(t, enums.RoleAdmin, profile.Role)
}

func TestUserSyncHandlerUpdateInsertsWhenMissing(t *testing.T) {
	db := setupTestDB(t)
	logger := newTestLogger(t)
	handler := NewUserSyncHandler(mysql.NewUserProfileRepository(db, logger), logger)

	payload := mustMarshal(t, events.UserProfilePayload{
		UserID:   8,
		Username: "bob",
		Role:     "MEMBER",
	})
	require.NoError(t, handler.HandleUserUpdated(context.Background(), payload))

	var profile entities.UserProfile
	require.NoError(t, db.First(&profile, "user_id = ?", 8).Error)
	assert.Equal(t, "bob", profile.Username)
}
