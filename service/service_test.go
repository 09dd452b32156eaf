package service

import (
	"context"
	"sync"
	"testing"

	commonConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Xushengqwer/forum_service/dependencies"
	"github.com/Xushengqwer/forum_service/models/entities"
	"github.com/Xushengqwer/forum_service/models/enums"
	"github.com/Xushengqwer/forum_service/repo/mysql"
)

// fakeUploader 以文件名拼接可预测的 URL，或按配置整体失败。
type fakeUploader struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeUploader) Upload(_ context.Context, files []dependencies.UploadFile) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(files) == 0 {
		return []string{}, nil
	}
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	urls := make([]string, len(files))
	for i, file := range files {
		urls[i] = "http://cdn.test/" + file.Name
	}
	return urls, nil
}

// recordedEvent 记录一次事件发布。
type recordedEvent struct {
	queue     string
	eventType string
	payload   interface{}
}

// fakeProducer 捕获事件发布供断言，永不失败。
type fakeProducer struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeProducer) Publish(_ context.Context, queue string, eventType string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{queue: queue, eventType: eventType, payload: payload})
	return nil
}

func (f *fakeProducer) SendAICommentRequestEvent(ctx context.Context, eventType string, payload interface{}) error {
	return f.Publish(ctx, "ai_comment_request", eventType, payload)
}

func (f *fakeProducer) Close() error { return nil }

func (f *fakeProducer) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.eventType)
	}
	return types
}

// testEnv 聚合一套基于内存 SQLite 的完整服务栈。
type testEnv struct {
	db          *gorm.DB
	uploader    *fakeUploader
	producer    *fakeProducer
	postSvc     PostService
	commentSvc  CommentService
	profileSvc  UserProfileService
	profileRepo mysql.UserProfileRepository
	commentRepo mysql.CommentRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger, err := core.NewZapLogger(commonConfig.ZapConfig{})
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.UserProfile{}, &entities.Post{}, &entities.Comment{}))

	uploader := &fakeUploader{}
	fakeKafka := &fakeProducer{}
	postRepo := mysql.NewPostRepository(db, logger)
	commentRepo := mysql.NewCommentRepository(db, logger)
	profileRepo := mysql.NewUserProfileRepository(db, logger)

	return &testEnv{
		db:          db,
		uploader:    uploader,
		producer:    fakeKafka,
		postSvc:     NewPostService(db, postRepo, profileRepo, uploader, fakeKafka, logger),
		commentSvc:  NewCommentService(db, postRepo, commentRepo, profileRepo, uploader, fakeKafka, logger),
		profileSvc:  NewUserProfileService(profileRepo, logger),
		profileRepo: profileRepo,
		commentRepo: commentRepo,
	}
}

// seedProfile 预置一条用户资料镜像。
func (env *testEnv) seedProfile(t *testing.T, userID uint64, username string, role enums.UserRole) {
	t.Helper()
	require.NoError(t, env.db.Create(&entities.UserProfile{
		UserID:   userID,
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}).Error)
}

// visibleCommentCount 查询帖子下未删除的评论数，用于校验计数不变式。
func (env *testEnv) visibleCommentCount(t *testing.T, postID uint64) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.db.Model(&entities.Comment{}).
		Where("post_id = ? AND is_deleted = ?", postID, false).
		Count(&count).Error)
	return count
}

// postCommentCount 读取帖子行上的评论计数字段。
func (env *testEnv) postCommentCount(t *testing.T, postID uint64) int64 {
	t.Helper()
	var post entities.Post
	require.NoError(t, env.db.First(&post, postID).Error)
	return post.CommentCount
}
