package mysql

import (
	"context"
	"testing"

	commonConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Xushengqwer/forum_service/models/entities"
	"github.com/Xushengqwer/forum_service/models/enums"
)

func setupProfileRepo(t *testing.T) (*gorm.DB, UserProfileRepository) {
	t.Helper()
	logger, err := core.NewZapLogger(commonConfig.ZapConfig{})
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.UserProfile{}))
	return db, NewUserProfileRepository(db, logger)
}

func TestEnsureProfileCarriesUserIDIntoCreatedRow(t *testing.T) {
	db, repo := setupProfileRepo(t)
	ctx := context.Background()

	profile, created, err := repo.EnsureProfile(ctx, nil, entities.NewPlaceholderProfile(10))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint64(10), profile.UserID)

	// 新建的行必须落在 user_id = 10 上，而不是零值主键
	var row entities.UserProfile
	require.NoError(t, db.Where("user_id = ?", uint64(10)).First(&row).Error)
	assert.Equal(t, "user_10", row.Username)
	assert.Equal(t, "user10@example.com", row.Email)
	assert.Equal(t, enums.RoleMember, row.Role)
}

func TestEnsureProfileProvisionsMultipleUnknownUsers(t *testing.T) {
	db, repo := setupProfileRepo(t)
	ctx := context.Background()

	for _, userID := range []uint64{2, 10, 99} {
		profile, created, err := repo.EnsureProfile(ctx, nil, entities.NewPlaceholderProfile(userID))
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, userID, profile.UserID)
	}

	var total int64
	require.NoError(t, db.Model(&entities.UserProfile{}).Count(&total).Error)
	assert.Equal(t, int64(3), total)
}

func TestEnsureProfileIsIdempotentAndKeepsExistingData(t *testing.T) {
	db, repo := setupProfileRepo(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&entities.UserProfile{
		UserID:   7,
		Username: "real_name",
		Email:    "real@example.com",
		Role:     enums.RoleAdmin,
	}).Error)

	profile, created, err := repo.EnsureProfile(ctx, nil, entities.NewPlaceholderProfile(7))
	require.NoError(t, err)
	assert.False(t, created)
	// 已同步的真实资料不被占位数据覆盖
	assert.Equal(t, "real_name", profile.Username)
	assert.Equal(t, enums.RoleAdmin, profile.Role)
}
