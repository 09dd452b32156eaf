package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Xushengqwer/forum_service/models/entities"
)

// UserProfileRepository 定义了用户资料镜像在 MySQL 中的持久化操作接口。
// 本服务不拥有用户数据，只维护一份由用户服务同步事件驱动的只读镜像。
type UserProfileRepository interface {
	// CreateProfile 持久化一条新的用户资料镜像。
	// - 对应 USER_CREATED 同步事件。
	// - 主键冲突时返回 gorm.ErrDuplicatedKey 或底层驱动的唯一键错误，由调用方决定是否忽略。
	CreateProfile(ctx context.Context, profile *entities.UserProfile) error

	// GetProfileByID 根据用户 ID 检索资料镜像。
	// - 未找到时返回 commonerrors.ErrRepoNotFound。
	GetProfileByID(ctx context.Context, userID uint64) (*entities.UserProfile, error)

	// UpsertProfile 按主键整体覆盖资料镜像，不存在则插入。
	// - 对应 USER_UPDATED 同步事件，同步语义为“以事件内容为准”。
	UpsertProfile(ctx context.Context, profile *entities.UserProfile) error

	// EnsureProfile 确保指定用户的资料镜像存在，不存在时以占位资料补建。
	// - 返回最终存在的镜像记录，以及本次调用是否发生了补建。
	// - 用于写入内容前兜底，避免同步事件乱序到达导致外键缺失。
	EnsureProfile(ctx context.Context, db *gorm.DB, placeholder *entities.UserProfile) (*entities.UserProfile, bool, error)
}

// userProfileRepository 是 UserProfileRepository 接口针对 MySQL 的具体实现。
type userProfileRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewUserProfileRepository 是 userProfileRepository 的构造函数。
func NewUserProfileRepository(db *gorm.DB, logger *core.ZapLogger) UserProfileRepository {
	return &userProfileRepository{
		db:     db,
		logger: logger,
	}
}

// CreateProfile 实现资料镜像的数据库插入操作。
func (r *userProfileRepository) CreateProfile(ctx context.Context, profile *entities.UserProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		r.logger.Error("创建用户资料镜像失败",
			zap.Uint64("userID", profile.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("创建用户资料镜像(UserID: %d)失败: %w", profile.UserID, err)
	}
	return nil
}

// GetProfileByID 根据用户 ID 查询资料镜像。
func (r *userProfileRepository) GetProfileByID(ctx context.Context, userID uint64) (*entities.UserProfile, error) {
	var profile entities.UserProfile
	err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("查询用户资料镜像失败", zap.Uint64("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("查询用户资料镜像(UserID: %d)失败: %w", userID, err)
	}
	return &profile, nil
}

// UpsertProfile 按主键覆盖写入资料镜像。
func (r *userProfileRepository) UpsertProfile(ctx context.Context, profile *entities.UserProfile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username", "email", "fullname", "avatar_image_link", "role", "is_banned", "updated_at",
			}),
		}).
		Create(profile).Error
	if err != nil {
		r.logger.Error("覆盖写入用户资料镜像失败",
			zap.Uint64("userID", profile.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("覆盖写入用户资料镜像(UserID: %d)失败: %w", profile.UserID, err)
	}
	return nil
}

// EnsureProfile 以 FirstOrCreate 语义补建缺失的资料镜像。
func (r *userProfileRepository) EnsureProfile(ctx context.Context, db *gorm.DB, placeholder *entities.UserProfile) (*entities.UserProfile, bool, error) {
	if db == nil {
		db = r.db
	}

	// 条件必须用结构体形式，FirstOrCreate 才会把 UserID 带进新建的记录。
	var profile entities.UserProfile
	result := db.WithContext(ctx).
		Where(&entities.UserProfile{UserID: placeholder.UserID}).
		Attrs(entities.UserProfile{
			Username:        placeholder.Username,
			Email:           placeholder.Email,
			Fullname:        placeholder.Fullname,
			AvatarImageLink: placeholder.AvatarImageLink,
			Role:            placeholder.Role,
		}).
		FirstOrCreate(&profile)
	if result.Error != nil {
		r.logger.Error("补建用户资料镜像失败",
			zap.Uint64("userID", placeholder.UserID),
			zap.Error(result.Error),
		)
		return nil, false, fmt.Errorf("补建用户资料镜像(UserID: %d)失败: %w", placeholder.UserID, result.Error)
	}

	created := result.RowsAffected > 0
	if created {
		r.logger.Warn("用户资料镜像缺失，已补建占位资料",
			zap.Uint64("userID", profile.UserID),
			zap.String("username", profile.Username),
		)
	}
	return &profile, created, nil
}
