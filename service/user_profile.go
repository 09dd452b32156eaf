package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"

	"github.com/Xushengqwer/forum_service/models/vo"
	"github.com/Xushengqwer/forum_service/myErrors"
	"github.com/Xushengqwer/forum_service/repo/mysql"
)

// UserProfileService 定义了用户资料镜像的查询接口。
type UserProfileService interface {
	// GetUserProfileByID 查询指定用户的资料镜像。
	GetUserProfileByID(ctx context.Context, userID uint64) (*vo.AuthorVO, error)
}

// userProfileService 是 UserProfileService 接口的具体实现。
type userProfileService struct {
	profileRepo mysql.UserProfileRepository
	logger      *core.ZapLogger
}

// NewUserProfileService 是 userProfileService 的构造函数。
func NewUserProfileService(profileRepo mysql.UserProfileRepository, logger *core.ZapLogger) UserProfileService {
	return &userProfileService{
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// GetUserProfileByID 查询资料镜像并映射为展示对象。
func (s *userProfileService) GetUserProfileByID(ctx context.Context, userID uint64) (*vo.AuthorVO, error) {
	profile, err := s.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户资料失败: %w", err)
	}
	return vo.NewAuthorVOFromEntity(profile), nil
}
