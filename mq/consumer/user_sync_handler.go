package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/forum_service/models/entities"
	"github.com/Xushengqwer/forum_service/models/enums"
	"github.com/Xushengqwer/forum_service/models/events"
	"github.com/Xushengqwer/forum_service/repo/mysql"
)

// UserSyncHandler 消费用户服务发布的资料同步事件，维护本地资料镜像。
type UserSyncHandler struct {
	profileRepo mysql.UserProfileRepository
	logger      *core.ZapLogger
}

// NewUserSyncHandler 创建用户同步事件处理器。
func NewUserSyncHandler(profileRepo mysql.UserProfileRepository, logger *core.ZapLogger) *UserSyncHandler {
	return &UserSyncHandler{
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// HandleUserCreated 消费 USER_CREATED 事件，插入新的资料镜像。
// 镜像已存在（例如占位资料先行创建）时记录并忽略，等待后续 USER_UPDATED 覆盖。
func (h *UserSyncHandler) HandleUserCreated(ctx context.Context, payload json.RawMessage) error {
	profile, err := h.decodeProfile(payload)
	if err != nil {
		h.logger.Error("用户创建事件载荷解析失败，已丢弃", zap.Error(err))
		return nil
	}

	if err := h.profileRepo.CreateProfile(ctx, profile); err != nil {
		if isDuplicateKeyError(err) {
			h.logger.Warn("用户资料镜像已存在，忽略创建事件",
				zap.Uint64("userID", profile.UserID),
			)
			return nil
		}
		return fmt.Errorf("同步用户创建事件(UserID: %d)失败: %w", profile.UserID, err)
	}

	h.logger.Info("用户资料镜像已创建", zap.Uint64("userID", profile.UserID))
	return nil
}

// HandleUserUpdated 消费 USER_UPDATED 事件，按事件内容整体覆盖镜像。
func (h *UserSyncHandler) HandleUserUpdated(ctx context.Context, payload json.RawMessage) error {
	profile, err := h.decodeProfile(payload)
	if err != nil {
		h.logger.Error("用户更新事件载荷解析失败，已丢弃", zap.Error(err))
		return nil
	}

	if err := h.profileRepo.UpsertProfile(ctx, profile); err != nil {
		return fmt.Errorf("同步用户更新事件(UserID: %d)失败: %w", profile.UserID, err)
	}

	h.logger.Info("用户资料镜像已更新", zap.Uint64("userID", profile.UserID))
	return nil
}

// decodeProfile 解析资料载荷并校验必要字段。
func (h *UserSyncHandler) decodeProfile(payload json.RawMessage) (*entities.UserProfile, error) {
	var event events.UserProfilePayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	if event.UserID == 0 {
		return nil, fmt.Errorf("载荷缺少 user_id")
	}

	role := enums.UserRole(event.Role)
	if !role.Valid() {
		role = enums.RoleMember
	}

	return &entities.UserProfile{
		UserID:          event.UserID,
		Username:        event.Username,
		Email:           event.Email,
		Fullname:        event.Fullname,
		AvatarImageLink: event.AvatarImageLink,
		Role:            role,
		IsBanned:        event.IsBanned,
	}, nil
}

// isDuplicateKeyError 判断错误是否为主键/唯一键冲突。
// gorm 在 MySQL 与 SQLite 上分别翻译为 ErrDuplicatedKey，保底再匹配驱动错误文案。
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
