package entities

import (
	"fmt"
	"time"

	"github.com/Xushengqwer/forum_service/models/enums"
)

// UserProfile 用户资料镜像实体
//   - 使用场景: 帖子/评论的作者投影展示，以及删除评论时的角色鉴权
//   - 表名: user_profiles
//   - 注意: user_id 由外部身份服务分配，本服务只通过 soa_user_infor 队列同步，
//     或在收到未知用户的帖子/评论时以占位数据兜底创建，永不删除。
type UserProfile struct {
	// 用户ID，主键，外部分配，禁用自增
	UserID uint64 `gorm:"column:user_id;primaryKey;autoIncrement:false" json:"user_id"`

	// 用户名
	// - 类型: varchar(50)，与用户中心约定的用户名长度上限一致
	Username string `gorm:"type:varchar(50)" json:"username"`

	// 邮箱
	Email string `gorm:"type:varchar(255)" json:"email"`

	// 全名，可为空（占位创建时为空）
	Fullname string `gorm:"type:text" json:"fullname"`

	// 头像链接
	AvatarImageLink string `gorm:"type:varchar(255)" json:"avatar_image_link"`

	// 角色，MEMBER 或 ADMIN
	// - GORM 标签: default:'MEMBER' 保证占位创建时为普通成员
	Role enums.UserRole `gorm:"type:varchar(16);default:'MEMBER'" json:"role"`

	// 是否被封禁
	IsBanned bool `gorm:"not null;default:false" json:"is_banned"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (UserProfile) TableName() string {
	return "user_profiles"
}

// NewPlaceholderProfile 构造占位资料，用于同步事件尚未到达时兜底建档。
// 占位字段遵循约定格式，后续 USER_UPDATED 事件会以真实资料覆盖。
func NewPlaceholderProfile(userID uint64) *UserProfile {
	return &UserProfile{
		UserID:   userID,
		Username: fmt.Sprintf("user_%d", userID),
		Email:    fmt.Sprintf("user%d@example.com", userID),
		Role:     enums.RoleMember,
	}
}
