package enums

// UserRole 用户角色枚举
// - 角色由身份服务（用户中心）统一分配，本服务仅做镜像，不负责角色变更。
type UserRole string

const (
	// RoleMember 普通成员
	RoleMember UserRole = "MEMBER"
	// RoleAdmin 管理员，可删除任意帖子/评论
	RoleAdmin UserRole = "ADMIN"
)

// Valid 校验角色取值是否合法
func (r UserRole) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}
