package vo

import (
	"time"

	"github.com/Xushengqwer/forum_service/models/entities"
	"github.com/Xushengqwer/forum_service/models/enums"
)

// AuthorVO 作者投影，帖子与评论共用
// - 字段来源于 user_profiles 镜像表，冗余展示避免跨服务调用
type AuthorVO struct {
	UserID          uint64         `json:"user_id"`           // 作者ID
	Username        string         `json:"username"`          // 用户名
	Fullname        string         `json:"fullname"`          // 全名
	AvatarImageLink string         `json:"avatar_image_link"` // 头像链接
	Role            enums.UserRole `json:"role"`              // 角色
}

// PostVO 定义了帖子信息的响应数据结构
type PostVO struct {
	PostID       uint64    `json:"post_id"`          // 帖子ID
	UserID       uint64    `json:"user_id"`          // 作者ID
	Title        string    `json:"title"`            // 标题
	Content      string    `json:"content"`          // 内容
	FilePaths    []string  `json:"file_paths"`       // 附件URL列表
	ViewCount    int64     `json:"view_count"`       // 浏览量
	CommentCount int64     `json:"comment_count"`    // 评论数
	CreatedAt    time.Time `json:"created_at"`       // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`       // 更新时间
	Author       *AuthorVO `json:"author,omitempty"` // 作者投影
}

// PostListVO 定义了帖子列表的分页响应结构
// - Total 为满足筛选条件的总记录数，供前端计算总页数
type PostListVO struct {
	Posts []*PostVO `json:"posts"` // 当前页的帖子列表
	Total int64     `json:"total"` // 总记录数
	Page  int       `json:"page"`  // 当前页码
	Limit int       `json:"limit"` // 每页数量（固定为10）
}

// NewAuthorVOFromEntity 将用户资料实体转换为作者投影
func NewAuthorVOFromEntity(user *entities.UserProfile) *AuthorVO {
	if user == nil {
		return nil
	}
	return &AuthorVO{
		UserID:          user.UserID,
		Username:        user.Username,
		Fullname:        user.Fullname,
		AvatarImageLink: user.AvatarImageLink,
		Role:            user.Role,
	}
}

// NewPostVOFromEntity 将帖子实体转换为响应VO
func NewPostVOFromEntity(post *entities.Post) *PostVO {
	if post == nil {
		return nil
	}
	filePaths := post.FilePaths
	if filePaths == nil {
		filePaths = []string{} // 返回空切片而不是nil，便于前端处理
	}
	return &PostVO{
		PostID:       post.ID,
		UserID:       post.UserID,
		Title:        post.Title,
		Content:      post.Content,
		FilePaths:    filePaths,
		ViewCount:    post.ViewCount,
		CommentCount: post.CommentCount,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
		Author:       NewAuthorVOFromEntity(post.Author),
	}
}

// MapPostsToPostVOs 是一个辅助函数，用于将帖子实体列表转换为响应VO列表。
func MapPostsToPostVOs(posts []*entities.Post) []*PostVO {
	if len(posts) == 0 {
		return []*PostVO{}
	}
	responses := make([]*PostVO, 0, len(posts))
	for _, post := range posts {
		if post == nil { // 安全检查，尽管不太可能发生
			continue
		}
		responses = append(responses, NewPostVOFromEntity(post))
	}
	return responses
}
