package events

import "github.com/Xushengqwer/forum_service/models/enums"

// PostRef 事件中携带的帖子快照
type PostRef struct {
	PostID    uint64   `json:"post_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	FilePaths []string `json:"file_paths"`
}

// CommentRef 事件中携带的评论快照
type CommentRef struct {
	CommentID uint64   `json:"comment_id"`
	Content   string   `json:"content"`
	FilePaths []string `json:"file_paths"`
}

// PostCreatedPayload 新帖子事件载荷 (POST_CREATED)
// - 发布到 ai_comment_request 队列，触发 AI 服务为新帖自动生成评论。
type PostCreatedPayload = PostRef

// CommentMentionPayload 评论提及事件载荷 (COMMENT_MENTION)
// - 评论内容中出现提及标记时发布，携带帖子与新评论的上下文。
type CommentMentionPayload struct {
	Post    PostRef    `json:"post"`
	Comment CommentRef `json:"comment"`
}

// AICommentCreatedPayload AI 评论生成完毕事件载荷 (AI_COMMENT_CREATED)
// - 由 AI 服务发布到 ai_comment_response 队列，本服务消费后落库。
type AICommentCreatedPayload struct {
	PostID   uint64  `json:"post_id"`
	UserID   uint64  `json:"user_id"`
	Content  string  `json:"content"`
	ParentID *uint64 `json:"parent_id"`
}

// UserProfilePayload 用户资料同步事件载荷 (USER_CREATED / USER_UPDATED)
// - 由身份服务发布到 soa_user_infor 队列，结构与 UserProfile 字段对齐。
type UserProfilePayload struct {
	UserID          uint64         `json:"user_id"`
	Username        string         `json:"username"`
	Email           string         `json:"email"`
	Fullname        string         `json:"fullname"`
	AvatarImageLink string         `json:"avatar_image_link"`
	Role            enums.UserRole `json:"role"`
	IsBanned        bool           `json:"is_banned"`
}
