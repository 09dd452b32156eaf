package constant

// 论坛业务相关常量
const (
	// DefaultPageSize 帖子列表和评论列表的固定分页大小。
	// - 与前端约定一致，分页接口不接受自定义 pageSize。
	DefaultPageSize = 10

	// TrendCommentWeight 热度分计算时评论数的权重。
	// - 热度分 = view_count + comment_count * TrendCommentWeight
	TrendCommentWeight = 10

	// MentionMarker 评论内容中触发 AI 回复的提及标记（匹配时不区分大小写）。
	MentionMarker = "@uetfa"
)

// 事件类型，随 Envelope 在消息队列中传递
const (
	EventTypePostCreated      = "POST_CREATED"
	EventTypeCommentMention   = "COMMENT_MENTION"
	EventTypeAICommentCreated = "AI_COMMENT_CREATED"
	EventTypeUserCreated      = "USER_CREATED"
	EventTypeUserUpdated      = "USER_UPDATED"
)
