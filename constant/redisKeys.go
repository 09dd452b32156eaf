package constant

// Redis Key 相关常量 (导出)
const (
	// HotPostsRankKey 是热门帖子榜单的 Key 名称。
	// 这是一个 Sorted Set (ZSet)，成员是帖子 ID (postID)，分数是热度分
	// (view_count + comment_count * TrendCommentWeight)。
	// 由定时任务从 MySQL 中计算 Top N 后整体刷新。
	// Redis 类型: Sorted Set
	// 示例成员与分数: Member="123", Score=158; Member="456", Score=1020
	HotPostsRankKey = "hot_post_rank"
)

// 热榜刷新任务相关常量
const (
	// HotPostsRankCronSpec 热榜刷新任务的 cron 表达式（分钟级精度）。
	HotPostsRankCronSpec = "@every 5m"

	// HotPostsRankSize 热榜保留的帖子数量上限。
	HotPostsRankSize = 50
)
