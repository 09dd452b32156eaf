// Package metrics 集中注册本服务的 Prometheus 指标。
// 主要用于监控几类"可接受但需要关注"的异常路径：
// 未知用户兜底建档、AI 评论因帖子已删除被丢弃、上传失败、消息死信。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AutoProvisionedProfiles 收到未知 user_id 的帖子/评论时兜底创建占位资料的次数。
	// 次数持续上涨通常意味着 soa_user_infor 同步链路丢事件，需要排查身份服务侧。
	AutoProvisionedProfiles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_auto_provisioned_profiles_total",
		Help: "以占位数据兜底创建的用户资料数量",
	})

	// AICommentsDropped AI 评论响应到达时目标帖子已不存在而被静默丢弃的次数。
	AICommentsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_ai_comments_dropped_total",
		Help: "因帖子已删除而被丢弃的 AI 评论事件数量",
	})

	// UploadFailures 上传网关调用失败（传输错误、超时或非 2xx 响应）的次数。
	UploadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_upload_failures_total",
		Help: "文件上传服务调用失败次数",
	})

	// DeadLetteredMessages 重试耗尽后被放弃并提交 offset 的消息数量，按队列区分。
	DeadLetteredMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_dead_lettered_messages_total",
		Help: "重试耗尽后被丢弃的消息数量",
	}, []string{"queue"})

	// MessageRetries 消息处理失败触发的重试次数，按队列区分。
	MessageRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_message_retries_total",
		Help: "消息处理失败后的重试次数",
	}, []string{"queue"})
)
