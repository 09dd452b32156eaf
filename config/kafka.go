package config

type KafkaConfig struct {
	Brokers         []string `mapstructure:"brokers" json:"brokers" yaml:"brokers"`
	Queues          Queues   `mapstructure:"queues" json:"queues" yaml:"queues"`
	ConsumerGroupID string   `mapstructure:"consumer_group_id" json:"consumer_group_id" yaml:"consumer_group_id"`

	// MaxRetries 单条消息处理失败后的最大重试次数，超过后计入死信并提交 offset。
	MaxRetries int `mapstructure:"max_retries" json:"max_retries" yaml:"max_retries"`

	// HandlerTimeoutSeconds 单条消息处理的超时秒数，超时视为处理失败并触发重试。
	HandlerTimeoutSeconds int `mapstructure:"handler_timeout_seconds" json:"handler_timeout_seconds" yaml:"handler_timeout_seconds"`
}

// Queues 本服务使用的三条持久化队列
type Queues struct {
	AICommentRequest  string `mapstructure:"aiCommentRequest" yaml:"aiCommentRequest"`   // 核心 → AI 服务，自动评论请求
	AICommentResponse string `mapstructure:"aiCommentResponse" yaml:"aiCommentResponse"` // AI 服务 → 核心，生成的评论
	UserInfoSync      string `mapstructure:"userInfoSync" yaml:"userInfoSync"`           // 身份服务 → 核心，用户资料同步
}
