package constant

// 服务标识，用于链路追踪和日志标记
const (
	ServiceName    = "forum_service"
	ServiceVersion = "1.0.0"
)
