package config

// UploadConfig 文件上传服务（内部对象存储网关）配置
// - 上传服务是一个黑盒 HTTP 服务：multipart POST 多个文件部分，
//   成功响应 {"urls": [...]}，顺序与提交顺序一致。
type UploadConfig struct {
	// Endpoint 上传接口完整地址，例如 http://file-service:3004/files/upload
	Endpoint string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`

	// TimeoutSeconds 单次上传调用的超时秒数。
	// 上传是阻塞的外部 I/O，必须有界；超时按 FILE_UPLOAD_FAILED 处理。
	// 调用发生在任何数据库事务之外，慢上传不会占用数据库锁。
	TimeoutSeconds int `mapstructure:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`
}
