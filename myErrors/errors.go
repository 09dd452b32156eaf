package myErrors

import "errors"

// ErrCacheMiss 表示在缓存层未找到对应的键值
var ErrCacheMiss = errors.New("cache: key not found (miss)")

// 领域错误种类。服务层快速失败并返回其中之一，由接口层映射为 HTTP 状态码。
// 消息侧（broker 不可达、解码失败、处理器出错）的错误不会透传到这里，
// 它们被约束在 mq 包内部：记录日志、带退避重试，重试耗尽计入死信指标。
var (
	// ErrPostNotFound 帖子不存在
	ErrPostNotFound = errors.New("POST_NOT_FOUND")

	// ErrParentCommentNotFound 回复的父评论不存在
	ErrParentCommentNotFound = errors.New("PARENT_COMMENT_NOT_FOUND")

	// ErrInvalidParentComment 父评论存在但不属于目标帖子，创建被整体拒绝，绝不静默置空
	ErrInvalidParentComment = errors.New("INVALID_PARENT_COMMENT")

	// ErrForbidden 调用者既不是资源所有者也不具备要求的角色
	ErrForbidden = errors.New("FORBIDDEN")

	// ErrFileUploadFailed 文件上传服务调用失败（含超时与非 2xx 响应）。
	// 上传是全有或全无的：任何失败都不会留下部分 URL，后续的数据库写入也不会发生。
	ErrFileUploadFailed = errors.New("FILE_UPLOAD_FAILED")

	// ErrCommentNotFound 评论不存在
	ErrCommentNotFound = errors.New("COMMENT_NOT_FOUND")

	// ErrCommentNotBelongToPost 评论存在但不属于路径中的帖子
	ErrCommentNotBelongToPost = errors.New("COMMENT_NOT_BELONG_TO_POST")

	// ErrCannotUpdateDeletedComment 已软删除的评论不可编辑
	ErrCannotUpdateDeletedComment = errors.New("CANNOT_UPDATE_DELETED_COMMENT")

	// ErrCommentAlreadyDeleted 重复删除被显式拒绝，而不是静默成功
	ErrCommentAlreadyDeleted = errors.New("COMMENT_ALREADY_DELETED")

	// ErrUserNotFound 调用者的用户资料无法解析
	ErrUserNotFound = errors.New("USER_NOT_FOUND")
)
