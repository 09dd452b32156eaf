package dto

// CreatePostRequest 定义了创建帖子的请求数据结构
// - 添加了 binding 标签用于输入验证
// - 注意：这里没有文件字段，附件是 multipart/form-data 的 "files" 部分，
//   由控制器读入内存后交给上传网关，后端按接收顺序处理。
type CreatePostRequest struct {
	Title   string `json:"title" form:"title" binding:"required,max=255"`     // 帖子标题，必填，最大255字符
	Content string `json:"content" form:"content" binding:"required"`         // 帖子内容，必填
}

// ListPostsRequest 定义了帖子列表查询的请求数据结构（页码分页，固定每页 10 条）
type ListPostsRequest struct {
	Search string `json:"search" form:"search" binding:"omitempty,max=255"`                   // 标题模糊搜索关键词，可选
	Page   int    `json:"page" form:"page,default=1" binding:"omitempty,gte=1"`               // 页码，从1开始
	Filter string `json:"filter" form:"filter,default=ALL" binding:"omitempty,oneof=ALL MEMBER ADMIN"` // 按作者角色筛选，ALL 表示不限制
	Sort   string `json:"sort" form:"sort,default=time" binding:"omitempty,oneof=time trend"` // 排序方式：time=最新，trend=热度分
}

// UpdatePostRequest 定义了更新帖子的请求数据结构
// - OldFilePaths 是本次更新后仍然保留的旧附件URL；新附件作为 "new_files" 文件部分上传，
//   最终附件列表 = 保留的旧URL + 新上传URL（按该顺序拼接）。
type UpdatePostRequest struct {
	Title        string   `json:"title" form:"title" binding:"required,max=255"` // 帖子标题，必填
	Content      string   `json:"content" form:"content" binding:"required"`     // 帖子内容，必填
	OldFilePaths []string `json:"old_file_paths" form:"old_file_paths"`          // 保留的旧附件URL列表，可为空
}
