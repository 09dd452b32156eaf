package dto

import "strconv"

// CreateCommentRequest 定义了创建评论的请求数据结构
// - ParentID 以字符串表单字段传递：空串或 "null" 表示顶层评论（前端的"无父评论"哨兵值），
//   其余取值必须是同一帖子下某条评论的ID，由服务层校验。
type CreateCommentRequest struct {
	Content  string `json:"content" form:"content" binding:"required"` // 评论内容，必填
	ParentID string `json:"parent_id" form:"parent_id"`                // 父评论ID，可选
}

// ResolveParentID 解析父评论ID表单值。
// - 空串或 "null" 返回 nil，表示顶层评论。
// - 非法数字返回错误，由调用方映射为父评论不存在。
func (r *CreateCommentRequest) ResolveParentID() (*uint64, error) {
	if r.ParentID == "" || r.ParentID == "null" {
		return nil, nil
	}
	id, err := strconv.ParseUint(r.ParentID, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ListCommentsRequest 定义了评论列表查询的请求数据结构（固定每页 10 条，时间正序）
type ListCommentsRequest struct {
	Page int `json:"page" form:"page,default=1" binding:"omitempty,gte=1"` // 页码，从1开始
}

// UpdateCommentRequest 定义了更新评论的请求数据结构
// - 附件处理与帖子更新一致：保留的旧URL + 新上传URL。
type UpdateCommentRequest struct {
	Content      string   `json:"content" form:"content" binding:"required"` // 评论内容，必填
	OldFilePaths []string `json:"old_file_paths" form:"old_file_paths"`      // 保留的旧附件URL列表，可为空
}
