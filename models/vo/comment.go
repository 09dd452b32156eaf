package vo

import (
	"time"

	"github.com/Xushengqwer/forum_service/models/entities"
)

// ParentCommentVO 父评论投影
// - 父评论已被软删除时 Content/FilePaths 为空，但身份字段（作者）仍然展示，
//   以便前端渲染"回复了某人的已删除评论"。
type ParentCommentVO struct {
	CommentID uint64    `json:"comment_id"`       // 父评论ID
	UserID    uint64    `json:"user_id"`          // 父评论作者ID
	Content   *string   `json:"content"`          // 内容，已删除时为 null
	FilePaths []string  `json:"file_paths"`       // 附件，已删除时为 null
	IsDeleted bool      `json:"is_deleted"`       // 软删除标记
	Author    *AuthorVO `json:"author,omitempty"` // 作者投影
}

// CommentVO 定义了评论信息的响应数据结构
type CommentVO struct {
	CommentID uint64           `json:"comment_id"`       // 评论ID
	PostID    uint64           `json:"post_id"`          // 所属帖子ID
	UserID    uint64           `json:"user_id"`          // 作者ID
	ParentID  *uint64          `json:"parent_id"`        // 父评论ID，顶层评论为 null
	Content   *string          `json:"content"`          // 内容
	FilePaths []string         `json:"file_paths"`       // 附件URL列表
	IsDeleted bool             `json:"is_deleted"`       // 软删除标记
	CreatedAt time.Time        `json:"created_at"`       // 创建时间
	UpdatedAt time.Time        `json:"updated_at"`       // 更新时间
	Author    *AuthorVO        `json:"author,omitempty"` // 作者投影
	Parent    *ParentCommentVO `json:"parent,omitempty"` // 父评论投影，顶层评论为空
}

// CommentListVO 定义了评论列表的分页响应结构
type CommentListVO struct {
	Comments    []*CommentVO `json:"comments"`     // 当前页的评论列表（时间正序，最旧在前）
	TotalItems  int64        `json:"total_items"`  // 未删除评论总数
	Limit       int          `json:"limit"`        // 每页数量（固定为10）
	CurrentPage int          `json:"current_page"` // 当前页码
}

// NewCommentVOFromEntity 将评论实体转换为响应VO
func NewCommentVOFromEntity(comment *entities.Comment) *CommentVO {
	if comment == nil {
		return nil
	}
	commentVO := &CommentVO{
		CommentID: comment.ID,
		PostID:    comment.PostID,
		UserID:    comment.UserID,
		ParentID:  comment.ParentID,
		Content:   comment.Content,
		FilePaths: comment.FilePaths,
		IsDeleted: comment.IsDeleted,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
		Author:    NewAuthorVOFromEntity(comment.Author),
	}
	if comment.Parent != nil {
		commentVO.Parent = &ParentCommentVO{
			CommentID: comment.Parent.ID,
			UserID:    comment.Parent.UserID,
			Content:   comment.Parent.Content,
			FilePaths: comment.Parent.FilePaths,
			IsDeleted: comment.Parent.IsDeleted,
			Author:    NewAuthorVOFromEntity(comment.Parent.Author),
		}
	}
	return commentVO
}

// MapCommentsToCommentVOs 将评论实体列表转换为响应VO列表。
func MapCommentsToCommentVOs(comments []*entities.Comment) []*CommentVO {
	if len(comments) == 0 {
		return []*CommentVO{}
	}
	responses := make([]*CommentVO, 0, len(comments))
	for _, comment := range comments {
		if comment == nil {
			continue
		}
		responses = append(responses, NewCommentVOFromEntity(comment))
	}
	return responses
}
