package entities

import "time"

// Comment 评论实体
//   - 使用场景: 帖子下的评论与楼中楼回复，支持作者投影与父评论投影
//   - 表名: comments
//   - 关系: 与 Post 多对一（OnDelete:CASCADE 级联删除），与自身通过 parent_id 构成回复树
//   - 注意: 评论删除是软删除（is_deleted 置位 + 清空内容），行和楼层位置保留，
//     与帖子的硬删除语义不同。
type Comment struct {
	// 评论ID，主键，自增
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"comment_id"`

	// 所属帖子ID，必填
	// - GORM 标签: index 优化按帖子查询评论列表的性能
	PostID uint64 `gorm:"not null;index" json:"post_id"`

	// 作者ID
	UserID uint64 `gorm:"not null;index" json:"user_id"`

	// 父评论ID，可为空；非空时必须指向同一帖子下的评论（创建时校验，违规直接拒绝）
	ParentID *uint64 `gorm:"index" json:"parent_id"`

	// 内容，软删除后被不可逆地置空
	Content *string `gorm:"type:text" json:"content"`

	// 附件URL列表，软删除后被不可逆地置空
	FilePaths []string `gorm:"type:json;serializer:json" json:"file_paths"`

	// 软删除标记，单向 false→true，置位后任何操作不得复原内容
	IsDeleted bool `gorm:"not null;default:false" json:"is_deleted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 所属帖子，仅用于声明级联删除约束
	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`

	// 作者投影，查询时按需 Preload
	Author *UserProfile `gorm:"foreignKey:UserID;references:UserID" json:"author,omitempty"`

	// 父评论投影（含其作者），父评论已软删除时内容字段为空但身份字段仍然展示
	Parent *Comment `gorm:"foreignKey:ParentID;references:ID" json:"parent,omitempty"`
}

// TableName 指定表名
func (Comment) TableName() string {
	return "comments"
}
