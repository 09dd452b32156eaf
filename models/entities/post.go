package entities

import (
	"time"

	"github.com/Xushengqwer/forum_service/constant"
)

// Post 帖子实体
//   - 使用场景: 帖子列表页与详情页的数据，作者信息通过 Author 关联投影
//   - 表名: posts
//   - 注意: 帖子删除是硬删除（同事务内级联删除其全部评论），不使用 GORM 软删除，
//     因此本实体不嵌入 gorm.DeletedAt。
type Post struct {
	// 帖子ID，主键，自增
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"post_id"`

	// 作者ID，关联 user_profiles 表
	// - GORM 标签: index 便于按作者查询
	UserID uint64 `gorm:"not null;index" json:"user_id"`

	// 标题，必填
	// - 类型: text，与原始数据保持一致，标题长度校验在接口层完成
	Title string `gorm:"type:text;not null" json:"title"`

	// 内容，必填
	Content string `gorm:"type:text;not null" json:"content"`

	// 附件URL列表，按上传顺序保存
	// - 类型: json，通过 GORM 的 json 序列化器读写
	FilePaths []string `gorm:"type:json;serializer:json" json:"file_paths"`

	// 浏览量，详情页每次成功访问 +1，更新必须使用数据库原子自增
	ViewCount int64 `gorm:"not null;default:0" json:"view_count"`

	// 评论数，派生缓存值
	// - 不变量: 恒等于该帖子下 is_deleted = false 的评论数
	// - 同步写入路径（发评论）和异步写入路径（AI 评论）都会更新它，
	//   必须使用数据库原子自增/自减，禁止读改写
	CommentCount int64 `gorm:"not null;default:0" json:"comment_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 作者投影，查询时按需 Preload
	Author *UserProfile `gorm:"foreignKey:UserID;references:UserID" json:"author,omitempty"`
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}

// TrendScore 计算帖子的热度分。
func (p *Post) TrendScore() int64 {
	return p.ViewCount + p.CommentCount*constant.TrendCommentWeight
}
