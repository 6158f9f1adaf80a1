package model

import "bugtrack/pkg/constants"

const CommentTableName = "comments"
const ReplyTableName = "replies"

// Comment 顶层评论
// 用户侧的"删除"只打墓碑(正文替换+状态翻转), 行记录仅随项目/Issue级联物理删除。
type Comment struct {
	BaseModel
	IssueID  int64  `gorm:"column:issue_id;not null;index" json:"issue_id"`
	AuthorID int64  `gorm:"column:author_id;not null;index" json:"author_id"`
	Text     string `gorm:"type:text;not null" json:"text"`
	Status   int8   `gorm:"not null;default:1" json:"status"` // 1:正常 0:已删除

	// Relations
	Issue   *Issue  `gorm:"foreignKey:IssueID" json:"issue,omitempty"`
	Author  *User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Replies []Reply `gorm:"foreignKey:CommentID;references:ID" json:"replies,omitempty"`
}

func (Comment) TableName() string {
	return CommentTableName
}

// IsDeleted 评论是否已打墓碑
func (c *Comment) IsDeleted() bool {
	return c.Status == constants.CommentStatusDeleted
}

// Reply 评论的回复, 软删除语义与 Comment 相同
type Reply struct {
	BaseModel
	CommentID int64  `gorm:"column:comment_id;not null;index" json:"comment_id"`
	AuthorID  int64  `gorm:"column:author_id;not null;index" json:"author_id"`
	Text      string `gorm:"type:text;not null" json:"text"`
	Status    int8   `gorm:"not null;default:1" json:"status"` // 1:正常 0:已删除

	// Relations
	Comment *Comment `gorm:"foreignKey:CommentID" json:"comment,omitempty"`
	Author  *User    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Reply) TableName() string {
	return ReplyTableName
}

// IsDeleted 回复是否已打墓碑
func (r *Reply) IsDeleted() bool {
	return r.Status == constants.CommentStatusDeleted
}
