package model

import (
	"time"

	"gorm.io/datatypes"
)

const IssueTableName = "issues"
const IssueAssigneeTableName = "issue_assignees"

// Issue 问题单模型
// num 是项目内 1 起始的单调序号, 创建时在插入事务内计算一次, 之后不再变化。
// assigned_users(IssueAssignee) 是比 assignee 更宽的访问名单:
// 创建后必须包含提交人、被指派人以及项目成员中的所有项目经理。
type Issue struct {
	BaseModel
	ProjectID   int64   `gorm:"column:project_id;not null;uniqueIndex:idx_project_num;index" json:"project_id"`
	Num         int64   `gorm:"not null;uniqueIndex:idx_project_num" json:"num"`
	Title       string  `gorm:"size:150;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Priority    int8    `gorm:"not null;default:3" json:"priority"` // 1最高 5最低
	Status      string  `gorm:"size:9;not null;default:open;index" json:"status"`
	IssueType   string  `gorm:"size:7;not null;default:bug" json:"issue_type"`
	Tag         *string `gorm:"size:40" json:"tag,omitempty"`

	SubmitterID int64  `gorm:"column:submitter_id;not null;index" json:"submitter_id"`
	AssigneeID  *int64 `gorm:"column:assignee_id;index" json:"assignee_id,omitempty"`

	DateClosed *time.Time     `gorm:"column:date_closed" json:"date_closed,omitempty"`
	Attachment datatypes.JSON `gorm:"type:json" json:"attachment,omitempty"` // 附件元数据, 文件本体不落库

	// Relations
	Project   *Project        `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Submitter *User           `gorm:"foreignKey:SubmitterID" json:"submitter,omitempty"`
	Assignee  *User           `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Assignees []IssueAssignee `gorm:"foreignKey:IssueID;references:ID" json:"assignees,omitempty"`
}

func (Issue) TableName() string {
	return IssueTableName
}

// IssueAssignee Issue访问名单成员
type IssueAssignee struct {
	BaseModel
	IssueID int64 `gorm:"column:issue_id;not null;uniqueIndex:idx_issue_user" json:"issue_id"`
	UserID  int64 `gorm:"column:user_id;not null;uniqueIndex:idx_issue_user;index" json:"user_id"`

	// Relations
	Issue *Issue `gorm:"foreignKey:IssueID" json:"issue,omitempty"`
	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (IssueAssignee) TableName() string {
	return IssueAssigneeTableName
}

// HasAssignee 判断用户是否在访问名单中, 需要预加载 Assignees
func (i *Issue) HasAssignee(userID int64) bool {
	for _, a := range i.Assignees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}
