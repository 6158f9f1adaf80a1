package model

const ProjectTableName = "projects"
const ProjectMemberTableName = "project_members"

// Project 项目模型
// slug 由 title 推导, 每次保存都重新计算, 与 title 一样全局唯一。
type Project struct {
	BaseModel
	Title       string `gorm:"size:100;not null;uniqueIndex" json:"title"`
	Slug        string `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	Members []ProjectMember `gorm:"foreignKey:ProjectID;references:ID" json:"members,omitempty"`
}

func (Project) TableName() string {
	return ProjectTableName
}

// ProjectMember 项目成员关系
// 显式的多对多连接表, 不带角色限定, 角色读取用户的全局角色。
type ProjectMember struct {
	BaseModel
	ProjectID int64 `gorm:"column:project_id;not null;uniqueIndex:idx_project_user" json:"project_id"`
	UserID    int64 `gorm:"column:user_id;not null;uniqueIndex:idx_project_user;index" json:"user_id"`

	// Relations
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ProjectMember) TableName() string {
	return ProjectMemberTableName
}

// HasMember 判断用户是否在项目成员中, 需要预加载 Members
func (p *Project) HasMember(userID int64) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
