package model

import (
	"time"

	"bugtrack/pkg/constants"
)

const UserTableName = "users"

// User 用户模型
// 每个用户持有一个全局角色(Role), 项目/Issue级权限由角色加作用域内成员关系共同决定。
// 删除用户只翻转状态位, 历史Issue/评论仍引用该记录。
type User struct {
	BaseModel
	Username    string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Password    string     `gorm:"size:255;not null" json:"-"` // 不返回到前端
	Email       *string    `gorm:"size:100" json:"email,omitempty"`
	FirstName   *string    `gorm:"size:50" json:"first_name,omitempty"`
	LastName    *string    `gorm:"size:50" json:"last_name,omitempty"`
	Role        string     `gorm:"size:20;not null;default:project_manager;index" json:"role"`
	Status      int8       `gorm:"not null;default:1;index" json:"status"` // 1:激活 0:停用
	Restricted  bool       `gorm:"not null;default:false" json:"restricted"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return UserTableName
}

// IsActive 用户是否处于激活状态
func (u *User) IsActive() bool {
	return u.Status == constants.UserStatusActive
}
