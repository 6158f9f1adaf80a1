package auth

import (
	"bugtrack/internal/model"
	"bugtrack/pkg/constants"
)

// Role 内置角色, 每个用户只持有一个
type Role string

const (
	RoleAdmin          Role = constants.RoleAdmin
	RoleProjectManager Role = constants.RoleProjectManager
	RoleDeveloper      Role = constants.RoleDeveloper
	RoleSubmitter      Role = constants.RoleSubmitter
)

// DefaultRole 注册用户的默认角色
const DefaultRole = RoleProjectManager

// AllRoles 全部角色列表, 按权限从高到低
var AllRoles = []Role{RoleAdmin, RoleProjectManager, RoleDeveloper, RoleSubmitter}

// Valid 判断是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleDeveloper, RoleSubmitter:
		return true
	}
	return false
}

// RoleOf 读取用户的角色
func RoleOf(u *model.User) Role {
	return Role(u.Role)
}

// IsAdmin 用户是否为管理员
func IsAdmin(u *model.User) bool {
	return RoleOf(u) == RoleAdmin
}

// IsManager 用户是否为项目经理
func IsManager(u *model.User) bool {
	return RoleOf(u) == RoleProjectManager
}
