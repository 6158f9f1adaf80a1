package auth

import (
	"bugtrack/internal/model"
)

// 访问策略: 纯谓词函数族, 任一子句为真即放行, 无副作用, 可在任何变更前调用。
// 调用方负责预加载 project.Members / issue.Assignees。
// 谓词返回 false 时调用方必须返回 Forbidden 错误, 不允许静默跳过。

// CanListAllProjects 查看全部项目列表
func CanListAllProjects(actor *model.User) bool {
	return IsAdmin(actor)
}

// CanCreateProject 创建项目
func CanCreateProject(actor *model.User) bool {
	return IsAdmin(actor) || IsManager(actor)
}

// CanViewProject 查看单个项目
func CanViewProject(actor *model.User, project *model.Project) bool {
	return IsAdmin(actor) || project.HasMember(actor.ID)
}

// CanManageProject 编辑/删除/分配项目成员
func CanManageProject(actor *model.User, project *model.Project) bool {
	return IsAdmin(actor) || (IsManager(actor) && project.HasMember(actor.ID))
}

// CanCreateProjectIssue 在指定项目下创建Issue
func CanCreateProjectIssue(actor *model.User, project *model.Project) bool {
	return IsAdmin(actor) || project.HasMember(actor.ID)
}

// CanAccessIssue 查看/编辑/删除/分配Issue
func CanAccessIssue(actor *model.User, issue *model.Issue) bool {
	return IsAdmin(actor) || issue.HasAssignee(actor.ID)
}

// CanAuthorComment 在Issue下发表评论或回复
func CanAuthorComment(actor *model.User, project *model.Project, issue *model.Issue) bool {
	if IsAdmin(actor) {
		return true
	}
	if IsManager(actor) && project.HasMember(actor.ID) {
		return true
	}
	return issue.HasAssignee(actor.ID)
}

// CanModerateComment 编辑/删除评论或回复, authorID 为其作者
func CanModerateComment(actor *model.User, project *model.Project, authorID int64) bool {
	if IsAdmin(actor) {
		return true
	}
	if IsManager(actor) && project.HasMember(actor.ID) {
		return true
	}
	return actor.ID == authorID
}

// CanManageUsers 用户管理(列表/创建/更新/停用/改角色)
func CanManageUsers(actor *model.User) bool {
	return IsAdmin(actor)
}

// CanTouchProfile 查看/编辑/删除自己的资料或密码
func CanTouchProfile(actor *model.User, target *model.User) bool {
	return actor.ID == target.ID
}

// CanSetPassword 修改密码: 本人, 或管理员替他人修改
func CanSetPassword(actor *model.User, target *model.User) bool {
	return actor.ID == target.ID || IsAdmin(actor)
}
