package service

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugtrack/internal/dto"
	"bugtrack/internal/model"
	"bugtrack/pkg/constants"
	pkgErrors "bugtrack/pkg/errors"
)

func TestProjectCreateDerivesSlug(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)

	resp, err := svc.projects.Create(manager, &dto.CreateProjectRequest{Title: "Payment Gateway 2.0"})
	require.NoError(t, err)
	assert.Equal(t, "payment-gateway-2-0", resp.Slug)

	// 创建项目的项目经理自动成为成员
	var count int64
	require.NoError(t, svc.db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", resp.ID, manager.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProjectCreateAdminNotEnrolled(t *testing.T) {
	svc := newTestServices(t)
	admin := seedUser(t, svc.db, "root", constants.RoleAdmin)

	resp, err := svc.projects.Create(admin, &dto.CreateProjectRequest{Title: "Infra"})
	require.NoError(t, err)

	var count int64
	require.NoError(t, svc.db.Model(&model.ProjectMember{}).
		Where("project_id = ?", resp.ID).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestProjectCreateForbiddenRoles(t *testing.T) {
	svc := newTestServices(t)
	developer := seedUser(t, svc.db, "bob", constants.RoleDeveloper)
	submitter := seedUser(t, svc.db, "carol", constants.RoleSubmitter)

	for _, actor := range []*model.User{developer, submitter} {
		_, err := svc.projects.Create(actor, &dto.CreateProjectRequest{Title: "Nope"})
		require.ErrorIs(t, err, pkgErrors.ErrForbidden, actor.Username)
	}
}

func TestProjectCreateTitleConflict(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)

	_, err := svc.projects.Create(manager, &dto.CreateProjectRequest{Title: "Payment Gateway"})
	require.NoError(t, err)

	_, err = svc.projects.Create(manager, &dto.CreateProjectRequest{Title: "Payment Gateway"})
	require.Error(t, err)
	appErr, ok := err.(*pkgErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, pkgErrors.CodeConflict, appErr.Code)
}

func TestProjectSlugConflict(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)

	_, err := svc.projects.Create(manager, &dto.CreateProjectRequest{Title: "Foo Bar"})
	require.NoError(t, err)
	other, err := svc.projects.Create(manager, &dto.CreateProjectRequest{Title: "Baseline"})
	require.NoError(t, err)

	// 标题不同但推导出相同slug, 在唯一索引之前拦截为业务冲突
	_, err = svc.projects.Create(manager, &dto.CreateProjectRequest{Title: "foo bar!"})
	require.Error(t, err)
	appErr, ok := err.(*pkgErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, pkgErrors.CodeConflict, appErr.Code)

	// 改名撞上他人slug同样拦截
	_, err = svc.projects.Update(manager, other.Slug, &dto.UpdateProjectRequest{
		Title: lo.ToPtr("FOO BAR"),
	})
	require.Error(t, err)
	appErr, ok = err.(*pkgErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, pkgErrors.CodeConflict, appErr.Code)
}

func TestProjectUpdateResyncsSlug(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)

	created, err := svc.projects.Create(manager, &dto.CreateProjectRequest{Title: "Old Name"})
	require.NoError(t, err)

	updated, err := svc.projects.Update(manager, created.Slug, &dto.UpdateProjectRequest{
		Title: lo.ToPtr("New Name"),
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Title)
	assert.Equal(t, "new-name", updated.Slug)

	// 旧slug失效
	_, err = svc.projects.Detail(manager, created.Slug)
	require.ErrorIs(t, err, pkgErrors.ErrProjectNotFound)
}

func TestProjectDeleteCascades(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)

	created, err := svc.projects.Create(manager, &dto.CreateProjectRequest{Title: "Doomed"})
	require.NoError(t, err)

	issue, err := svc.issues.Create(manager, created.Slug, &dto.CreateIssueRequest{Title: "issue", Description: "d"})
	require.NoError(t, err)
	comment, err := svc.comments.Create(manager, created.Slug, issue.Num, &dto.CreateCommentRequest{Text: "c"})
	require.NoError(t, err)
	_, err = svc.comments.CreateReply(manager, comment.ID, &dto.CreateReplyRequest{Text: "r"})
	require.NoError(t, err)

	require.NoError(t, svc.projects.Delete(manager, created.Slug))

	assert.Equal(t, int64(0), countRows(t, svc.db, &model.Project{}))
	assert.Equal(t, int64(0), countRows(t, svc.db, &model.ProjectMember{}))
	assert.Equal(t, int64(0), countRows(t, svc.db, &model.Issue{}))
	assert.Equal(t, int64(0), countRows(t, svc.db, &model.IssueAssignee{}))
	assert.Equal(t, int64(0), countRows(t, svc.db, &model.Comment{}))
	assert.Equal(t, int64(0), countRows(t, svc.db, &model.Reply{}))

	// 用户不随项目删除
	assert.Equal(t, int64(1), countRows(t, svc.db, &model.User{}))
}

func TestProjectListAllAdminOnly(t *testing.T) {
	svc := newTestServices(t)
	admin := seedUser(t, svc.db, "root", constants.RoleAdmin)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	seedProject(t, svc.db, "Project A", manager)
	seedProject(t, svc.db, "Project B")

	all, err := svc.projects.ListAll(admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.projects.ListAll(manager)
	require.ErrorIs(t, err, pkgErrors.ErrForbidden)

	mine, err := svc.projects.ListMine(manager)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Project A", mine[0].Title)
}

func TestProjectDetailFiltersIssuesByRole(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	developer := seedUser(t, svc.db, "bob", constants.RoleDeveloper)
	project := seedProject(t, svc.db, "Project A", manager, developer)

	_, err := svc.issues.Create(manager, project.Slug, &dto.CreateIssueRequest{
		Title:       "for bob",
		Description: "d",
		AssigneeID:  &developer.ID,
	})
	require.NoError(t, err)
	_, err = svc.issues.Create(manager, project.Slug, &dto.CreateIssueRequest{
		Title:       "manager only",
		Description: "d",
	})
	require.NoError(t, err)

	managerView, err := svc.projects.Detail(manager, project.Slug)
	require.NoError(t, err)
	assert.Len(t, managerView.Issues, 2)
	assert.Len(t, managerView.Members, 2)

	// 开发者只看到自己访问名单内的Issue
	developerView, err := svc.projects.Detail(developer, project.Slug)
	require.NoError(t, err)
	require.Len(t, developerView.Issues, 1)
	assert.Equal(t, "for bob", developerView.Issues[0].Title)
}

func TestProjectDetailForbiddenForNonMember(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	outsider := seedUser(t, svc.db, "eve", constants.RoleProjectManager)
	project := seedProject(t, svc.db, "Project A", manager)

	_, err := svc.projects.Detail(outsider, project.Slug)
	require.ErrorIs(t, err, pkgErrors.ErrForbidden)
}

func TestProjectCreateRestrictedActorNotPersisted(t *testing.T) {
	svc := newTestServices(t)
	demo := seedRestrictedUser(t, svc.db, "demo", constants.RoleProjectManager)

	resp, err := svc.projects.Create(demo, &dto.CreateProjectRequest{Title: "Sandbox Only"})
	require.NoError(t, err)
	assert.Equal(t, "sandbox-only", resp.Slug)

	assert.Equal(t, int64(0), countRows(t, svc.db, &model.Project{}))
	assert.Equal(t, int64(0), countRows(t, svc.db, &model.ProjectMember{}))
}
