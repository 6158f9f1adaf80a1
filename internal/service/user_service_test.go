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

func TestUserListPagedAdminOnly(t *testing.T) {
	svc := newTestServices(t)
	admin := seedUser(t, svc.db, "root", constants.RoleAdmin)
	seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	bob := seedUser(t, svc.db, "bob", constants.RoleDeveloper)
	carol := seedUser(t, svc.db, "carol", constants.RoleSubmitter)
	carol.Status = constants.UserStatusDeactivated
	require.NoError(t, svc.db.Save(carol).Error)

	_, _, err := svc.users.List(bob, &dto.PageQuery{})
	require.ErrorIs(t, err, pkgErrors.ErrForbidden)

	// 停用用户不计入, 按用户名排序
	users, total, err := svc.users.List(admin, &dto.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	names := lo.Map(users, func(u *dto.UserResponse, _ int) string { return u.Username })
	assert.Equal(t, []string{"alice", "bob", "root"}, names)

	// 分页只取当页, total保持全量
	page2, total, err := svc.users.List(admin, &dto.PageQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page2, 1)
	assert.Equal(t, "root", page2[0].Username)

	// 关键字按用户名模糊过滤
	matched, total, err := svc.users.List(admin, &dto.PageQuery{Keyword: "ali"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, matched, 1)
	assert.Equal(t, "alice", matched[0].Username)
}

func TestUserCreateAdminOnly(t *testing.T) {
	svc := newTestServices(t)
	admin := seedUser(t, svc.db, "root", constants.RoleAdmin)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)

	req := &dto.CreateUserRequest{
		Username:        "newbie",
		Role:            constants.RoleDeveloper,
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	}

	_, err := svc.users.Create(manager, req)
	require.ErrorIs(t, err, pkgErrors.ErrForbidden)

	created, err := svc.users.Create(admin, req)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleDeveloper, created.Role)
	assert.Equal(t, constants.UserStatusActive, created.Status)
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	svc := newTestServices(t)
	admin := seedUser(t, svc.db, "root", constants.RoleAdmin)
	seedUser(t, svc.db, "alice", constants.RoleProjectManager)

	_, err := svc.users.Create(admin, &dto.CreateUserRequest{
		Username:        "alice",
		Role:            constants.RoleDeveloper,
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	})
	require.Error(t, err)
	appErr, ok := err.(*pkgErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, pkgErrors.CodeConflict, appErr.Code)
}

func TestUpdateProfileSelfOrAdmin(t *testing.T) {
	svc := newTestServices(t)
	admin := seedUser(t, svc.db, "root", constants.RoleAdmin)
	alice := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	bob := seedUser(t, svc.db, "bob", constants.RoleDeveloper)

	// 本人可改
	updated, err := svc.users.UpdateProfile(alice, alice.ID, &dto.UpdateProfileRequest{
		FirstName: lo.ToPtr("Alice"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Alice", *updated.FirstName)

	// 管理员可改他人
	_, err = svc.users.UpdateProfile(admin, bob.ID, &dto.UpdateProfileRequest{
		LastName: lo.ToPtr("Builder"),
	})
	require.NoError(t, err)

	// 他人不可改
	_, err = svc.users.UpdateProfile(bob, alice.ID, &dto.UpdateProfileRequest{
		FirstName: lo.ToPtr("Hacked"),
	})
	require.ErrorIs(t, err, pkgErrors.ErrForbidden)
}

func TestDeactivateKeepsRow(t *testing.T) {
	svc := newTestServices(t)
	alice := seedUser(t, svc.db, "alice", constants.RoleProjectManager)

	require.NoError(t, svc.users.Deactivate(alice, alice.ID))

	var row model.User
	require.NoError(t, svc.db.First(&row, alice.ID).Error)
	assert.Equal(t, constants.UserStatusDeactivated, row.Status)
	assert.Equal(t, "alice", row.Username)
}

func TestBatchSetRole(t *testing.T) {
	svc := newTestServices(t)
	admin := seedUser(t, svc.db, "root", constants.RoleAdmin)
	alice := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	bob := seedUser(t, svc.db, "bob", constants.RoleDeveloper)

	result, err := svc.users.BatchSetRole(admin, &dto.BatchSetRoleRequest{
		UserIDs: []int64{alice.ID, bob.ID},
		Role:    constants.RoleDeveloper,
	})
	require.NoError(t, err)

	// 已持有目标角色的bob跳过, 摘要按请求顺序列出生效用户
	assert.Equal(t, []string{"alice"}, result.Applied)
	assert.Equal(t, "The following users have been given the role 'developer': alice.", result.Summary)

	var row model.User
	require.NoError(t, svc.db.First(&row, alice.ID).Error)
	assert.Equal(t, constants.RoleDeveloper, row.Role)
}

func TestBatchNoChangesSummaries(t *testing.T) {
	svc := newTestServices(t)
	admin := seedUser(t, svc.db, "root", constants.RoleAdmin)
	bob := seedUser(t, svc.db, "bob", constants.RoleDeveloper)

	// 全员已持有目标角色, 摘要不渲染空名单
	result, err := svc.users.BatchSetRole(admin, &dto.BatchSetRoleRequest{
		UserIDs: []int64{bob.ID},
		Role:    constants.RoleDeveloper,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	assert.Equal(t, "No users were given the role 'developer'.", result.Summary)

	bob.Status = constants.UserStatusDeactivated
	require.NoError(t, svc.db.Save(bob).Error)

	result, err = svc.users.BatchDeactivate(admin, &dto.BatchDeactivateRequest{
		UserIDs: []int64{bob.ID},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	assert.Equal(t, "No user accounts were deactivated.", result.Summary)
}

func TestBatchSetRoleUnknownUserFailsWhole(t *testing.T) {
	svc := newTestServices(t)
	admin := seedUser(t, svc.db, "root", constants.RoleAdmin)
	alice := seedUser(t, svc.db, "alice", constants.RoleProjectManager)

	_, err := svc.users.BatchSetRole(admin, &dto.BatchSetRoleRequest{
		UserIDs: []int64{alice.ID, 9999},
		Role:    constants.RoleDeveloper,
	})
	require.ErrorIs(t, err, pkgErrors.ErrUserNotFound)

	// 整批失败, alice角色未动
	var row model.User
	require.NoError(t, svc.db.First(&row, alice.ID).Error)
	assert.Equal(t, constants.RoleProjectManager, row.Role)
}

func TestBatchDeactivate(t *testing.T) {
	svc := newTestServices(t)
	admin := seedUser(t, svc.db, "root", constants.RoleAdmin)
	alice := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	bob := seedUser(t, svc.db, "bob", constants.RoleDeveloper)
	bob.Status = constants.UserStatusDeactivated
	require.NoError(t, svc.db.Save(bob).Error)

	result, err := svc.users.BatchDeactivate(admin, &dto.BatchDeactivateRequest{
		UserIDs: []int64{alice.ID, bob.ID},
	})
	require.NoError(t, err)

	// 已停用的bob跳过
	assert.Equal(t, []string{"alice"}, result.Applied)
	assert.Equal(t, "The following user accounts have been deactivated: alice.", result.Summary)
}

func TestBatchSetRoleRestrictedActorNotPersisted(t *testing.T) {
	svc := newTestServices(t)
	demoAdmin := seedRestrictedUser(t, svc.db, "demo", constants.RoleAdmin)
	alice := seedUser(t, svc.db, "alice", constants.RoleProjectManager)

	result, err := svc.users.BatchSetRole(demoAdmin, &dto.BatchSetRoleRequest{
		UserIDs: []int64{alice.ID},
		Role:    constants.RoleSubmitter,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, result.Applied)

	var row model.User
	require.NoError(t, svc.db.First(&row, alice.ID).Error)
	assert.Equal(t, constants.RoleProjectManager, row.Role)
}

func TestChangePassword(t *testing.T) {
	svc := newTestServices(t)
	alice := seedUser(t, svc.db, "alice", constants.RoleProjectManager)

	err := svc.users.ChangePassword(alice, &dto.ChangePasswordRequest{
		OldPassword:     "wrong",
		NewPassword:     "Another123",
		ConfirmPassword: "Another123",
	})
	require.Error(t, err)

	err = svc.users.ChangePassword(alice, &dto.ChangePasswordRequest{
		OldPassword:     "Secret123",
		NewPassword:     "Another123",
		ConfirmPassword: "Another123",
	})
	require.NoError(t, err)
}

func TestSetPasswordAdminOnly(t *testing.T) {
	svc := newTestServices(t)
	admin := seedUser(t, svc.db, "root", constants.RoleAdmin)
	alice := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	bob := seedUser(t, svc.db, "bob", constants.RoleDeveloper)

	err := svc.users.SetPassword(alice, bob.ID, &dto.SetPasswordRequest{
		NewPassword:     "Another123",
		ConfirmPassword: "Another123",
	})
	require.ErrorIs(t, err, pkgErrors.ErrForbidden)

	err = svc.users.SetPassword(admin, bob.ID, &dto.SetPasswordRequest{
		NewPassword:     "Another123",
		ConfirmPassword: "Another123",
	})
	require.NoError(t, err)
}
