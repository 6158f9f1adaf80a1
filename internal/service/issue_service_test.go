package service

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bugtrack/internal/dto"
	"bugtrack/internal/model"
	"bugtrack/pkg/constants"
	pkgErrors "bugtrack/pkg/errors"
)

func TestIssueNumberingPerProject(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	projectA := seedProject(t, svc.db, "Project A", manager)
	projectB := seedProject(t, svc.db, "Project B", manager)

	for i, title := range []string{"first", "second", "third"} {
		resp, err := svc.issues.Create(manager, projectA.Slug, &dto.CreateIssueRequest{
			Title:       title,
			Description: "desc",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), resp.Num)
	}

	// 序号按项目独立编号
	resp, err := svc.issues.Create(manager, projectB.Slug, &dto.CreateIssueRequest{
		Title:       "other project",
		Description: "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Num)
}

func TestIssueCreateRetriesOnNumCollision(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	project := seedProject(t, svc.db, "Project A", manager)

	// 首次插入前抢注相同序号, 复现两个创建读到同一最大序号的竞争
	collided := false
	err := svc.db.Callback().Create().Before("gorm:create").Register("rival_takes_num", func(tx *gorm.DB) {
		issue, ok := tx.Statement.Dest.(*model.Issue)
		if !ok || collided {
			return
		}
		collided = true
		rival := &model.Issue{
			ProjectID:   issue.ProjectID,
			Num:         issue.Num,
			Title:       "rival",
			IssueType:   constants.IssueTypeBug,
			Priority:    constants.IssuePriorityDefault,
			Status:      constants.IssueStatusOpen,
			SubmitterID: issue.SubmitterID,
		}
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Create(rival).Error)
	})
	require.NoError(t, err)

	resp, err := svc.issues.Create(manager, project.Slug, &dto.CreateIssueRequest{
		Title:       "survives the collision",
		Description: "desc",
	})
	require.NoError(t, err)
	assert.True(t, collided)
	assert.Equal(t, int64(1), resp.Num)

	// 撞号的首次尝试整体回滚, 重试后只留一条且序号不重复
	var issues []*model.Issue
	require.NoError(t, svc.db.Where("project_id = ?", project.ID).Find(&issues).Error)
	require.Len(t, issues, 1)
	assert.Equal(t, "survives the collision", issues[0].Title)
	assert.Equal(t, int64(1), issues[0].Num)
}

func TestIssueCreateSeedsAccessList(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	otherManager := seedUser(t, svc.db, "eve", constants.RoleProjectManager)
	developer := seedUser(t, svc.db, "bob", constants.RoleDeveloper)
	submitter := seedUser(t, svc.db, "carol", constants.RoleSubmitter)
	project := seedProject(t, svc.db, "Payment Gateway", manager, otherManager, developer, submitter)

	resp, err := svc.issues.Create(submitter, project.Slug, &dto.CreateIssueRequest{
		Title:       "Checkout times out",
		Description: "desc",
		AssigneeID:  &developer.ID,
	})
	require.NoError(t, err)

	// 提交人 + 被指派人 + 项目成员中的全部项目经理
	var issue model.Issue
	require.NoError(t, svc.db.Where("project_id = ? AND num = ?", project.ID, resp.Num).First(&issue).Error)
	ids := issueAssigneeIDs(t, svc.db, issue.ID)
	assert.ElementsMatch(t, []int64{submitter.ID, developer.ID, manager.ID, otherManager.ID}, ids)
}

func TestIssueCreateCascadesAssigneeIntoProject(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	outsider := seedUser(t, svc.db, "bob", constants.RoleDeveloper)
	project := seedProject(t, svc.db, "Mobile App", manager)

	_, err := svc.issues.Create(manager, project.Slug, &dto.CreateIssueRequest{
		Title:       "Crash on login",
		Description: "desc",
		AssigneeID:  &outsider.ID,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, svc.db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, outsider.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIssueCreateForbiddenForNonMember(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	outsider := seedUser(t, svc.db, "mallory", constants.RoleProjectManager)
	project := seedProject(t, svc.db, "Project A", manager)

	_, err := svc.issues.Create(outsider, project.Slug, &dto.CreateIssueRequest{
		Title:       "nope",
		Description: "desc",
	})
	require.ErrorIs(t, err, pkgErrors.ErrForbidden)
	assert.Equal(t, int64(0), countRows(t, svc.db, &model.Issue{}))
}

func TestIssueCloseStampsAndClearsAccessList(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	project := seedProject(t, svc.db, "Project A", manager)

	created, err := svc.issues.Create(manager, project.Slug, &dto.CreateIssueRequest{
		Title:       "to close",
		Description: "desc",
	})
	require.NoError(t, err)

	_, err = svc.issues.Update(manager, project.Slug, created.Num, &dto.UpdateIssueRequest{
		Status: lo.ToPtr(constants.IssueStatusClosed),
	})
	require.NoError(t, err)

	var issue model.Issue
	require.NoError(t, svc.db.Where("project_id = ? AND num = ?", project.ID, created.Num).First(&issue).Error)
	require.NotNil(t, issue.DateClosed)
	firstClosed := *issue.DateClosed
	assert.Empty(t, issueAssigneeIDs(t, svc.db, issue.ID))

	// 重复保存已关闭的Issue不重新盖戳
	_, err = svc.issues.Update(manager, project.Slug, created.Num, &dto.UpdateIssueRequest{
		Status:      lo.ToPtr(constants.IssueStatusClosed),
		Description: lo.ToPtr("updated while closed"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.db.Where("id = ?", issue.ID).First(&issue).Error)
	require.NotNil(t, issue.DateClosed)
	assert.True(t, firstClosed.Equal(*issue.DateClosed))

	// 重新打开保留关闭时间戳
	_, err = svc.issues.Update(manager, project.Slug, created.Num, &dto.UpdateIssueRequest{
		Status: lo.ToPtr(constants.IssueStatusOpen),
	})
	require.NoError(t, err)

	require.NoError(t, svc.db.Where("id = ?", issue.ID).First(&issue).Error)
	assert.Equal(t, constants.IssueStatusOpen, issue.Status)
	require.NotNil(t, issue.DateClosed)
	assert.True(t, firstClosed.Equal(*issue.DateClosed))
}

func TestIssueDeleteCascades(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	project := seedProject(t, svc.db, "Project A", manager)

	created, err := svc.issues.Create(manager, project.Slug, &dto.CreateIssueRequest{
		Title:       "to delete",
		Description: "desc",
	})
	require.NoError(t, err)

	comment, err := svc.comments.Create(manager, project.Slug, created.Num, &dto.CreateCommentRequest{Text: "first"})
	require.NoError(t, err)
	_, err = svc.comments.CreateReply(manager, comment.ID, &dto.CreateReplyRequest{Text: "reply"})
	require.NoError(t, err)

	require.NoError(t, svc.issues.Delete(manager, project.Slug, created.Num))

	assert.Equal(t, int64(0), countRows(t, svc.db, &model.Issue{}))
	assert.Equal(t, int64(0), countRows(t, svc.db, &model.IssueAssignee{}))
	assert.Equal(t, int64(0), countRows(t, svc.db, &model.Comment{}))
	assert.Equal(t, int64(0), countRows(t, svc.db, &model.Reply{}))
}

func TestIssueCreateRestrictedActorNotPersisted(t *testing.T) {
	svc := newTestServices(t)
	demo := seedRestrictedUser(t, svc.db, "demo", constants.RoleProjectManager)
	project := seedProject(t, svc.db, "Sandbox", demo)

	resp, err := svc.issues.Create(demo, project.Slug, &dto.CreateIssueRequest{
		Title:       "looks real",
		Description: "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Num)
	assert.Equal(t, "demo", resp.Submitter)

	// 响应成功但不落库
	assert.Equal(t, int64(0), countRows(t, svc.db, &model.Issue{}))
	assert.Equal(t, int64(0), countRows(t, svc.db, &model.IssueAssignee{}))
}

func TestIssueListMine(t *testing.T) {
	svc := newTestServices(t)
	manager := seedUser(t, svc.db, "alice", constants.RoleProjectManager)
	developer := seedUser(t, svc.db, "bob", constants.RoleDeveloper)
	project := seedProject(t, svc.db, "Project A", manager, developer)

	_, err := svc.issues.Create(manager, project.Slug, &dto.CreateIssueRequest{
		Title:       "assigned to bob",
		Description: "desc",
		AssigneeID:  &developer.ID,
	})
	require.NoError(t, err)
	_, err = svc.issues.Create(manager, project.Slug, &dto.CreateIssueRequest{
		Title:       "manager only",
		Description: "desc",
	})
	require.NoError(t, err)

	mine, err := svc.issues.ListMine(developer)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "assigned to bob", mine[0].Title)
}
