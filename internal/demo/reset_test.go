package demo

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bugtrack/internal/model"
	"bugtrack/pkg/constants"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.ProjectMember{},
		&model.Issue{},
		&model.IssueAssignee{},
		&model.Comment{},
		&model.Reply{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func testFixture() *Fixture {
	return &Fixture{
		Users: []FixtureUser{
			{Username: "admin", Password: "Admin12345", Role: constants.RoleAdmin},
			{Username: "demo", Password: "Demo12345", Role: constants.RoleProjectManager, Restricted: true},
			{Username: "alice", Password: "Alice12345", Role: constants.RoleProjectManager},
			{Username: "bob", Password: "Bob12345", Role: constants.RoleDeveloper},
		},
		Projects: []FixtureProject{
			{
				Title:   "Payment Gateway",
				Members: []string{"demo", "alice", "bob"},
				Issues: []FixtureIssue{
					{
						Title:       "Open issue",
						Description: "d",
						Status:      constants.IssueStatusOpen,
						Submitter:   "bob",
						Assignee:    "bob",
						Comments: []FixtureComment{
							{Author: "alice", Text: "c", Replies: []FixtureReply{{Author: "bob", Text: "r"}}},
						},
					},
					{
						Title:       "Closed issue",
						Description: "d",
						Status:      constants.IssueStatusClosed,
						Submitter:   "alice",
					},
				},
			},
		},
	}
}

func TestResetRebuildsDataset(t *testing.T) {
	db := newTestDB(t)
	fixture := testFixture()

	// 残留数据应被清掉
	require.NoError(t, db.Create(&model.User{Username: "stale", Password: "x", Role: constants.RoleDeveloper, Status: constants.UserStatusActive}).Error)

	require.NoError(t, Reset(db, fixture))

	var users []*model.User
	require.NoError(t, db.Order("username ASC").Find(&users).Error)
	require.Len(t, users, 4)

	var demoUser model.User
	require.NoError(t, db.Where("username = ?", "demo").First(&demoUser).Error)
	assert.True(t, demoUser.Restricted)

	var project model.Project
	require.NoError(t, db.Where("title = ?", "Payment Gateway").First(&project).Error)
	assert.Equal(t, "payment-gateway", project.Slug)

	// Issue序号按项目内顺序编号
	var open, closed model.Issue
	require.NoError(t, db.Where("project_id = ? AND title = ?", project.ID, "Open issue").First(&open).Error)
	require.NoError(t, db.Where("project_id = ? AND title = ?", project.ID, "Closed issue").First(&closed).Error)
	assert.Equal(t, int64(1), open.Num)
	assert.Equal(t, int64(2), closed.Num)

	// 开启的Issue访问名单: 提交人bob + 被指派人bob + 成员项目经理demo和alice
	var openIDs []int64
	require.NoError(t, db.Model(&model.IssueAssignee{}).
		Where("issue_id = ?", open.ID).
		Pluck("user_id", &openIDs).Error)
	assert.Len(t, openIDs, 3)

	// 关闭的Issue盖时间戳且访问名单为空
	require.NotNil(t, closed.DateClosed)
	var closedCount int64
	require.NoError(t, db.Model(&model.IssueAssignee{}).
		Where("issue_id = ?", closed.ID).
		Count(&closedCount).Error)
	assert.Equal(t, int64(0), closedCount)

	var commentCount, replyCount int64
	require.NoError(t, db.Model(&model.Comment{}).Count(&commentCount).Error)
	require.NoError(t, db.Model(&model.Reply{}).Count(&replyCount).Error)
	assert.Equal(t, int64(1), commentCount)
	assert.Equal(t, int64(1), replyCount)
}

func TestResetRejectsUnknownUserReference(t *testing.T) {
	db := newTestDB(t)
	fixture := testFixture()
	fixture.Projects[0].Members = append(fixture.Projects[0].Members, "ghost")

	require.Error(t, Reset(db, fixture))
}

func TestEnsureSeededOnlyWhenDemoUserMissing(t *testing.T) {
	db := newTestDB(t)
	fixture := testFixture()

	require.NoError(t, EnsureSeeded(db, fixture, "demo"))

	// 演示账号已存在时不再动现有数据
	marker := &model.Project{Title: "Marker", Slug: "marker"}
	require.NoError(t, db.Create(marker).Error)

	require.NoError(t, EnsureSeeded(db, fixture, "demo"))

	var count int64
	require.NoError(t, db.Model(&model.Project{}).Where("slug = ?", "marker").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
