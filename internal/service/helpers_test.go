package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	gosimple "github.com/gosimple/slug"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bugtrack/internal/model"
	"bugtrack/internal/pkg/config"
	"bugtrack/internal/pkg/crypto"
	"bugtrack/internal/repository"
	"bugtrack/pkg/constants"
)

type testServices struct {
	db          *gorm.DB
	users       UserService
	projects    ProjectService
	issues      IssueService
	comments    CommentService
	assignments AssignmentService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	return &testServices{
		db:          db,
		users:       NewUserService(db, userRepo),
		projects:    NewProjectService(db, projectRepo, issueRepo),
		issues:      NewIssueService(db, projectRepo, issueRepo, commentRepo, userRepo),
		comments:    NewCommentService(db, projectRepo, issueRepo, commentRepo),
		assignments: NewAssignmentService(db, projectRepo, issueRepo, userRepo),
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
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

func initTestConfig() {
	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				Secret:             "test-secret",
				AccessTokenExpire:  3600,
				RefreshTokenExpire: 7200,
			},
			Local: config.LocalConfig{Enabled: true},
		},
		Demo: config.DemoConfig{Enabled: true, Username: "demo"},
	}
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *model.User {
	t.Helper()

	hash, err := crypto.HashPassword("Secret123")
	require.NoError(t, err)

	user := &model.User{
		Username: username,
		Password: hash,
		Role:     role,
		Status:   constants.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedRestrictedUser(t *testing.T, db *gorm.DB, username, role string) *model.User {
	t.Helper()

	user := seedUser(t, db, username, role)
	user.Restricted = true
	require.NoError(t, db.Save(user).Error)
	return user
}

func seedProject(t *testing.T, db *gorm.DB, title string, members ...*model.User) *model.Project {
	t.Helper()

	project := &model.Project{
		Title: title,
		Slug:  gosimple.Make(title),
	}
	require.NoError(t, db.Create(project).Error)
	for _, member := range members {
		require.NoError(t, db.Create(&model.ProjectMember{
			ProjectID: project.ID,
			UserID:    member.ID,
		}).Error)
	}
	return project
}

func issueAssigneeIDs(t *testing.T, db *gorm.DB, issueID int64) []int64 {
	t.Helper()

	var ids []int64
	require.NoError(t, db.Model(&model.IssueAssignee{}).
		Where("issue_id = ?", issueID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error)
	return ids
}

func countRows(t *testing.T, db *gorm.DB, value interface{}) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(value).Count(&count).Error)
	return count
}
