package demo

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"bugtrack/internal/model"
	"bugtrack/internal/pkg/auth"
	"bugtrack/internal/pkg/crypto"
	"bugtrack/pkg/constants"
)

// Reset 清空全部业务数据并按数据集重建, 单事务执行。
// 重建逻辑与正常创建路径保持一致: Issue序号按项目内顺序编号,
// 访问名单种子为提交人+被指派人+项目成员中的项目经理,
// 已关闭的Issue盖date_closed且访问名单为空。
func Reset(db *gorm.DB, fixture *Fixture) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{
			model.ReplyTableName,
			model.CommentTableName,
			model.IssueAssigneeTableName,
			model.IssueTableName,
			model.ProjectMemberTableName,
			model.ProjectTableName,
			model.UserTableName,
		} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}

		users := make(map[string]*model.User, len(fixture.Users))
		for _, fu := range fixture.Users {
			hash, err := crypto.HashPassword(fu.Password)
			if err != nil {
				return err
			}
			user := &model.User{
				Username:   fu.Username,
				Password:   hash,
				Role:       fu.Role,
				Status:     constants.UserStatusActive,
				Restricted: fu.Restricted,
			}
			if fu.Email != "" {
				email := fu.Email
				user.Email = &email
			}
			if err := tx.Create(user).Error; err != nil {
				return err
			}
			users[fu.Username] = user
		}

		for _, fp := range fixture.Projects {
			project := &model.Project{
				Title:       fp.Title,
				Slug:        slug.Make(fp.Title),
				Description: fp.Description,
			}
			if err := tx.Create(project).Error; err != nil {
				return err
			}

			members := make([]*model.User, 0, len(fp.Members))
			for _, username := range fp.Members {
				user, ok := users[username]
				if !ok {
					return fmt.Errorf("演示数据引用了未定义的用户: %s", username)
				}
				if err := tx.Create(&model.ProjectMember{ProjectID: project.ID, UserID: user.ID}).Error; err != nil {
					return err
				}
				members = append(members, user)
			}

			for i, fi := range fp.Issues {
				if err := seedIssue(tx, project, members, users, int64(i+1), fi); err != nil {
					return err
				}
			}
		}

		return nil
	})
}

func seedIssue(tx *gorm.DB, project *model.Project, members []*model.User, users map[string]*model.User, num int64, fi FixtureIssue) error {
	submitter, ok := users[fi.Submitter]
	if !ok {
		return fmt.Errorf("演示数据引用了未定义的用户: %s", fi.Submitter)
	}

	issue := &model.Issue{
		ProjectID:   project.ID,
		Num:         num,
		Title:       fi.Title,
		Description: fi.Description,
		IssueType:   constants.IssueTypeBug,
		Priority:    constants.IssuePriorityDefault,
		Status:      constants.IssueStatusOpen,
		SubmitterID: submitter.ID,
	}
	if fi.IssueType != "" {
		issue.IssueType = fi.IssueType
	}
	if fi.Priority != 0 {
		issue.Priority = fi.Priority
	}
	if fi.Status != "" {
		issue.Status = fi.Status
	}

	var assignee *model.User
	if fi.Assignee != "" {
		assignee, ok = users[fi.Assignee]
		if !ok {
			return fmt.Errorf("演示数据引用了未定义的用户: %s", fi.Assignee)
		}
		issue.AssigneeID = &assignee.ID
	}
	if issue.Status == constants.IssueStatusClosed {
		now := time.Now()
		issue.DateClosed = &now
	}

	if err := tx.Create(issue).Error; err != nil {
		return err
	}

	// 关闭的Issue访问名单为空
	if issue.Status != constants.IssueStatusClosed {
		seedIDs := []int64{submitter.ID}
		if assignee != nil {
			seedIDs = append(seedIDs, assignee.ID)
		}
		for _, member := range members {
			if auth.IsManager(member) {
				seedIDs = append(seedIDs, member.ID)
			}
		}
		seen := make(map[int64]bool, len(seedIDs))
		for _, userID := range seedIDs {
			if seen[userID] {
				continue
			}
			seen[userID] = true
			if err := tx.Create(&model.IssueAssignee{IssueID: issue.ID, UserID: userID}).Error; err != nil {
				return err
			}
		}
	}

	for _, fc := range fi.Comments {
		author, ok := users[fc.Author]
		if !ok {
			return fmt.Errorf("演示数据引用了未定义的用户: %s", fc.Author)
		}
		comment := &model.Comment{
			IssueID:  issue.ID,
			AuthorID: author.ID,
			Text:     fc.Text,
			Status:   constants.CommentStatusActive,
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		for _, fr := range fc.Replies {
			replyAuthor, ok := users[fr.Author]
			if !ok {
				return fmt.Errorf("演示数据引用了未定义的用户: %s", fr.Author)
			}
			reply := &model.Reply{
				CommentID: comment.ID,
				AuthorID:  replyAuthor.ID,
				Text:      fr.Text,
				Status:    constants.CommentStatusActive,
			}
			if err := tx.Create(reply).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// EnsureSeeded 演示账号不存在时执行一次重建, 已存在则不动现有数据
func EnsureSeeded(db *gorm.DB, fixture *Fixture, demoUsername string) error {
	var count int64
	if err := db.Model(&model.User{}).Where("username = ?", demoUsername).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return Reset(db, fixture)
}
