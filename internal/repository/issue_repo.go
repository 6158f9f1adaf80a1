package repository

import (
	"gorm.io/gorm"

	"bugtrack/internal/model"
	pkgErrors "bugtrack/pkg/errors"
)

type IssueRepository interface {
	FindByID(id int64, opts ...QueryOption) (*model.Issue, error)
	// FindByProjectAndNum 按项目内序号定位Issue, 序号不属于该项目时视为 NotFound
	FindByProjectAndNum(projectID, num int64, opts ...QueryOption) (*model.Issue, error)
	ListByProject(projectID int64) ([]*model.Issue, error)
	// ListByProjectForUser 项目下分配给指定用户的Issue
	ListByProjectForUser(projectID, userID int64) ([]*model.Issue, error)
	// ListAssigned 用户访问名单内的全部Issue
	ListAssigned(userID int64) ([]*model.Issue, error)
	Update(issue *model.Issue) error
	// DeleteCascade 删除Issue及其评论、回复, 单事务执行
	DeleteCascade(id int64) error

	ListAssigneeUsers(issueID int64) ([]*model.User, error)

	// WithTx 返回绑定到指定事务的仓库
	WithTx(tx *gorm.DB) IssueRepository
}

type issueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

func (r *issueRepository) WithTx(tx *gorm.DB) IssueRepository {
	return &issueRepository{db: tx}
}

func (r *issueRepository) FindByID(id int64, opts ...QueryOption) (*model.Issue, error) {
	query := r.db
	for _, opt := range opts {
		query = opt(query)
	}

	var issue model.Issue
	err := query.First(&issue, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrIssueNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询Issue失败", err)
	}
	return &issue, nil
}

func (r *issueRepository) FindByProjectAndNum(projectID, num int64, opts ...QueryOption) (*model.Issue, error) {
	query := r.db
	for _, opt := range opts {
		query = opt(query)
	}

	var issue model.Issue
	err := query.Where("project_id = ? AND num = ?", projectID, num).First(&issue).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrIssueNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询Issue失败", err)
	}
	return &issue, nil
}

func (r *issueRepository) ListByProject(projectID int64) ([]*model.Issue, error) {
	var issues []*model.Issue
	err := r.db.Where("project_id = ?", projectID).
		Preload("Submitter").Preload("Assignee").
		Order("num ASC").Find(&issues).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询Issue列表失败", err)
	}
	return issues, nil
}

func (r *issueRepository) ListByProjectForUser(projectID, userID int64) ([]*model.Issue, error) {
	var issues []*model.Issue
	err := r.db.
		Joins("JOIN issue_assignees ON issue_assignees.issue_id = issues.id").
		Where("issues.project_id = ? AND issue_assignees.user_id = ?", projectID, userID).
		Preload("Submitter").Preload("Assignee").
		Order("issues.num ASC").
		Find(&issues).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询Issue列表失败", err)
	}
	return issues, nil
}

func (r *issueRepository) ListAssigned(userID int64) ([]*model.Issue, error) {
	var issues []*model.Issue
	err := r.db.
		Joins("JOIN issue_assignees ON issue_assignees.issue_id = issues.id").
		Where("issue_assignees.user_id = ?", userID).
		Preload("Submitter").Preload("Assignee").
		Order("issues.project_id ASC, issues.num ASC").
		Find(&issues).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询Issue列表失败", err)
	}
	return issues, nil
}

func (r *issueRepository) Update(issue *model.Issue) error {
	if err := r.db.Save(issue).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新Issue失败", err)
	}
	return nil
}

// DeleteCascade 所有权链 Issue → Comment → Reply 级联删除
func (r *issueRepository) DeleteCascade(id int64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&model.Comment{}).Select("id").Where("issue_id = ?", id)

		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&model.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("issue_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("issue_id = ?", id).Delete(&model.IssueAssignee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Issue{}, id).Error
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除Issue失败", err)
	}
	return nil
}

func (r *issueRepository) ListAssigneeUsers(issueID int64) ([]*model.User, error) {
	var users []*model.User
	err := r.db.
		Joins("JOIN issue_assignees ON issue_assignees.user_id = users.id").
		Where("issue_assignees.issue_id = ?", issueID).
		Order("users.username ASC").
		Find(&users).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询Issue访问名单失败", err)
	}
	return users, nil
}
