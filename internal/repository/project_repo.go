package repository

import (
	"gorm.io/gorm"

	"bugtrack/internal/model"
	pkgErrors "bugtrack/pkg/errors"
)

type ProjectRepository interface {
	Create(project *model.Project) error
	FindByID(id int64, opts ...QueryOption) (*model.Project, error)
	FindBySlug(slug string, opts ...QueryOption) (*model.Project, error)
	TitleInUse(title string, excludeProjectID int64) (bool, error)
	SlugInUse(slug string, excludeProjectID int64) (bool, error)
	ListAll() ([]*model.Project, error)
	ListByUser(userID int64) ([]*model.Project, error)
	Update(project *model.Project) error
	// DeleteCascade 删除项目及其全部Issue、评论、回复, 单事务执行
	DeleteCascade(id int64) error

	ListMemberUsers(projectID int64) ([]*model.User, error)

	// WithTx 返回绑定到指定事务的仓库
	WithTx(tx *gorm.DB) ProjectRepository
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) WithTx(tx *gorm.DB) ProjectRepository {
	return &projectRepository{db: tx}
}

func (r *projectRepository) Create(project *model.Project) error {
	if err := r.db.Create(project).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建项目失败", err)
	}
	return nil
}

func (r *projectRepository) FindByID(id int64, opts ...QueryOption) (*model.Project, error) {
	query := r.db
	for _, opt := range opts {
		query = opt(query)
	}

	var project model.Project
	err := query.First(&project, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrProjectNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目失败", err)
	}
	return &project, nil
}

func (r *projectRepository) FindBySlug(slug string, opts ...QueryOption) (*model.Project, error) {
	query := r.db
	for _, opt := range opts {
		query = opt(query)
	}

	var project model.Project
	err := query.Where("slug = ?", slug).First(&project).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrProjectNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目失败", err)
	}
	return &project, nil
}

func (r *projectRepository) TitleInUse(title string, excludeProjectID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Project{}).
		Where("title = ? AND id <> ?", title, excludeProjectID).
		Count(&count).Error
	if err != nil {
		return false, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目失败", err)
	}
	return count > 0, nil
}

func (r *projectRepository) SlugInUse(slug string, excludeProjectID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Project{}).
		Where("slug = ? AND id <> ?", slug, excludeProjectID).
		Count(&count).Error
	if err != nil {
		return false, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目失败", err)
	}
	return count > 0, nil
}

func (r *projectRepository) ListAll() ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.Order("title ASC").Find(&projects).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目列表失败", err)
	}
	return projects, nil
}

func (r *projectRepository) ListByUser(userID int64) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID).
		Order("projects.title ASC").
		Find(&projects).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目列表失败", err)
	}
	return projects, nil
}

func (r *projectRepository) Update(project *model.Project) error {
	if err := r.db.Save(project).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新项目失败", err)
	}
	return nil
}

// DeleteCascade 所有权链 Project → Issue → Comment → Reply 全量级联删除
func (r *projectRepository) DeleteCascade(id int64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		issueIDs := tx.Model(&model.Issue{}).Select("id").Where("project_id = ?", id)
		commentIDs := tx.Model(&model.Comment{}).Select("id").Where("issue_id IN (?)", issueIDs)

		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&model.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("issue_id IN (?)", issueIDs).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("issue_id IN (?)", issueIDs).Delete(&model.IssueAssignee{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Issue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Project{}, id).Error
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除项目失败", err)
	}
	return nil
}

func (r *projectRepository) ListMemberUsers(projectID int64) ([]*model.User, error) {
	var users []*model.User
	err := r.db.
		Joins("JOIN project_members ON project_members.user_id = users.id").
		Where("project_members.project_id = ?", projectID).
		Order("users.username ASC").
		Find(&users).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目成员失败", err)
	}
	return users, nil
}
