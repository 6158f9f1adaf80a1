package service

import (
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"bugtrack/internal/dto"
	"bugtrack/internal/model"
	"bugtrack/internal/pkg/auth"
	"bugtrack/internal/repository"
	pkgErrors "bugtrack/pkg/errors"
)

type ProjectService interface {
	Create(actor *model.User, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	Update(actor *model.User, slugName string, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	Delete(actor *model.User, slugName string) error
	// ListAll 全部项目, 仅管理员
	ListAll(actor *model.User) ([]*dto.ProjectResponse, error)
	// ListMine 当前用户名下的项目
	ListMine(actor *model.User) ([]*dto.ProjectResponse, error)
	// Detail 项目详情, Issue列表按调用者角色过滤:
	// 管理员/项目经理看全部, 其他角色只看分配给自己的
	Detail(actor *model.User, slugName string) (*dto.ProjectDetailResponse, error)
}

type projectService struct {
	db          *gorm.DB
	projectRepo repository.ProjectRepository
	issueRepo   repository.IssueRepository
}

func NewProjectService(
	db *gorm.DB,
	projectRepo repository.ProjectRepository,
	issueRepo repository.IssueRepository,
) ProjectService {
	return &projectService{
		db:          db,
		projectRepo: projectRepo,
		issueRepo:   issueRepo,
	}
}

func (s *projectService) Create(actor *model.User, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if !auth.CanCreateProject(actor) {
		return nil, pkgErrors.ErrForbidden
	}

	inUse, err := s.projectRepo.TitleInUse(req.Title, 0)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, pkgErrors.New(pkgErrors.CodeConflict, "项目名称已存在")
	}

	// 不同标题可能推导出相同slug, 唯一索引之前先行拦截
	slugName := slug.Make(req.Title)
	inUse, err = s.projectRepo.SlugInUse(slugName, 0)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, pkgErrors.New(pkgErrors.CodeConflict, "项目标识已存在")
	}

	project := &model.Project{
		Title: req.Title,
		Slug:  slugName,
	}
	if req.Description != nil {
		project.Description = *req.Description
	}

	err = persistFor(s.db, actor, func(tx *gorm.DB) error {
		if err := s.projectRepo.WithTx(tx).Create(project); err != nil {
			return err
		}
		// 创建项目的项目经理自动成为成员, 管理员不占成员位
		if auth.IsManager(actor) {
			return tx.Create(&model.ProjectMember{
				ProjectID: project.ID,
				UserID:    actor.ID,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.toResponse(project), nil
}

func (s *projectService) Update(actor *model.User, slugName string, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindBySlug(slugName, repository.WithPreload("Members"))
	if err != nil {
		return nil, err
	}
	if !auth.CanManageProject(actor, project) {
		return nil, pkgErrors.ErrForbidden
	}

	if req.Title != nil && *req.Title != project.Title {
		inUse, err := s.projectRepo.TitleInUse(*req.Title, project.ID)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, pkgErrors.New(pkgErrors.CodeConflict, "项目名称已存在")
		}

		newSlug := slug.Make(*req.Title)
		inUse, err = s.projectRepo.SlugInUse(newSlug, project.ID)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, pkgErrors.New(pkgErrors.CodeConflict, "项目标识已存在")
		}
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	// slug每次保存都从title重新推导, 标题修改后保持同步
	project.Slug = slug.Make(project.Title)

	err = persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.projectRepo.WithTx(tx).Update(project)
	})
	if err != nil {
		return nil, err
	}

	return s.toResponse(project), nil
}

func (s *projectService) Delete(actor *model.User, slugName string) error {
	project, err := s.projectRepo.FindBySlug(slugName, repository.WithPreload("Members"))
	if err != nil {
		return err
	}
	if !auth.CanManageProject(actor, project) {
		return pkgErrors.ErrForbidden
	}

	return persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.projectRepo.WithTx(tx).DeleteCascade(project.ID)
	})
}

func (s *projectService) ListAll(actor *model.User) ([]*dto.ProjectResponse, error) {
	if !auth.CanListAllProjects(actor) {
		return nil, pkgErrors.ErrForbidden
	}

	projects, err := s.projectRepo.ListAll()
	if err != nil {
		return nil, err
	}
	return s.toResponses(projects), nil
}

func (s *projectService) ListMine(actor *model.User) ([]*dto.ProjectResponse, error) {
	projects, err := s.projectRepo.ListByUser(actor.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(projects), nil
}

func (s *projectService) Detail(actor *model.User, slugName string) (*dto.ProjectDetailResponse, error) {
	project, err := s.projectRepo.FindBySlug(slugName, repository.WithPreload("Members"))
	if err != nil {
		return nil, err
	}
	if !auth.CanViewProject(actor, project) {
		return nil, pkgErrors.ErrForbidden
	}

	members, err := s.projectRepo.ListMemberUsers(project.ID)
	if err != nil {
		return nil, err
	}

	var issues []*model.Issue
	if auth.IsAdmin(actor) || auth.IsManager(actor) {
		issues, err = s.issueRepo.ListByProject(project.ID)
	} else {
		issues, err = s.issueRepo.ListByProjectForUser(project.ID, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	detail := &dto.ProjectDetailResponse{
		ProjectResponse: *s.toResponse(project),
		Members:         make([]*dto.UserSimpleResponse, len(members)),
		Issues:          make([]*dto.IssueResponse, len(issues)),
	}
	for i, member := range members {
		detail.Members[i] = toUserSimple(member)
	}
	for i, issue := range issues {
		detail.Issues[i] = toIssueResponse(issue)
	}
	return detail, nil
}

func (s *projectService) toResponse(project *model.Project) *dto.ProjectResponse {
	var description *string
	if project.Description != "" {
		description = &project.Description
	}
	return &dto.ProjectResponse{
		ID:          project.ID,
		Title:       project.Title,
		Slug:        project.Slug,
		Description: description,
		CreatedAt:   project.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   project.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *projectService) toResponses(projects []*model.Project) []*dto.ProjectResponse {
	responses := make([]*dto.ProjectResponse, len(projects))
	for i, project := range projects {
		responses[i] = s.toResponse(project)
	}
	return responses
}
