package service

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"bugtrack/internal/dto"
	"bugtrack/internal/model"
	"bugtrack/internal/pkg/auth"
	"bugtrack/internal/repository"
	"bugtrack/pkg/constants"
	pkgErrors "bugtrack/pkg/errors"
)

// AssignmentService 项目/Issue的批量分配协调器。
// 每个批次在一个事务内执行, 逐用户幂等: assign跳过已在目标状态的用户,
// unassign跳过本就不在的用户, 冗余请求不报错。
type AssignmentService interface {
	// AssignToProject 项目成员批量分配/取消分配。
	// assign时管理员/项目经理级联进项目全部Issue的访问名单;
	// unassign时无论角色一律从全部Issue的访问名单移除。
	AssignToProject(actor *model.User, projectSlug string, req *dto.AssignmentRequest) (*dto.AssignmentResult, error)
	// AssignToIssue Issue访问名单批量分配/取消分配, 无项目级联
	AssignToIssue(actor *model.User, projectSlug string, num int64, req *dto.AssignmentRequest) (*dto.AssignmentResult, error)
}

type assignmentService struct {
	db          *gorm.DB
	projectRepo repository.ProjectRepository
	issueRepo   repository.IssueRepository
	userRepo    repository.UserRepository
}

func NewAssignmentService(
	db *gorm.DB,
	projectRepo repository.ProjectRepository,
	issueRepo repository.IssueRepository,
	userRepo repository.UserRepository,
) AssignmentService {
	return &assignmentService{
		db:          db,
		projectRepo: projectRepo,
		issueRepo:   issueRepo,
		userRepo:    userRepo,
	}
}

func (s *assignmentService) AssignToProject(actor *model.User, projectSlug string, req *dto.AssignmentRequest) (*dto.AssignmentResult, error) {
	project, err := s.projectRepo.FindBySlug(projectSlug, repository.WithPreload("Members"))
	if err != nil {
		return nil, err
	}
	if !auth.CanManageProject(actor, project) {
		return nil, pkgErrors.ErrForbidden
	}

	users, err := loadUsersInOrder(s.userRepo, req.UserIDs)
	if err != nil {
		return nil, err
	}

	issues, err := s.issueRepo.ListByProject(project.ID)
	if err != nil {
		return nil, err
	}

	var changed []*model.User
	switch req.Action {
	case constants.AssignActionAssign:
		changed = lo.Filter(users, func(u *model.User, _ int) bool {
			return !project.HasMember(u.ID)
		})
		err = persistFor(s.db, actor, func(tx *gorm.DB) error {
			for _, user := range changed {
				if err := tx.Create(&model.ProjectMember{ProjectID: project.ID, UserID: user.ID}).Error; err != nil {
					return err
				}
				if !auth.IsAdmin(user) && !auth.IsManager(user) {
					continue
				}
				// 管理员/项目经理入项后进入每个现存Issue的访问名单
				for _, issue := range issues {
					assignee := &model.IssueAssignee{IssueID: issue.ID, UserID: user.ID}
					if err := tx.Where("issue_id = ? AND user_id = ?", issue.ID, user.ID).
						FirstOrCreate(assignee).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})

	case constants.AssignActionUnassign:
		changed = lo.Filter(users, func(u *model.User, _ int) bool {
			return project.HasMember(u.ID)
		})
		err = persistFor(s.db, actor, func(tx *gorm.DB) error {
			issueIDs := tx.Model(&model.Issue{}).Select("id").Where("project_id = ?", project.ID)
			for _, user := range changed {
				if err := tx.Where("project_id = ? AND user_id = ?", project.ID, user.ID).
					Delete(&model.ProjectMember{}).Error; err != nil {
					return err
				}
				// 成员资格已失, 无论角色一律移出全部Issue访问名单
				if err := tx.Where("issue_id IN (?) AND user_id = ?", issueIDs, user.ID).
					Delete(&model.IssueAssignee{}).Error; err != nil {
					return err
				}
			}
			return nil
		})

	default:
		return nil, pkgErrors.ErrInvalidParams
	}
	if err != nil {
		return nil, err
	}

	names := lo.Map(changed, func(u *model.User, _ int) string { return u.Username })
	verb := "assigned to"
	if req.Action == constants.AssignActionUnassign {
		verb = "unassigned from"
	}
	// 全员已处于目标状态时给出无变更摘要, 不渲染空名单
	summary := fmt.Sprintf("No users were %s project '%s'.", verb, project.Title)
	if len(names) > 0 {
		summary = fmt.Sprintf("The following users have been %s project '%s': %s.",
			verb, project.Title, strings.Join(names, ", "))
	}
	return &dto.AssignmentResult{
		Summary: summary,
		Applied: names,
	}, nil
}

func (s *assignmentService) AssignToIssue(actor *model.User, projectSlug string, num int64, req *dto.AssignmentRequest) (*dto.AssignmentResult, error) {
	project, err := s.projectRepo.FindBySlug(projectSlug)
	if err != nil {
		return nil, err
	}
	issue, err := s.issueRepo.FindByProjectAndNum(project.ID, num, repository.WithPreload("Assignees"))
	if err != nil {
		return nil, err
	}
	if !auth.CanAccessIssue(actor, issue) {
		return nil, pkgErrors.ErrForbidden
	}

	users, err := loadUsersInOrder(s.userRepo, req.UserIDs)
	if err != nil {
		return nil, err
	}

	var changed []*model.User
	switch req.Action {
	case constants.AssignActionAssign:
		changed = lo.Filter(users, func(u *model.User, _ int) bool {
			return !issue.HasAssignee(u.ID)
		})
		err = persistFor(s.db, actor, func(tx *gorm.DB) error {
			for _, user := range changed {
				if err := tx.Create(&model.IssueAssignee{IssueID: issue.ID, UserID: user.ID}).Error; err != nil {
					return err
				}
			}
			return nil
		})

	case constants.AssignActionUnassign:
		changed = lo.Filter(users, func(u *model.User, _ int) bool {
			return issue.HasAssignee(u.ID)
		})
		err = persistFor(s.db, actor, func(tx *gorm.DB) error {
			for _, user := range changed {
				if err := tx.Where("issue_id = ? AND user_id = ?", issue.ID, user.ID).
					Delete(&model.IssueAssignee{}).Error; err != nil {
					return err
				}
			}
			return nil
		})

	default:
		return nil, pkgErrors.ErrInvalidParams
	}
	if err != nil {
		return nil, err
	}

	names := lo.Map(changed, func(u *model.User, _ int) string { return u.Username })
	verb := "assigned to"
	if req.Action == constants.AssignActionUnassign {
		verb = "unassigned from"
	}
	summary := fmt.Sprintf("No users were %s issue #%d of project '%s'.", verb, issue.Num, project.Title)
	if len(names) > 0 {
		summary = fmt.Sprintf("The following users have been %s issue #%d of project '%s': %s.",
			verb, issue.Num, project.Title, strings.Join(names, ", "))
	}
	return &dto.AssignmentResult{
		Summary: summary,
		Applied: names,
	}, nil
}
