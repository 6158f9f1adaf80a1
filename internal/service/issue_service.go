package service

import (
	"errors"
	"time"

	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bugtrack/internal/dto"
	"bugtrack/internal/model"
	"bugtrack/internal/pkg/auth"
	"bugtrack/internal/repository"
	"bugtrack/pkg/constants"
	pkgErrors "bugtrack/pkg/errors"
)

type IssueService interface {
	// Create 在slug指定的项目下创建Issue
	Create(actor *model.User, projectSlug string, req *dto.CreateIssueRequest) (*dto.IssueResponse, error)
	// CreateUnscoped 自助创建, 项目在请求体中指定, 仅限自己名下的项目
	CreateUnscoped(actor *model.User, req *dto.CreateIssueUnscopedRequest) (*dto.IssueResponse, error)
	Detail(actor *model.User, projectSlug string, num int64) (*dto.IssueDetailResponse, error)
	Update(actor *model.User, projectSlug string, num int64, req *dto.UpdateIssueRequest) (*dto.IssueResponse, error)
	Delete(actor *model.User, projectSlug string, num int64) error
	// ListMine 当前用户访问名单内的全部Issue
	ListMine(actor *model.User) ([]*dto.IssueResponse, error)
}

type issueService struct {
	db          *gorm.DB
	projectRepo repository.ProjectRepository
	issueRepo   repository.IssueRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
}

func NewIssueService(
	db *gorm.DB,
	projectRepo repository.ProjectRepository,
	issueRepo repository.IssueRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
) IssueService {
	return &issueService{
		db:          db,
		projectRepo: projectRepo,
		issueRepo:   issueRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
	}
}

func (s *issueService) Create(actor *model.User, projectSlug string, req *dto.CreateIssueRequest) (*dto.IssueResponse, error) {
	project, err := s.projectRepo.FindBySlug(projectSlug, repository.WithPreload("Members"))
	if err != nil {
		return nil, err
	}
	return s.create(actor, project, req)
}

func (s *issueService) CreateUnscoped(actor *model.User, req *dto.CreateIssueUnscopedRequest) (*dto.IssueResponse, error) {
	project, err := s.projectRepo.FindByID(req.ProjectID, repository.WithPreload("Members"))
	if err != nil {
		return nil, err
	}
	return s.create(actor, project, &req.CreateIssueRequest)
}

func (s *issueService) create(actor *model.User, project *model.Project, req *dto.CreateIssueRequest) (*dto.IssueResponse, error) {
	if !auth.CanCreateProjectIssue(actor, project) {
		return nil, pkgErrors.ErrForbidden
	}

	var assignee *model.User
	if req.AssigneeID != nil {
		var err error
		assignee, err = s.userRepo.FindByID(*req.AssigneeID)
		if err != nil {
			return nil, err
		}
	}

	issue := &model.Issue{
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		IssueType:   constants.IssueTypeBug,
		Priority:    constants.IssuePriorityDefault,
		Status:      constants.IssueStatusOpen,
		Tag:         req.Tag,
		SubmitterID: actor.ID,
		AssigneeID:  req.AssigneeID,
	}
	if req.IssueType != "" {
		issue.IssueType = req.IssueType
	}
	if req.Priority != nil {
		issue.Priority = *req.Priority
	}
	if len(req.Attachment) > 0 {
		issue.Attachment = datatypes.JSON(req.Attachment)
	}

	// 受限账号跳过事务不落库, 预先算一个序号用于回显;
	// 正常账号的序号在插入事务内重算
	num, err := s.nextNum(s.db, project.ID)
	if err != nil {
		return nil, err
	}
	issue.Num = num

	// 访问名单种子: 提交人 + 被指派人 + 项目成员中的全部项目经理
	memberUsers, err := s.projectRepo.ListMemberUsers(project.ID)
	if err != nil {
		return nil, err
	}
	seedIDs := []int64{actor.ID}
	if assignee != nil {
		seedIDs = append(seedIDs, assignee.ID)
	}
	for _, member := range memberUsers {
		if auth.IsManager(member) {
			seedIDs = append(seedIDs, member.ID)
		}
	}
	seedIDs = lo.Uniq(seedIDs)

	insert := func() error {
		return persistFor(s.db, actor, func(tx *gorm.DB) error {
			// 读-算-插同处一个事务, (project_id, num)唯一索引兜底并发重号
			num, err := s.nextNum(tx, project.ID)
			if err != nil {
				return err
			}
			issue.Num = num
			if err := tx.Create(issue).Error; err != nil {
				return err
			}
			for _, userID := range seedIDs {
				if err := tx.Create(&model.IssueAssignee{IssueID: issue.ID, UserID: userID}).Error; err != nil {
					return err
				}
			}
			// 被指派人尚不在项目中时, 单向级联进项目
			if assignee != nil && !project.HasMember(assignee.ID) {
				return tx.Create(&model.ProjectMember{ProjectID: project.ID, UserID: assignee.ID}).Error
			}
			return nil
		})
	}

	err = insert()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发创建撞号, 回滚后重算序号再试一次
		issue.ID = 0
		err = insert()
	}
	if err != nil {
		return nil, err
	}

	issue.Submitter = actor
	issue.Assignee = assignee
	return toIssueResponse(issue), nil
}

func (s *issueService) Detail(actor *model.User, projectSlug string, num int64) (*dto.IssueDetailResponse, error) {
	project, issue, err := s.load(projectSlug, num)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccessIssue(actor, issue) {
		return nil, pkgErrors.ErrForbidden
	}

	assignees, err := s.issueRepo.ListAssigneeUsers(issue.ID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByIssue(issue.ID)
	if err != nil {
		return nil, err
	}

	detail := &dto.IssueDetailResponse{
		IssueResponse: *toIssueResponse(issue),
		ProjectTitle:  project.Title,
		ProjectSlug:   project.Slug,
		Assignees:     make([]*dto.UserSimpleResponse, len(assignees)),
		Comments:      make([]*dto.CommentResponse, len(comments)),
	}
	for i, user := range assignees {
		detail.Assignees[i] = toUserSimple(user)
	}
	for i, comment := range comments {
		detail.Comments[i] = toCommentResponse(comment)
	}
	return detail, nil
}

func (s *issueService) Update(actor *model.User, projectSlug string, num int64, req *dto.UpdateIssueRequest) (*dto.IssueResponse, error) {
	_, issue, err := s.load(projectSlug, num)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccessIssue(actor, issue) {
		return nil, pkgErrors.ErrForbidden
	}

	if req.Title != nil {
		issue.Title = *req.Title
	}
	if req.Description != nil {
		issue.Description = *req.Description
	}
	if req.IssueType != nil {
		issue.IssueType = *req.IssueType
	}
	if req.Priority != nil {
		issue.Priority = *req.Priority
	}
	if req.Tag != nil {
		issue.Tag = req.Tag
	}
	if req.AssigneeID != nil {
		issue.AssigneeID = req.AssigneeID
	}
	if len(req.Attachment) > 0 {
		issue.Attachment = datatypes.JSON(req.Attachment)
	}

	// 关闭只在 open→closed 的迁移上生效: 盖时间戳并清空访问名单。
	// 重复保存已关闭的Issue既不重新盖戳也不重新清空。
	closing := false
	if req.Status != nil && *req.Status != issue.Status {
		issue.Status = *req.Status
		if *req.Status == constants.IssueStatusClosed {
			closing = true
			now := time.Now()
			issue.DateClosed = &now
		}
	}

	err = persistFor(s.db, actor, func(tx *gorm.DB) error {
		if err := s.issueRepo.WithTx(tx).Update(issue); err != nil {
			return err
		}
		if closing {
			return tx.Where("issue_id = ?", issue.ID).Delete(&model.IssueAssignee{}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toIssueResponse(issue), nil
}

func (s *issueService) Delete(actor *model.User, projectSlug string, num int64) error {
	_, issue, err := s.load(projectSlug, num)
	if err != nil {
		return err
	}
	if !auth.CanAccessIssue(actor, issue) {
		return pkgErrors.ErrForbidden
	}

	return persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.issueRepo.WithTx(tx).DeleteCascade(issue.ID)
	})
}

func (s *issueService) ListMine(actor *model.User) ([]*dto.IssueResponse, error) {
	issues, err := s.issueRepo.ListAssigned(actor.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.IssueResponse, len(issues))
	for i, issue := range issues {
		responses[i] = toIssueResponse(issue)
	}
	return responses, nil
}

// load 按项目slug和项目内序号定位Issue, 预加载访问名单
func (s *issueService) load(projectSlug string, num int64) (*model.Project, *model.Issue, error) {
	project, err := s.projectRepo.FindBySlug(projectSlug)
	if err != nil {
		return nil, nil, err
	}
	issue, err := s.issueRepo.FindByProjectAndNum(project.ID, num,
		repository.WithPreload("Assignees"),
		repository.WithPreload("Submitter"),
		repository.WithPreload("Assignee"),
	)
	if err != nil {
		return nil, nil, err
	}
	return project, issue, nil
}

func (s *issueService) nextNum(db *gorm.DB, projectID int64) (int64, error) {
	var max int64
	err := db.Model(&model.Issue{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(num), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "计算Issue序号失败", err)
	}
	return max + 1, nil
}
