package service

import (
	"gorm.io/gorm"

	"bugtrack/internal/dto"
	"bugtrack/internal/model"
	"bugtrack/internal/pkg/auth"
	"bugtrack/internal/repository"
	"bugtrack/pkg/constants"
	pkgErrors "bugtrack/pkg/errors"
)

type CommentService interface {
	Create(actor *model.User, projectSlug string, num int64, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	// Update 编辑评论正文, 已打墓碑的评论拒绝编辑
	Update(actor *model.User, commentID int64, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	// Delete 打墓碑: 正文替换为固定标记, 行不删除, 不可恢复
	Delete(actor *model.User, commentID int64) (*dto.CommentResponse, error)

	CreateReply(actor *model.User, commentID int64, req *dto.CreateReplyRequest) (*dto.ReplyResponse, error)
	UpdateReply(actor *model.User, replyID int64, req *dto.UpdateCommentRequest) (*dto.ReplyResponse, error)
	DeleteReply(actor *model.User, replyID int64) (*dto.ReplyResponse, error)
}

type commentService struct {
	db          *gorm.DB
	projectRepo repository.ProjectRepository
	issueRepo   repository.IssueRepository
	commentRepo repository.CommentRepository
}

func NewCommentService(
	db *gorm.DB,
	projectRepo repository.ProjectRepository,
	issueRepo repository.IssueRepository,
	commentRepo repository.CommentRepository,
) CommentService {
	return &commentService{
		db:          db,
		projectRepo: projectRepo,
		issueRepo:   issueRepo,
		commentRepo: commentRepo,
	}
}

func (s *commentService) Create(actor *model.User, projectSlug string, num int64, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	project, err := s.projectRepo.FindBySlug(projectSlug, repository.WithPreload("Members"))
	if err != nil {
		return nil, err
	}
	issue, err := s.issueRepo.FindByProjectAndNum(project.ID, num, repository.WithPreload("Assignees"))
	if err != nil {
		return nil, err
	}
	if !auth.CanAuthorComment(actor, project, issue) {
		return nil, pkgErrors.ErrForbidden
	}

	comment := &model.Comment{
		IssueID:  issue.ID,
		AuthorID: actor.ID,
		Text:     req.Text,
		Status:   constants.CommentStatusActive,
	}
	err = persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.commentRepo.WithTx(tx).Create(comment)
	})
	if err != nil {
		return nil, err
	}

	comment.Author = actor
	return toCommentResponse(comment), nil
}

func (s *commentService) Update(actor *model.User, commentID int64, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, err
	}
	project, err := s.projectOf(comment.IssueID)
	if err != nil {
		return nil, err
	}
	if !auth.CanModerateComment(actor, project, comment.AuthorID) {
		return nil, pkgErrors.ErrForbidden
	}
	if comment.IsDeleted() {
		return nil, pkgErrors.ErrCommentDeleted
	}

	comment.Text = req.Text
	err = persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.commentRepo.WithTx(tx).Update(comment)
	})
	if err != nil {
		return nil, err
	}
	return toCommentResponse(comment), nil
}

func (s *commentService) Delete(actor *model.User, commentID int64) (*dto.CommentResponse, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, err
	}
	project, err := s.projectOf(comment.IssueID)
	if err != nil {
		return nil, err
	}
	if !auth.CanModerateComment(actor, project, comment.AuthorID) {
		return nil, pkgErrors.ErrForbidden
	}

	comment.Text = constants.CommentTombstone
	comment.Status = constants.CommentStatusDeleted
	err = persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.commentRepo.WithTx(tx).Update(comment)
	})
	if err != nil {
		return nil, err
	}
	return toCommentResponse(comment), nil
}

func (s *commentService) CreateReply(actor *model.User, commentID int64, req *dto.CreateReplyRequest) (*dto.ReplyResponse, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, err
	}
	project, issue, err := s.contextOf(comment.IssueID)
	if err != nil {
		return nil, err
	}
	if !auth.CanAuthorComment(actor, project, issue) {
		return nil, pkgErrors.ErrForbidden
	}

	reply := &model.Reply{
		CommentID: comment.ID,
		AuthorID:  actor.ID,
		Text:      req.Text,
		Status:    constants.CommentStatusActive,
	}
	err = persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.commentRepo.WithTx(tx).CreateReply(reply)
	})
	if err != nil {
		return nil, err
	}

	reply.Author = actor
	return toReplyResponse(reply), nil
}

func (s *commentService) UpdateReply(actor *model.User, replyID int64, req *dto.UpdateCommentRequest) (*dto.ReplyResponse, error) {
	reply, err := s.commentRepo.FindReplyByID(replyID)
	if err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.FindByID(reply.CommentID)
	if err != nil {
		return nil, err
	}
	project, err := s.projectOf(comment.IssueID)
	if err != nil {
		return nil, err
	}
	if !auth.CanModerateComment(actor, project, reply.AuthorID) {
		return nil, pkgErrors.ErrForbidden
	}
	if reply.IsDeleted() {
		return nil, pkgErrors.ErrCommentDeleted
	}

	reply.Text = req.Text
	err = persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.commentRepo.WithTx(tx).UpdateReply(reply)
	})
	if err != nil {
		return nil, err
	}
	return toReplyResponse(reply), nil
}

func (s *commentService) DeleteReply(actor *model.User, replyID int64) (*dto.ReplyResponse, error) {
	reply, err := s.commentRepo.FindReplyByID(replyID)
	if err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.FindByID(reply.CommentID)
	if err != nil {
		return nil, err
	}
	project, err := s.projectOf(comment.IssueID)
	if err != nil {
		return nil, err
	}
	if !auth.CanModerateComment(actor, project, reply.AuthorID) {
		return nil, pkgErrors.ErrForbidden
	}

	reply.Text = constants.CommentTombstone
	reply.Status = constants.CommentStatusDeleted
	err = persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.commentRepo.WithTx(tx).UpdateReply(reply)
	})
	if err != nil {
		return nil, err
	}
	return toReplyResponse(reply), nil
}

// projectOf 由Issue定位所属项目, 预加载成员供策略判断
func (s *commentService) projectOf(issueID int64) (*model.Project, error) {
	issue, err := s.issueRepo.FindByID(issueID)
	if err != nil {
		return nil, err
	}
	return s.projectRepo.FindByID(issue.ProjectID, repository.WithPreload("Members"))
}

func (s *commentService) contextOf(issueID int64) (*model.Project, *model.Issue, error) {
	issue, err := s.issueRepo.FindByID(issueID, repository.WithPreload("Assignees"))
	if err != nil {
		return nil, nil, err
	}
	project, err := s.projectRepo.FindByID(issue.ProjectID, repository.WithPreload("Members"))
	if err != nil {
		return nil, nil, err
	}
	return project, issue, nil
}
