package repository

import (
	"gorm.io/gorm"

	"bugtrack/internal/model"
	pkgErrors "bugtrack/pkg/errors"
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	FindByID(id int64) (*model.Comment, error)
	// ListByIssue 按创建时间倒序返回Issue下的评论
	ListByIssue(issueID int64) ([]*model.Comment, error)
	Update(comment *model.Comment) error

	CreateReply(reply *model.Reply) error
	FindReplyByID(id int64) (*model.Reply, error)
	UpdateReply(reply *model.Reply) error

	// WithTx 返回绑定到指定事务的仓库
	WithTx(tx *gorm.DB) CommentRepository
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{db: tx}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建评论失败", err)
	}
	return nil
}

func (r *commentRepository) FindByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.First(&comment, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrCommentNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询评论失败", err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByIssue(issueID int64) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("issue_id = ?", issueID).
		Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Replies.Author").
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询评论列表失败", err)
	}
	return comments, nil
}

func (r *commentRepository) Update(comment *model.Comment) error {
	if err := r.db.Save(comment).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新评论失败", err)
	}
	return nil
}

func (r *commentRepository) CreateReply(reply *model.Reply) error {
	if err := r.db.Create(reply).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建回复失败", err)
	}
	return nil
}

func (r *commentRepository) FindReplyByID(id int64) (*model.Reply, error) {
	var reply model.Reply
	err := r.db.First(&reply, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrReplyNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询回复失败", err)
	}
	return &reply, nil
}

func (r *commentRepository) UpdateReply(reply *model.Reply) error {
	if err := r.db.Save(reply).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新回复失败", err)
	}
	return nil
}
