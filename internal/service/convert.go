package service

import (
	"encoding/json"
	"time"

	"bugtrack/internal/dto"
	"bugtrack/internal/model"
)

func toUserSimple(user *model.User) *dto.UserSimpleResponse {
	return &dto.UserSimpleResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
}

func toIssueResponse(issue *model.Issue) *dto.IssueResponse {
	resp := &dto.IssueResponse{
		ID:          issue.ID,
		ProjectID:   issue.ProjectID,
		Num:         issue.Num,
		Title:       issue.Title,
		Description: issue.Description,
		IssueType:   issue.IssueType,
		Priority:    issue.Priority,
		Status:      issue.Status,
		Tag:         issue.Tag,
		CreatedAt:   issue.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   issue.UpdatedAt.Format(time.RFC3339),
	}
	if issue.Submitter != nil {
		resp.Submitter = issue.Submitter.Username
	}
	if issue.Assignee != nil {
		resp.Assignee = &issue.Assignee.Username
	}
	if issue.DateClosed != nil {
		closed := issue.DateClosed.Format(time.RFC3339)
		resp.DateClosed = &closed
	}
	if len(issue.Attachment) > 0 {
		resp.Attachment = json.RawMessage(issue.Attachment)
	}
	return resp
}

func toCommentResponse(comment *model.Comment) *dto.CommentResponse {
	resp := &dto.CommentResponse{
		ID:        comment.ID,
		IssueID:   comment.IssueID,
		Text:      comment.Text,
		Deleted:   comment.IsDeleted(),
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
		UpdatedAt: comment.UpdatedAt.Format(time.RFC3339),
	}
	if comment.Author != nil {
		resp.Author = comment.Author.Username
	}
	for i := range comment.Replies {
		resp.Replies = append(resp.Replies, toReplyResponse(&comment.Replies[i]))
	}
	return resp
}

func toReplyResponse(reply *model.Reply) *dto.ReplyResponse {
	resp := &dto.ReplyResponse{
		ID:        reply.ID,
		CommentID: reply.CommentID,
		Text:      reply.Text,
		Deleted:   reply.IsDeleted(),
		CreatedAt: reply.CreatedAt.Format(time.RFC3339),
		UpdatedAt: reply.UpdatedAt.Format(time.RFC3339),
	}
	if reply.Author != nil {
		resp.Author = reply.Author.Username
	}
	return resp
}

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       user.Role,
		Status:     user.Status,
		Restricted: user.Restricted,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}
}
