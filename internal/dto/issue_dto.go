package dto

import "encoding/json"

// CreateIssueRequest 创建Issue请求, 项目由URL路径指定
type CreateIssueRequest struct {
	Title       string  `json:"title" binding:"required,max=150"`
	Description string  `json:"description" binding:"required"`
	IssueType   string  `json:"issue_type" binding:"omitempty,oneof=bug feature other"`
	Priority    *int8   `json:"priority" binding:"omitempty,gte=1,lte=5"`
	Tag         *string `json:"tag" binding:"omitempty,max=50"`
	AssigneeID  *int64  `json:"assignee_id"`
	// 附件元数据, 文件本体不经过本服务
	Attachment json.RawMessage `json:"attachment,omitempty"`
}

// CreateIssueUnscopedRequest 创建Issue请求, 项目在请求体中指定
type CreateIssueUnscopedRequest struct {
	ProjectID int64 `json:"project_id" binding:"required,min=1"`
	CreateIssueRequest
}

// UpdateIssueRequest 更新Issue请求
type UpdateIssueRequest struct {
	Title       *string         `json:"title" binding:"omitempty,max=150"`
	Description *string         `json:"description"`
	IssueType   *string         `json:"issue_type" binding:"omitempty,oneof=bug feature other"`
	Priority    *int8           `json:"priority" binding:"omitempty,gte=1,lte=5"`
	Status      *string         `json:"status" binding:"omitempty,oneof=open closed"`
	Tag         *string         `json:"tag" binding:"omitempty,max=50"`
	AssigneeID  *int64          `json:"assignee_id"`
	Attachment  json.RawMessage `json:"attachment,omitempty"`
}

// IssueResponse Issue响应
type IssueResponse struct {
	ID          int64           `json:"id"`
	ProjectID   int64           `json:"project_id"`
	Num         int64           `json:"num"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	IssueType   string          `json:"issue_type"`
	Priority    int8            `json:"priority"`
	Status      string          `json:"status"`
	Tag         *string         `json:"tag,omitempty"`
	Submitter   string          `json:"submitter"`
	Assignee    *string         `json:"assignee,omitempty"`
	DateClosed  *string         `json:"date_closed,omitempty"`
	Attachment  json.RawMessage `json:"attachment,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// IssueDetailResponse Issue详情
type IssueDetailResponse struct {
	IssueResponse
	ProjectTitle string                `json:"project_title"`
	ProjectSlug  string                `json:"project_slug"`
	Assignees    []*UserSimpleResponse `json:"assignees"`
	Comments     []*CommentResponse    `json:"comments"`
}
