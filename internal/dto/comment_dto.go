package dto

// CreateCommentRequest 创建评论请求
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// UpdateCommentRequest 编辑评论请求
type UpdateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// CreateReplyRequest 创建回复请求
type CreateReplyRequest struct {
	Text string `json:"text" binding:"required"`
}

// CommentResponse 评论响应
type CommentResponse struct {
	ID        int64            `json:"id"`
	IssueID   int64            `json:"issue_id"`
	Author    string           `json:"author"`
	Text      string           `json:"text"`
	Deleted   bool             `json:"deleted"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
	Replies   []*ReplyResponse `json:"replies,omitempty"`
}

// ReplyResponse 回复响应
type ReplyResponse struct {
	ID        int64  `json:"id"`
	CommentID int64  `json:"comment_id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	Deleted   bool   `json:"deleted"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
