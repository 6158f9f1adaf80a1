package dto

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Title       string  `json:"title" binding:"required,max=100"`
	Description *string `json:"description"`
}

// UpdateProjectRequest 更新项目请求
type UpdateProjectRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=100"`
	Description *string `json:"description"`
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ProjectDetailResponse 项目详情, Issues按调用者可见范围过滤
type ProjectDetailResponse struct {
	ProjectResponse
	Members []*UserSimpleResponse `json:"members"`
	Issues  []*IssueResponse      `json:"issues"`
}
