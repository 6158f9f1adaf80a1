package dto

// AssignmentRequest 批量分配/取消分配请求
type AssignmentRequest struct {
	UserIDs []int64 `json:"user_ids" binding:"required,min=1"`
	Action  string  `json:"action" binding:"required,oneof=assign unassign"`
}

// AssignmentResult 批量分配结果
type AssignmentResult struct {
	Summary string   `json:"summary"`
	Applied []string `json:"applied"` // 实际变更的用户名, 按请求顺序
}
