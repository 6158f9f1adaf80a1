package dto

// UserResponse 用户响应
type UserResponse struct {
	ID         int64   `json:"id"`
	Username   string  `json:"username"`
	Email      *string `json:"email,omitempty"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Role       string  `json:"role"`
	Status     int8    `json:"status"`
	Restricted bool    `json:"restricted"`
	CreatedAt  string  `json:"created_at"`
}

// UserSimpleResponse 用户精简信息
type UserSimpleResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// CreateUserRequest 管理员创建用户请求
type CreateUserRequest struct {
	Username        string  `json:"username" binding:"required,max=150"`
	Email           *string `json:"email" binding:"omitempty,email"`
	FirstName       *string `json:"first_name" binding:"omitempty,max=150"`
	LastName        *string `json:"last_name" binding:"omitempty,max=150"`
	Role            string  `json:"role" binding:"required,oneof=admin project_manager developer submitter"`
	Password        string  `json:"password" binding:"required"`
	ConfirmPassword string  `json:"confirm_password" binding:"required"`
}

// UpdateProfileRequest 更新个人资料请求
type UpdateProfileRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// SetPasswordRequest 管理员重置密码请求
type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// BatchSetRoleRequest 批量设置角色请求
type BatchSetRoleRequest struct {
	UserIDs []int64 `json:"user_ids" binding:"required,min=1"`
	Role    string  `json:"role" binding:"required,oneof=admin project_manager developer submitter"`
}

// BatchDeactivateRequest 批量停用用户请求
type BatchDeactivateRequest struct {
	UserIDs []int64 `json:"user_ids" binding:"required,min=1"`
}

// BatchUserResult 批量操作结果
type BatchUserResult struct {
	Summary string   `json:"summary"`
	Applied []string `json:"applied"` // 实际生效的用户名, 按请求顺序
}
