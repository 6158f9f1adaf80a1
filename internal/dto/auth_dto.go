package dto

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	AuthType string `json:"auth_type" binding:"required,oneof=ldap local"` // ldap or local
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int           `json:"expires_in"`
	Notice       string        `json:"notice,omitempty"` // 演示账号登录时附带的提示
	User         *UserResponse `json:"user"`
}

// SignupRequest 注册请求
type SignupRequest struct {
	Username        string  `json:"username" binding:"required,max=150"`
	Email           *string `json:"email" binding:"omitempty,email"`
	FirstName       *string `json:"first_name" binding:"omitempty,max=150"`
	LastName        *string `json:"last_name" binding:"omitempty,max=150"`
	Password        string  `json:"password" binding:"required"`
	ConfirmPassword string  `json:"confirm_password" binding:"required"`
}

// RefreshTokenRequest 刷新Token请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
