package service

import (
	"bugtrack/internal/dto"
	"bugtrack/internal/model"
	"bugtrack/internal/pkg/auth"
	"bugtrack/internal/pkg/config"
	"bugtrack/internal/pkg/crypto"
	"bugtrack/internal/pkg/jwt"
	"bugtrack/internal/repository"
	"bugtrack/pkg/constants"
	pkgErrors "bugtrack/pkg/errors"
)

type AuthService interface {
	Login(req *dto.LoginRequest) (*dto.LoginResponse, error)
	Signup(req *dto.SignupRequest) (*dto.LoginResponse, error)
	// DemoLogin 登录预置的演示沙箱账号, 返回Token和沙箱提示
	DemoLogin() (*dto.LoginResponse, error)
	RefreshToken(refreshToken string) (*dto.LoginResponse, error)
}

type authService struct {
	cfg         *config.AuthConfig
	demoCfg     *config.DemoConfig
	userRepo    repository.UserRepository
	ldapService LDAPService
}

func NewAuthService(
	cfg *config.AuthConfig,
	demoCfg *config.DemoConfig,
	userRepo repository.UserRepository,
	ldapService LDAPService,
) AuthService {
	return &authService{
		cfg:         cfg,
		demoCfg:     demoCfg,
		userRepo:    userRepo,
		ldapService: ldapService,
	}
}

func (s *authService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	var user *model.User
	var err error

	switch req.AuthType {
	case constants.AuthTypeLDAP:
		if !s.cfg.LDAP.Enabled {
			return nil, pkgErrors.New(pkgErrors.CodeAuthError, "LDAP认证未启用")
		}
		identity, err := s.ldapService.Authenticate(req.Username, req.Password)
		if err != nil {
			return nil, err
		}
		user, err = s.syncLDAPUser(identity)
		if err != nil {
			return nil, err
		}

	case constants.AuthTypeLocal:
		if !s.cfg.Local.Enabled {
			return nil, pkgErrors.New(pkgErrors.CodeAuthError, "本地认证未启用")
		}
		user, err = s.authenticateLocal(req.Username, req.Password)
		if err != nil {
			return nil, err
		}

	default:
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "不支持的认证类型")
	}

	return s.buildLoginResponse(user, req.AuthType)
}

func (s *authService) Signup(req *dto.SignupRequest) (*dto.LoginResponse, error) {
	if err := crypto.ValidatePassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}

	// 用户名唯一
	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, pkgErrors.New(pkgErrors.CodeConflict, "用户名已存在")
	} else if err != pkgErrors.ErrUserNotFound {
		return nil, err
	}

	if req.Email != nil {
		inUse, err := s.userRepo.EmailInUse(*req.Email, 0)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, pkgErrors.New(pkgErrors.CodeConflict, "邮箱已被占用")
		}
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "密码加密失败", err)
	}

	user := &model.User{
		Username:  req.Username,
		Password:  hash,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      string(auth.DefaultRole),
		Status:    constants.UserStatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.buildLoginResponse(user, constants.AuthTypeLocal)
}

func (s *authService) DemoLogin() (*dto.LoginResponse, error) {
	if !s.demoCfg.Enabled {
		return nil, pkgErrors.New(pkgErrors.CodeAuthError, "演示账号未启用")
	}

	user, err := s.userRepo.FindByUsername(s.demoCfg.Username)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, pkgErrors.ErrUserDisabled
	}

	_ = s.userRepo.UpdateLastLogin(user.ID)

	resp, err := s.buildLoginResponse(user, constants.AuthTypeLocal)
	if err != nil {
		return nil, err
	}
	resp.Notice = constants.DemoNotice
	return resp, nil
}

func (s *authService) authenticateLocal(username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if err == pkgErrors.ErrUserNotFound {
			return nil, pkgErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive() {
		return nil, pkgErrors.ErrUserDisabled
	}

	if !crypto.CheckPassword(password, user.Password) {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	_ = s.userRepo.UpdateLastLogin(user.ID)

	return user, nil
}

// syncLDAPUser LDAP首次登录时落库本地用户, 默认角色与注册一致
func (s *authService) syncLDAPUser(identity *LDAPIdentity) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(identity.Username)
	if err != nil {
		if err != pkgErrors.ErrUserNotFound {
			return nil, err
		}
		user = &model.User{
			Username: identity.Username,
			Password: "",
			Role:     string(auth.DefaultRole),
			Status:   constants.UserStatusActive,
		}
		if identity.Email != "" {
			email := identity.Email
			user.Email = &email
		}
		if err = s.userRepo.Create(user); err != nil {
			return nil, err
		}
	}

	if !user.IsActive() {
		return nil, pkgErrors.ErrUserDisabled
	}

	_ = s.userRepo.UpdateLastLogin(user.ID)
	return user, nil
}

func (s *authService) RefreshToken(refreshToken string) (*dto.LoginResponse, error) {
	claims, err := jwt.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.Type != constants.JWTTypeRefresh {
		return nil, pkgErrors.New(pkgErrors.CodeUnauthorized, "无效的RefreshToken")
	}

	// 重新加载用户, 角色或状态可能已变化
	user, err := s.userRepo.FindByUsername(claims.Username)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, pkgErrors.ErrUserDisabled
	}

	return s.buildLoginResponse(user, claims.AuthType)
}

func (s *authService) buildLoginResponse(user *model.User, authType string) (*dto.LoginResponse, error) {
	accessToken, err := jwt.GenerateAccessToken(user.Username, user.Role, authType)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成AccessToken失败", err)
	}

	refreshToken, err := jwt.GenerateRefreshToken(user.Username, user.Role, authType)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成RefreshToken失败", err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.cfg.JWT.AccessTokenExpire,
		User:         toUserResponse(user),
	}, nil
}
