package service

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"bugtrack/internal/dto"
	"bugtrack/internal/model"
	"bugtrack/internal/pkg/auth"
	"bugtrack/internal/pkg/crypto"
	"bugtrack/internal/repository"
	"bugtrack/pkg/constants"
	pkgErrors "bugtrack/pkg/errors"
)

type UserService interface {
	// List 分页返回激活用户, 仅管理员
	List(actor *model.User, query *dto.PageQuery) ([]*dto.UserResponse, int64, error)
	Create(actor *model.User, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(actor *model.User, id int64) (*dto.UserResponse, error)
	// UpdateProfile 本人或管理员更新资料, 邮箱占用校验排除本人
	UpdateProfile(actor *model.User, targetID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(actor *model.User, req *dto.ChangePasswordRequest) error
	// SetPassword 管理员替他人重置密码, 不校验旧密码
	SetPassword(actor *model.User, targetID int64, req *dto.SetPasswordRequest) error
	// Deactivate 停用账号(本人注销或管理员操作), 历史引用保留
	Deactivate(actor *model.User, targetID int64) error
	BatchSetRole(actor *model.User, req *dto.BatchSetRoleRequest) (*dto.BatchUserResult, error)
	BatchDeactivate(actor *model.User, req *dto.BatchDeactivateRequest) (*dto.BatchUserResult, error)
}

type userService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository) UserService {
	return &userService{
		db:       db,
		userRepo: userRepo,
	}
}

func (s *userService) List(actor *model.User, query *dto.PageQuery) ([]*dto.UserResponse, int64, error) {
	if !auth.CanManageUsers(actor) {
		return nil, 0, pkgErrors.ErrForbidden
	}

	users, total, err := s.userRepo.ListActive(query.Keyword, query.GetOffset(), query.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*dto.UserResponse, len(users))
	for i, user := range users {
		responses[i] = toUserResponse(user)
	}
	return responses, total, nil
}

func (s *userService) Create(actor *model.User, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !auth.CanManageUsers(actor) {
		return nil, pkgErrors.ErrForbidden
	}
	if err := crypto.ValidatePassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}

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
		Role:      req.Role,
		Status:    constants.UserStatusActive,
	}

	err = persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.userRepo.WithTx(tx).Create(user)
	})
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

func (s *userService) Get(actor *model.User, id int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !auth.CanTouchProfile(actor, user) && !auth.CanManageUsers(actor) {
		return nil, pkgErrors.ErrForbidden
	}
	return toUserResponse(user), nil
}

func (s *userService) UpdateProfile(actor *model.User, targetID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(targetID)
	if err != nil {
		return nil, err
	}
	if !auth.CanTouchProfile(actor, user) && !auth.CanManageUsers(actor) {
		return nil, pkgErrors.ErrForbidden
	}

	if req.Email != nil {
		inUse, err := s.userRepo.EmailInUse(*req.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, pkgErrors.New(pkgErrors.CodeConflict, "邮箱已被占用")
		}
		user.Email = req.Email
	}
	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}

	err = persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.userRepo.WithTx(tx).Update(user)
	})
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

func (s *userService) ChangePassword(actor *model.User, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(actor.ID)
	if err != nil {
		return err
	}

	if !crypto.CheckPassword(req.OldPassword, user.Password) {
		return pkgErrors.New(pkgErrors.CodeAuthError, "旧密码错误")
	}
	if err := crypto.ValidatePassword(req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "密码加密失败", err)
	}
	user.Password = hash

	return persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.userRepo.WithTx(tx).Update(user)
	})
}

func (s *userService) SetPassword(actor *model.User, targetID int64, req *dto.SetPasswordRequest) error {
	user, err := s.userRepo.FindByID(targetID)
	if err != nil {
		return err
	}
	if !auth.CanSetPassword(actor, user) {
		return pkgErrors.ErrForbidden
	}

	if err := crypto.ValidatePassword(req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "密码加密失败", err)
	}
	user.Password = hash

	return persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.userRepo.WithTx(tx).Update(user)
	})
}

func (s *userService) Deactivate(actor *model.User, targetID int64) error {
	user, err := s.userRepo.FindByID(targetID)
	if err != nil {
		return err
	}
	if !auth.CanTouchProfile(actor, user) && !auth.CanManageUsers(actor) {
		return pkgErrors.ErrForbidden
	}

	user.Status = constants.UserStatusDeactivated

	return persistFor(s.db, actor, func(tx *gorm.DB) error {
		return s.userRepo.WithTx(tx).Update(user)
	})
}

func (s *userService) BatchSetRole(actor *model.User, req *dto.BatchSetRoleRequest) (*dto.BatchUserResult, error) {
	if !auth.CanManageUsers(actor) {
		return nil, pkgErrors.ErrForbidden
	}
	if !auth.Role(req.Role).Valid() {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "未知角色")
	}

	users, err := loadUsersInOrder(s.userRepo, req.UserIDs)
	if err != nil {
		return nil, err
	}

	// 已持有目标角色的用户跳过, 不报错
	changed := lo.Filter(users, func(u *model.User, _ int) bool {
		return u.Role != req.Role
	})

	err = persistFor(s.db, actor, func(tx *gorm.DB) error {
		repo := s.userRepo.WithTx(tx)
		for _, user := range changed {
			user.Role = req.Role
			if err := repo.Update(user); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := lo.Map(changed, func(u *model.User, _ int) string { return u.Username })
	// 全员已持有目标角色时给出无变更摘要
	summary := fmt.Sprintf("No users were given the role '%s'.", req.Role)
	if len(names) > 0 {
		summary = fmt.Sprintf("The following users have been given the role '%s': %s.",
			req.Role, strings.Join(names, ", "))
	}
	return &dto.BatchUserResult{
		Summary: summary,
		Applied: names,
	}, nil
}

func (s *userService) BatchDeactivate(actor *model.User, req *dto.BatchDeactivateRequest) (*dto.BatchUserResult, error) {
	if !auth.CanManageUsers(actor) {
		return nil, pkgErrors.ErrForbidden
	}

	users, err := loadUsersInOrder(s.userRepo, req.UserIDs)
	if err != nil {
		return nil, err
	}

	changed := lo.Filter(users, func(u *model.User, _ int) bool {
		return u.IsActive()
	})

	err = persistFor(s.db, actor, func(tx *gorm.DB) error {
		repo := s.userRepo.WithTx(tx)
		for _, user := range changed {
			user.Status = constants.UserStatusDeactivated
			if err := repo.Update(user); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := lo.Map(changed, func(u *model.User, _ int) string { return u.Username })
	summary := "No user accounts were deactivated."
	if len(names) > 0 {
		summary = fmt.Sprintf("The following user accounts have been deactivated: %s.",
			strings.Join(names, ", "))
	}
	return &dto.BatchUserResult{
		Summary: summary,
		Applied: names,
	}, nil
}

// loadUsersInOrder 按请求给定的顺序加载用户, 未知ID直接报错
func loadUsersInOrder(userRepo repository.UserRepository, ids []int64) ([]*model.User, error) {
	users, err := userRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}

	byID := lo.KeyBy(users, func(u *model.User) int64 { return u.ID })

	ordered := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		user, ok := byID[id]
		if !ok {
			return nil, pkgErrors.ErrUserNotFound
		}
		ordered = append(ordered, user)
	}
	return ordered, nil
}
