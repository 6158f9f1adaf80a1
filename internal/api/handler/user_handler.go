package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bugtrack/internal/api/middleware"
	"bugtrack/internal/dto"
	"bugtrack/internal/service"
	"bugtrack/pkg/responses"
	"bugtrack/pkg/utils"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// List 获取用户列表
// @Summary 分页获取激活用户列表, 仅管理员
// @Tags User
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param keyword query string false "用户名关键字"
// @Success 200 {object} responses.Response{data=dto.PageResponse}
// @Router /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	users, total, err := h.userService.List(middleware.Actor(c), &query)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, dto.NewPageResponse(users, total, query.GetPage(), query.GetPageSize()))
}

// Create 创建用户
// @Summary 创建用户(指定角色), 仅管理员
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "创建用户请求"
// @Success 200 {object} responses.Response{data=dto.UserResponse}
// @Router /api/v1/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	user, err := h.userService.Create(middleware.Actor(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, user)
}

// Get 获取用户详情
// @Summary 获取用户详情, 本人或管理员
// @Tags User
// @Produce json
// @Param id path int64 true "用户ID"
// @Success 200 {object} responses.Response{data=dto.UserResponse}
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的用户ID", err.Error())
		return
	}

	user, err := h.userService.Get(middleware.Actor(c), param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, user)
}

// GetProfile 获取个人资料
// @Summary 获取当前用户资料
// @Tags User
// @Produce json
// @Success 200 {object} responses.Response{data=dto.UserResponse}
// @Router /api/v1/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	actor := middleware.Actor(c)
	user, err := h.userService.Get(actor, actor.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, user)
}

// UpdateProfile 更新个人资料
// @Summary 更新当前用户资料
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "更新资料请求"
// @Success 200 {object} responses.Response{data=dto.UserResponse}
// @Router /api/v1/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	actor := middleware.Actor(c)
	user, err := h.userService.UpdateProfile(actor, actor.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, user)
}

// UpdateUser 更新用户资料
// @Summary 管理员更新指定用户资料
// @Tags User
// @Accept json
// @Produce json
// @Param id path int64 true "用户ID"
// @Param request body dto.UpdateProfileRequest true "更新资料请求"
// @Success 200 {object} responses.Response{data=dto.UserResponse}
// @Router /api/v1/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的用户ID", err.Error())
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	user, err := h.userService.UpdateProfile(middleware.Actor(c), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, user)
}

// ChangePassword 修改密码
// @Summary 修改当前用户密码
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "修改密码请求"
// @Success 200 {object} responses.Response
// @Router /api/v1/profile/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.userService.ChangePassword(middleware.Actor(c), &req); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, nil)
}

// SetPassword 重置密码
// @Summary 管理员重置指定用户密码
// @Tags User
// @Accept json
// @Produce json
// @Param id path int64 true "用户ID"
// @Param request body dto.SetPasswordRequest true "重置密码请求"
// @Success 200 {object} responses.Response
// @Router /api/v1/users/{id}/password [put]
func (h *UserHandler) SetPassword(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的用户ID", err.Error())
		return
	}

	var req dto.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.userService.SetPassword(middleware.Actor(c), param.ID, &req); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, nil)
}

// DeleteProfile 注销账号
// @Summary 停用当前用户账号, 历史引用保留
// @Tags User
// @Produce json
// @Success 200 {object} responses.Response
// @Router /api/v1/profile [delete]
func (h *UserHandler) DeleteProfile(c *gin.Context) {
	actor := middleware.Actor(c)
	if err := h.userService.Deactivate(actor, actor.ID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, nil)
}

// BatchSetRole 批量设置角色
// @Summary 批量设置用户角色, 仅管理员
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.BatchSetRoleRequest true "批量设置角色请求"
// @Success 200 {object} responses.Response{data=dto.BatchUserResult}
// @Router /api/v1/users/batch/role [post]
func (h *UserHandler) BatchSetRole(c *gin.Context) {
	var req dto.BatchSetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	result, err := h.userService.BatchSetRole(middleware.Actor(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, result.Summary, result)
}

// BatchDeactivate 批量停用
// @Summary 批量停用用户账号, 仅管理员
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.BatchDeactivateRequest true "批量停用请求"
// @Success 200 {object} responses.Response{data=dto.BatchUserResult}
// @Router /api/v1/users/batch/deactivate [post]
func (h *UserHandler) BatchDeactivate(c *gin.Context) {
	var req dto.BatchDeactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	result, err := h.userService.BatchDeactivate(middleware.Actor(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, result.Summary, result)
}
