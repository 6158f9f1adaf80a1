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

type ProjectHandler struct {
	projectService    service.ProjectService
	assignmentService service.AssignmentService
}

func NewProjectHandler(projectService service.ProjectService, assignmentService service.AssignmentService) *ProjectHandler {
	return &ProjectHandler{
		projectService:    projectService,
		assignmentService: assignmentService,
	}
}

// Create 创建项目
// @Summary 创建项目, 管理员或项目经理
// @Tags Project
// @Accept json
// @Produce json
// @Param request body dto.CreateProjectRequest true "创建项目请求"
// @Success 200 {object} responses.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	project, err := h.projectService.Create(middleware.Actor(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, project)
}

// List 获取全部项目
// @Summary 获取全部项目列表, 仅管理员
// @Tags Project
// @Produce json
// @Success 200 {object} responses.Response{data=[]dto.ProjectResponse}
// @Router /api/v1/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.ListAll(middleware.Actor(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, projects)
}

// ListMine 获取我的项目
// @Summary 获取当前用户名下的项目
// @Tags Project
// @Produce json
// @Success 200 {object} responses.Response{data=[]dto.ProjectResponse}
// @Router /api/v1/projects/mine [get]
func (h *ProjectHandler) ListMine(c *gin.Context) {
	projects, err := h.projectService.ListMine(middleware.Actor(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, projects)
}

// Detail 获取项目详情
// @Summary 获取项目详情, Issue列表按角色过滤
// @Tags Project
// @Produce json
// @Param slug path string true "项目slug"
// @Success 200 {object} responses.Response{data=dto.ProjectDetailResponse}
// @Router /api/v1/projects/{slug} [get]
func (h *ProjectHandler) Detail(c *gin.Context) {
	var param dto.SlugParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的项目slug", err.Error())
		return
	}

	detail, err := h.projectService.Detail(middleware.Actor(c), param.Slug)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, detail)
}

// Update 更新项目
// @Summary 更新项目, slug随标题重新推导
// @Tags Project
// @Accept json
// @Produce json
// @Param slug path string true "项目slug"
// @Param request body dto.UpdateProjectRequest true "更新项目请求"
// @Success 200 {object} responses.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects/{slug} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	var param dto.SlugParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的项目slug", err.Error())
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	project, err := h.projectService.Update(middleware.Actor(c), param.Slug, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, project)
}

// Delete 删除项目
// @Summary 删除项目, 级联删除Issue/评论/回复
// @Tags Project
// @Produce json
// @Param slug path string true "项目slug"
// @Success 200 {object} responses.Response
// @Router /api/v1/projects/{slug} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	var param dto.SlugParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的项目slug", err.Error())
		return
	}

	if err := h.projectService.Delete(middleware.Actor(c), param.Slug); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, nil)
}

// Assign 项目成员批量分配
// @Summary 批量分配/取消分配项目成员
// @Tags Project
// @Accept json
// @Produce json
// @Param slug path string true "项目slug"
// @Param request body dto.AssignmentRequest true "分配请求"
// @Success 200 {object} responses.Response{data=dto.AssignmentResult}
// @Router /api/v1/projects/{slug}/assign [post]
func (h *ProjectHandler) Assign(c *gin.Context) {
	var param dto.SlugParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的项目slug", err.Error())
		return
	}

	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	result, err := h.assignmentService.AssignToProject(middleware.Actor(c), param.Slug, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, result.Summary, result)
}
