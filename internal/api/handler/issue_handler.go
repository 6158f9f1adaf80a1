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

type IssueHandler struct {
	issueService      service.IssueService
	assignmentService service.AssignmentService
}

func NewIssueHandler(issueService service.IssueService, assignmentService service.AssignmentService) *IssueHandler {
	return &IssueHandler{
		issueService:      issueService,
		assignmentService: assignmentService,
	}
}

// Create 创建Issue
// @Summary 在指定项目下创建Issue
// @Tags Issue
// @Accept json
// @Produce json
// @Param slug path string true "项目slug"
// @Param request body dto.CreateIssueRequest true "创建Issue请求"
// @Success 200 {object} responses.Response{data=dto.IssueResponse}
// @Router /api/v1/projects/{slug}/issues [post]
func (h *IssueHandler) Create(c *gin.Context) {
	var param dto.SlugParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的项目slug", err.Error())
		return
	}

	var req dto.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	issue, err := h.issueService.Create(middleware.Actor(c), param.Slug, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, issue)
}

// CreateUnscoped 自助创建Issue
// @Summary 创建Issue, 项目在请求体中指定, 仅限自己名下的项目
// @Tags Issue
// @Accept json
// @Produce json
// @Param request body dto.CreateIssueUnscopedRequest true "创建Issue请求"
// @Success 200 {object} responses.Response{data=dto.IssueResponse}
// @Router /api/v1/issues [post]
func (h *IssueHandler) CreateUnscoped(c *gin.Context) {
	var req dto.CreateIssueUnscopedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	issue, err := h.issueService.CreateUnscoped(middleware.Actor(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, issue)
}

// ListMine 获取我的Issue
// @Summary 获取当前用户访问名单内的全部Issue
// @Tags Issue
// @Produce json
// @Success 200 {object} responses.Response{data=[]dto.IssueResponse}
// @Router /api/v1/issues/mine [get]
func (h *IssueHandler) ListMine(c *gin.Context) {
	issues, err := h.issueService.ListMine(middleware.Actor(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, issues)
}

// Detail 获取Issue详情
// @Summary 获取Issue详情(访问名单+评论树)
// @Tags Issue
// @Produce json
// @Param slug path string true "项目slug"
// @Param num path int64 true "项目内序号"
// @Success 200 {object} responses.Response{data=dto.IssueDetailResponse}
// @Router /api/v1/projects/{slug}/issues/{num} [get]
func (h *IssueHandler) Detail(c *gin.Context) {
	var param dto.IssueParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的Issue定位参数", err.Error())
		return
	}

	detail, err := h.issueService.Detail(middleware.Actor(c), param.Slug, param.Num)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, detail)
}

// Update 更新Issue
// @Summary 更新Issue, open→closed迁移盖戳并清空访问名单
// @Tags Issue
// @Accept json
// @Produce json
// @Param slug path string true "项目slug"
// @Param num path int64 true "项目内序号"
// @Param request body dto.UpdateIssueRequest true "更新Issue请求"
// @Success 200 {object} responses.Response{data=dto.IssueResponse}
// @Router /api/v1/projects/{slug}/issues/{num} [put]
func (h *IssueHandler) Update(c *gin.Context) {
	var param dto.IssueParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的Issue定位参数", err.Error())
		return
	}

	var req dto.UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	issue, err := h.issueService.Update(middleware.Actor(c), param.Slug, param.Num, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, issue)
}

// Delete 删除Issue
// @Summary 删除Issue, 级联删除评论和回复
// @Tags Issue
// @Produce json
// @Param slug path string true "项目slug"
// @Param num path int64 true "项目内序号"
// @Success 200 {object} responses.Response
// @Router /api/v1/projects/{slug}/issues/{num} [delete]
func (h *IssueHandler) Delete(c *gin.Context) {
	var param dto.IssueParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的Issue定位参数", err.Error())
		return
	}

	if err := h.issueService.Delete(middleware.Actor(c), param.Slug, param.Num); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, nil)
}

// Assign Issue访问名单批量分配
// @Summary 批量分配/取消分配Issue访问名单
// @Tags Issue
// @Accept json
// @Produce json
// @Param slug path string true "项目slug"
// @Param num path int64 true "项目内序号"
// @Param request body dto.AssignmentRequest true "分配请求"
// @Success 200 {object} responses.Response{data=dto.AssignmentResult}
// @Router /api/v1/projects/{slug}/issues/{num}/assign [post]
func (h *IssueHandler) Assign(c *gin.Context) {
	var param dto.IssueParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的Issue定位参数", err.Error())
		return
	}

	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	result, err := h.assignmentService.AssignToIssue(middleware.Actor(c), param.Slug, param.Num, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.SuccessWithMessage(c, result.Summary, result)
}
