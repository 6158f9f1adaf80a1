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

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Create 发表评论
// @Summary 在Issue下发表评论
// @Tags Comment
// @Accept json
// @Produce json
// @Param slug path string true "项目slug"
// @Param num path int64 true "项目内序号"
// @Param request body dto.CreateCommentRequest true "评论请求"
// @Success 200 {object} responses.Response{data=dto.CommentResponse}
// @Router /api/v1/projects/{slug}/issues/{num}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	var param dto.IssueParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的Issue定位参数", err.Error())
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	comment, err := h.commentService.Create(middleware.Actor(c), param.Slug, param.Num, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, comment)
}

// Update 编辑评论
// @Summary 编辑评论, 已删除的评论拒绝编辑
// @Tags Comment
// @Accept json
// @Produce json
// @Param id path int64 true "评论ID"
// @Param request body dto.UpdateCommentRequest true "编辑请求"
// @Success 200 {object} responses.Response{data=dto.CommentResponse}
// @Router /api/v1/comments/{id} [put]
func (h *CommentHandler) Update(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的评论ID", err.Error())
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	comment, err := h.commentService.Update(middleware.Actor(c), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, comment)
}

// Delete 删除评论
// @Summary 删除评论(打墓碑, 行不删除)
// @Tags Comment
// @Produce json
// @Param id path int64 true "评论ID"
// @Success 200 {object} responses.Response{data=dto.CommentResponse}
// @Router /api/v1/comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的评论ID", err.Error())
		return
	}

	comment, err := h.commentService.Delete(middleware.Actor(c), param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, comment)
}

// CreateReply 回复评论
// @Summary 回复评论
// @Tags Comment
// @Accept json
// @Produce json
// @Param id path int64 true "评论ID"
// @Param request body dto.CreateReplyRequest true "回复请求"
// @Success 200 {object} responses.Response{data=dto.ReplyResponse}
// @Router /api/v1/comments/{id}/replies [post]
func (h *CommentHandler) CreateReply(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的评论ID", err.Error())
		return
	}

	var req dto.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	reply, err := h.commentService.CreateReply(middleware.Actor(c), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, reply)
}

// UpdateReply 编辑回复
// @Summary 编辑回复, 已删除的回复拒绝编辑
// @Tags Comment
// @Accept json
// @Produce json
// @Param id path int64 true "回复ID"
// @Param request body dto.UpdateCommentRequest true "编辑请求"
// @Success 200 {object} responses.Response{data=dto.ReplyResponse}
// @Router /api/v1/replies/{id} [put]
func (h *CommentHandler) UpdateReply(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的回复ID", err.Error())
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	reply, err := h.commentService.UpdateReply(middleware.Actor(c), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, reply)
}

// DeleteReply 删除回复
// @Summary 删除回复(打墓碑, 行不删除)
// @Tags Comment
// @Produce json
// @Param id path int64 true "回复ID"
// @Success 200 {object} responses.Response{data=dto.ReplyResponse}
// @Router /api/v1/replies/{id} [delete]
func (h *CommentHandler) DeleteReply(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "无效的回复ID", err.Error())
		return
	}

	reply, err := h.commentService.DeleteReply(middleware.Actor(c), param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, reply)
}
