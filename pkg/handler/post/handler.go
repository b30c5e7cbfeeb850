/*
 * @Description: 帖子接口
 * @Author: 安知鱼
 * @Date: 2026-03-16 14:21:09
 * @LastEditTime: 2026-04-15 10:37:26
 * @LastEditors: 安知鱼
 */
package post_handler

import (
	"net/http"
	"strconv"

	"github.com/anzhiyu-c/ibbs/internal/pkg/auth"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/response"
	"github.com/anzhiyu-c/ibbs/pkg/service/post"

	"github.com/gin-gonic/gin"
)

const defaultTopRatedLimit = 10

// Handler 封装帖子相关的控制器方法
type Handler struct {
	postSvc post.Service
}

// NewHandler 创建帖子处理器
func NewHandler(postSvc post.Service) *Handler {
	return &Handler{postSvc: postSvc}
}

// CreatePost 发布帖子
// @Summary      发布帖子
// @Description  标题 1-200 字，正文 1-20000 字，标签最多 5 个。开启审核时内容违规返回 422
// @Tags         帖子
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      model.CreatePostRequest  true  "帖子内容"
// @Success      201   {object}  response.Response{data=model.PostResponse}  "发布成功"
// @Failure      400   {object}  response.Response  "参数错误"
// @Failure      422   {object}  response.Response  "内容未通过审核"
// @Router       /posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "请先登录")
		return
	}
	var req model.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "标题和正文不能为空")
		return
	}

	result, err := h.postSvc.AddNewPost(c.Request.Context(), userID, &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, result, "发布成功")
}

// GetPost 获取帖子详情
// @Summary      获取帖子详情
// @Tags         帖子
// @Produce      json
// @Param        id   path      string  true  "帖子公共ID"
// @Success      200  {object}  response.Response{data=model.PostResponse}  "获取成功"
// @Failure      404  {object}  response.Response  "帖子不存在"
// @Router       /posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	result, err := h.postSvc.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取成功")
}

// ListPosts 分页查询帖子，最新的在前
// @Summary      帖子列表
// @Tags         帖子
// @Produce      json
// @Param        page      query  int     false  "页码"  default(1)
// @Param        pageSize  query  int     false  "每页数量，最大 50"  default(10)
// @Param        keyword   query  string  false  "标题或正文关键字"
// @Param        tag       query  string  false  "标签"
// @Success      200  {object}  response.Response{data=model.PostListResponse}  "获取成功"
// @Router       /posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	var req model.ListPostsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "分页参数错误")
		return
	}
	result, err := h.postSvc.ListPosts(c.Request.Context(), &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取成功")
}

// ListUserPosts 查询某个用户的帖子
// @Summary      用户的帖子
// @Tags         帖子
// @Produce      json
// @Param        id        path   string  true   "用户公共ID"
// @Param        page      query  int     false  "页码"  default(1)
// @Param        pageSize  query  int     false  "每页数量"  default(10)
// @Success      200  {object}  response.Response{data=model.PostListResponse}  "获取成功"
// @Failure      404  {object}  response.Response  "用户不存在"
// @Router       /users/{id}/posts [get]
func (h *Handler) ListUserPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	result, err := h.postSvc.ListUserPosts(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取成功")
}

// ListTopRated 评分最高的帖子
// @Summary      高分帖子
// @Tags         帖子
// @Produce      json
// @Param        limit  query  int  false  "数量，最大 50"  default(10)
// @Success      200  {object}  response.Response{data=[]model.TopRatedPostResponse}  "获取成功"
// @Router       /posts/top-rated [get]
func (h *Handler) ListTopRated(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultTopRatedLimit)))
	if err != nil {
		limit = defaultTopRatedLimit
	}
	result, err := h.postSvc.ListTopRated(c.Request.Context(), limit)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取成功")
}

// UpdatePost 修改帖子，仅作者或管理员
// @Summary      修改帖子
// @Tags         帖子
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "帖子公共ID"
// @Param        body  body      model.UpdatePostRequest  true  "帖子内容"
// @Success      200   {object}  response.Response{data=model.PostResponse}  "修改成功"
// @Failure      403   {object}  response.Response  "无权修改"
// @Failure      404   {object}  response.Response  "帖子不存在"
// @Failure      422   {object}  response.Response  "内容未通过审核"
// @Router       /posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "请先登录")
		return
	}
	var req model.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "标题和正文不能为空")
		return
	}

	result, err := h.postSvc.UpdatePost(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "修改成功")
}

// DeletePost 删除帖子及其评分，仅作者或管理员
// @Summary      删除帖子
// @Tags         帖子
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "帖子公共ID"
// @Success      200  {object}  response.Response  "删除成功"
// @Failure      403  {object}  response.Response  "无权删除"
// @Failure      404  {object}  response.Response  "帖子不存在"
// @Router       /posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "请先登录")
		return
	}
	if err := h.postSvc.DeletePost(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "删除成功")
}
