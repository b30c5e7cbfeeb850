package rating_handler

import (
	"net/http"

	"github.com/anzhiyu-c/ibbs/internal/pkg/auth"
	"github.com/anzhiyu-c/ibbs/pkg/response"
	"github.com/anzhiyu-c/ibbs/pkg/service/rating"

	"github.com/gin-gonic/gin"
)

// Handler 帖子评分处理器
type Handler struct {
	ratingSvc rating.Service
}

func NewHandler(ratingSvc rating.Service) *Handler {
	return &Handler{ratingSvc: ratingSvc}
}

// UpdateRating 给帖子点赞，重复点赞只刷新时间
// @Summary      点赞
// @Tags         帖子评分
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "帖子公共ID"
// @Success      200  {object}  response.Response{data=model.RatingResponse}  "点赞成功"
// @Failure      403  {object}  response.Response  "不能给自己的帖子点赞"
// @Failure      404  {object}  response.Response  "帖子不存在"
// @Router       /posts/{id}/rating [put]
func (h *Handler) UpdateRating(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "请先登录")
		return
	}
	result, err := h.ratingSvc.UpdateRating(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "点赞成功")
}

// RemoveRating 取消点赞，未点赞时不做任何修改
// @Summary      取消点赞
// @Tags         帖子评分
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "帖子公共ID"
// @Success      200  {object}  response.Response{data=model.RatingResponse}  "已取消"
// @Failure      404  {object}  response.Response  "帖子不存在"
// @Router       /posts/{id}/rating [delete]
func (h *Handler) RemoveRating(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "请先登录")
		return
	}
	result, err := h.ratingSvc.RemoveRating(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "已取消点赞")
}

// ListRatings 点赞用户列表，最近的在前
// @Summary      点赞用户
// @Tags         帖子评分
// @Produce      json
// @Param        id   path      string  true  "帖子公共ID"
// @Success      200  {object}  response.Response{data=[]model.RaterResponse}  "获取成功"
// @Failure      404  {object}  response.Response  "帖子不存在"
// @Router       /posts/{id}/ratings [get]
func (h *Handler) ListRatings(c *gin.Context) {
	result, err := h.ratingSvc.ListRatings(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取成功")
}
