package knowledge_handler

import (
	"net/http"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/response"
	"github.com/anzhiyu-c/ibbs/pkg/service/knowledge"

	"github.com/gin-gonic/gin"
)

// Handler 知识库管理处理器，仅管理员可用
type Handler struct {
	knowledgeSvc knowledge.Service
}

func NewHandler(knowledgeSvc knowledge.Service) *Handler {
	return &Handler{knowledgeSvc: knowledgeSvc}
}

// List 知识库文章列表
// @Summary      知识库文章列表
// @Tags         知识库
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.KnowledgeArticle}  "获取成功"
// @Router       /admin/knowledge [get]
func (h *Handler) List(c *gin.Context) {
	articles, err := h.knowledgeSvc.List(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, articles, "获取成功")
}

// Upsert 按 slug 新增或覆盖文章
// @Summary      保存知识库文章
// @Tags         知识库
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      model.UpsertKnowledgeRequest  true  "文章"
// @Success      200   {object}  response.Response{data=model.KnowledgeArticle}  "保存成功"
// @Failure      400   {object}  response.Response  "slug 格式错误"
// @Router       /admin/knowledge [post]
func (h *Handler) Upsert(c *gin.Context) {
	var req model.UpsertKnowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "slug、标题和内容不能为空")
		return
	}
	article, err := h.knowledgeSvc.Upsert(c.Request.Context(), &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, article, "保存成功")
}

// Delete 删除文章
// @Summary      删除知识库文章
// @Tags         知识库
// @Security     BearerAuth
// @Produce      json
// @Param        slug  path      string  true  "文章 slug"
// @Success      200   {object}  response.Response  "删除成功"
// @Failure      404   {object}  response.Response  "文章不存在"
// @Router       /admin/knowledge/{slug} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.knowledgeSvc.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "删除成功")
}
