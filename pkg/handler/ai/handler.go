/*
 * @Description: AI 助手接口：改写、审核、标签建议
 * @Author: 安知鱼
 * @Date: 2026-03-19 09:12:40
 * @LastEditTime: 2026-04-10 17:25:03
 * @LastEditors: 安知鱼
 */
package ai_handler

import (
	"net/http"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/response"
	"github.com/anzhiyu-c/ibbs/pkg/service/ai"

	"github.com/gin-gonic/gin"
)

// Handler AI 助手处理器
type Handler struct {
	aiSvc ai.Service
}

func NewHandler(aiSvc ai.Service) *Handler {
	return &Handler{aiSvc: aiSvc}
}

// Rewrite 按指定风格改写文本
// @Summary      改写文本
// @Description  风格可选 formal、casual、concise、friendly、professional，默认 formal
// @Tags         AI 助手
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      model.RewriteRequest  true  "原文与风格"
// @Success      200   {object}  response.Response{data=model.RewriteResponse}  "改写成功"
// @Failure      400   {object}  response.Response  "文本为空或风格无效"
// @Failure      429   {object}  response.Response  "请求过于频繁"
// @Failure      503   {object}  response.Response  "AI 代理不可用"
// @Router       /ai/rewrite [post]
func (h *Handler) Rewrite(c *gin.Context) {
	var req model.RewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "文本不能为空")
		return
	}
	result, err := h.aiSvc.Rewrite(c.Request.Context(), req.Text, req.Style)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "改写成功")
}

// Moderate 检查内容是否违规
// @Summary      内容审核
// @Tags         AI 助手
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      model.ModerateRequest  true  "待审核内容"
// @Success      200   {object}  response.Response{data=model.ModerationResult}  "审核完成"
// @Failure      503   {object}  response.Response  "AI 代理不可用"
// @Router       /ai/moderate [post]
func (h *Handler) Moderate(c *gin.Context) {
	var req model.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "内容不能为空")
		return
	}
	result, err := h.aiSvc.Moderate(c.Request.Context(), req.Content)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "审核完成")
}

// SuggestTags 根据标题和正文建议标签
// @Summary      标签建议
// @Tags         AI 助手
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      model.SuggestTagsRequest  true  "标题与正文"
// @Success      200   {object}  response.Response{data=model.SuggestTagsResponse}  "生成成功"
// @Failure      503   {object}  response.Response  "AI 代理不可用"
// @Router       /ai/tags [post]
func (h *Handler) SuggestTags(c *gin.Context) {
	var req model.SuggestTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "标题和正文不能为空")
		return
	}
	tags, err := h.aiSvc.SuggestTags(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, model.SuggestTagsResponse{Tags: tags}, "生成成功")
}
