/*
 * @Description: 聊天机器人接口
 * @Author: 安知鱼
 * @Date: 2026-03-24 15:02:11
 * @LastEditTime: 2026-04-17 09:44:50
 * @LastEditors: 安知鱼
 */
package chatbot_handler

import (
	"net/http"

	"github.com/anzhiyu-c/ibbs/internal/pkg/auth"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/response"
	"github.com/anzhiyu-c/ibbs/pkg/service/chatbot"

	"github.com/gin-gonic/gin"
)

// Handler 聊天机器人处理器
type Handler struct {
	chatbotSvc chatbot.Service
}

func NewHandler(chatbotSvc chatbot.Service) *Handler {
	return &Handler{chatbotSvc: chatbotSvc}
}

// SendMessage 发送一条消息，由意图路由选择技能处理
// @Summary      发送聊天消息
// @Description  游客可以使用，需要登录的技能会返回登录提示。history 只保留最近 10 轮
// @Tags         聊天机器人
// @Accept       json
// @Produce      json
// @Param        body  body      model.ChatRequest  true  "消息与历史"
// @Success      200   {object}  response.Response{data=model.ChatReply}  "回复成功"
// @Failure      400   {object}  response.Response  "消息为空或过长"
// @Failure      429   {object}  response.Response  "请求过于频繁"
// @Router       /chatbot/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "消息不能为空")
		return
	}
	// 游客的 userID 为 0
	userID, _ := auth.CurrentUserID(c)

	reply, err := h.chatbotSvc.HandleMessage(c.Request.Context(), userID, &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, reply, "ok")
}

// GetSamplePrompts 示例问题
// @Summary      示例问题
// @Tags         聊天机器人
// @Produce      json
// @Success      200  {object}  response.Response{data=[]string}  "获取成功"
// @Router       /chatbot/sample-prompts [get]
func (h *Handler) GetSamplePrompts(c *gin.Context) {
	prompts, err := h.chatbotSvc.SamplePrompts(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, prompts, "获取成功")
}
