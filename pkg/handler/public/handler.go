/*
 * @Description: 无需登录的参考数据接口
 * @Author: 安知鱼
 * @Date: 2026-03-15 11:30:55
 * @LastEditTime: 2026-04-02 15:59:51
 * @LastEditors: 安知鱼
 */
package public_handler

import (
	"github.com/anzhiyu-c/ibbs/pkg/response"
	"github.com/anzhiyu-c/ibbs/pkg/service/lookup"

	"github.com/gin-gonic/gin"
)

// PublicHandler 封装了所有公开接口的控制器方法
type PublicHandler struct {
	lookupSvc lookup.Service
}

// NewPublicHandler 是 PublicHandler 的构造函数
func NewPublicHandler(lookupSvc lookup.Service) *PublicHandler {
	return &PublicHandler{lookupSvc: lookupSvc}
}

// GetLookups 获取某一类型的参考数据
// @Summary      获取参考数据
// @Description  返回启用的条目，按 sortOrder 排序。类型不区分大小写
// @Tags         公共接口
// @Produce      json
// @Param        type  path      string  true  "BUG_SEVERITY | BUG_STATUS | CHATBOT_SAMPLE_PROMPT"
// @Success      200   {object}  response.Response{data=[]model.LookupResponse}  "获取成功"
// @Failure      400   {object}  response.Response  "未知的类型"
// @Router       /lookups/{type} [get]
func (h *PublicHandler) GetLookups(c *gin.Context) {
	items, err := h.lookupSvc.GetLookups(c.Request.Context(), c.Param("type"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=600")
	response.Success(c, items, "获取成功")
}
