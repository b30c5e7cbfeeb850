/*
 * @Description: 站点配置接口
 * @Author: 安知鱼
 * @Date: 2026-03-11 12:26:45
 * @LastEditTime: 2026-04-16 18:10:47
 * @LastEditors: 安知鱼
 */
package setting_handler

import (
	"net/http"

	"github.com/anzhiyu-c/ibbs/pkg/response"
	"github.com/anzhiyu-c/ibbs/pkg/service/setting"

	"github.com/gin-gonic/gin"
)

// SettingHandler 封装了站点配置相关的控制器方法
type SettingHandler struct {
	settingSvc setting.SettingService
}

// NewSettingHandler 是 SettingHandler 的构造函数
func NewSettingHandler(settingSvc setting.SettingService) *SettingHandler {
	return &SettingHandler{settingSvc: settingSvc}
}

// GetSiteConfig 获取公开的站点配置
// @Summary      获取站点配置
// @Description  只返回标记为公开的配置项，布尔与数字按类型返回
// @Tags         站点配置
// @Produce      json
// @Success      200 {object} response.Response{data=map[string]interface{}} "获取成功"
// @Router       /public/site-config [get]
func (h *SettingHandler) GetSiteConfig(c *gin.Context) {
	response.Success(c, h.settingSvc.GetSiteConfig(), "获取站点配置成功")
}

// GetAdminSettings 获取全部配置（密钥除外）
// @Summary      获取全部配置
// @Tags         站点配置
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response{data=map[string]string} "获取成功"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /admin/settings [get]
func (h *SettingHandler) GetAdminSettings(c *gin.Context) {
	response.Success(c, h.settingSvc.GetAdminSettings(), "获取配置成功")
}

// UpdateSettings 批量修改配置
// @Summary      更新配置
// @Description  只允许修改已定义且非密钥的配置项，布尔项必须是 true/false
// @Tags         站点配置
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body map[string]string true "要更新的键值对"
// @Success      200 {object} response.Response{data=map[string]string} "更新成功"
// @Failure      400 {object} response.Response "配置项不存在或值无效"
// @Router       /admin/settings [put]
func (h *SettingHandler) UpdateSettings(c *gin.Context) {
	var settingsToUpdate map[string]string
	if err := c.ShouldBindJSON(&settingsToUpdate); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数格式错误")
		return
	}
	if len(settingsToUpdate) == 0 {
		response.Fail(c, http.StatusBadRequest, "没有需要更新的配置项")
		return
	}

	if err := h.settingSvc.UpdateSettings(c.Request.Context(), settingsToUpdate); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, h.settingSvc.GetAdminSettings(), "配置更新成功")
}
