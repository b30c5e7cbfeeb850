/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2026-03-12 09:52:32
 * @LastEditTime: 2026-03-12 11:36:56
 * @LastEditors: 安知鱼
 */
package version

import (
	"github.com/anzhiyu-c/ibbs/internal/pkg/version"
	"github.com/anzhiyu-c/ibbs/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler 版本信息处理器
type Handler struct{}

// NewHandler 创建版本信息处理器实例
func NewHandler() *Handler {
	return &Handler{}
}

func noCache(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate, private, max-age=0")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
}

// GetVersion 获取版本信息
// @Summary      获取版本信息
// @Description  获取应用的详细版本信息
// @Tags         辅助工具
// @Produce      json
// @Success      200  {object}  response.Response{data=version.BuildInfo}  "版本信息"
// @Router       /public/version [get]
func (h *Handler) GetVersion(c *gin.Context) {
	noCache(c)
	response.Success(c, version.GetBuildInfo(), "获取版本信息成功")
}

// GetVersionString 获取版本字符串
// @Summary      获取版本字符串
// @Tags         辅助工具
// @Produce      json
// @Success      200  {object}  response.Response{data=object{version=string}}  "版本字符串"
// @Router       /public/version/string [get]
func (h *Handler) GetVersionString(c *gin.Context) {
	noCache(c)
	response.Success(c, gin.H{"version": version.GetVersionString()}, "获取版本信息成功")
}
