/*
 * @Description: 用户资料相关控制器
 * @Author: 安知鱼
 * @Date: 2026-03-08 13:03:21
 * @LastEditTime: 2026-04-14 13:49:32
 * @LastEditors: 安知鱼
 */
package user_handler

import (
	"net/http"

	"github.com/anzhiyu-c/ibbs/internal/pkg/auth"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/response"
	"github.com/anzhiyu-c/ibbs/pkg/service/user"

	"github.com/gin-gonic/gin"
)

// UserHandler 封装用户资料相关的控制器方法
type UserHandler struct {
	userSvc user.UserService
}

// NewUserHandler 是 UserHandler 的构造函数
func NewUserHandler(userSvc user.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "未登录或无法获取当前用户信息")
	}
	return userID, ok
}

// GetUserInfo 获取当前登录用户的信息
// @Summary      获取当前用户信息
// @Tags         用户管理
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.UserInfoResponse}  "获取成功"
// @Failure      401  {object}  response.Response  "未授权"
// @Failure      404  {object}  response.Response  "用户未找到"
// @Router       /user/info [get]
func (h *UserHandler) GetUserInfo(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	info, err := h.userSvc.GetUserInfo(c.Request.Context(), userID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, info, "获取用户信息成功")
}

// UpdateProfile 修改昵称、头像或个人简介
// @Summary      更新个人资料
// @Tags         用户管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      model.UpdateProfileRequest  true  "要修改的字段"
// @Success      200   {object}  response.Response{data=model.UserInfoResponse}  "更新成功"
// @Failure      400   {object}  response.Response  "参数错误"
// @Router       /user/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}
	info, err := h.userSvc.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, info, "个人资料已更新")
}

// ChangePassword 修改当前用户的密码
// @Summary      修改密码
// @Tags         用户管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      model.ChangePasswordRequest  true  "旧密码与新密码"
// @Success      200   {object}  response.Response  "修改成功"
// @Failure      400   {object}  response.Response  "旧密码错误或新密码过短"
// @Router       /user/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "新密码至少需要 6 位")
		return
	}
	if err := h.userSvc.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "密码修改成功")
}

// GetUserProfile 获取用户的公开主页：资料、统计与最近的帖子
// @Summary      获取用户主页
// @Tags         用户管理
// @Produce      json
// @Param        id   path      string  true  "用户公共ID"
// @Success      200  {object}  response.Response{data=model.UserProfileResponse}  "获取成功"
// @Failure      404  {object}  response.Response  "用户不存在"
// @Router       /users/{id}/profile [get]
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	profile, err := h.userSvc.GetUserProfileData(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, profile, "获取用户主页成功")
}
