/*
 * @Description: 注册、登录、刷新令牌与防伪令牌接口
 * @Author: 安知鱼
 * @Date: 2026-03-07 10:18:44
 * @LastEditTime: 2026-04-12 16:02:19
 * @LastEditors: 安知鱼
 */
package auth_handler

import (
	"net/http"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/response"
	"github.com/anzhiyu-c/ibbs/pkg/service/auth"

	"github.com/gin-gonic/gin"
)

// AuthHandler 封装了所有认证相关的控制器方法
type AuthHandler struct {
	authSvc  auth.AuthService
	tokenSvc auth.TokenService
}

// NewAuthHandler 是 AuthHandler 的构造函数，用于依赖注入
func NewAuthHandler(authSvc auth.AuthService, tokenSvc auth.TokenService) *AuthHandler {
	return &AuthHandler{
		authSvc:  authSvc,
		tokenSvc: tokenSvc,
	}
}

// Register 处理用户注册请求
// @Summary      用户注册
// @Description  使用邮箱和密码注册，第一个注册的用户成为管理员
// @Tags         用户认证
// @Accept       json
// @Produce      json
// @Param        body  body      model.RegisterRequest  true  "注册信息"
// @Success      201   {object}  response.Response{data=model.UserInfoResponse}  "注册成功"
// @Failure      400   {object}  response.Response  "参数错误或验证码错误"
// @Failure      409   {object}  response.Response  "邮箱已被注册"
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请提供有效的邮箱和至少 6 位的密码")
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, user, "注册成功")
}

// Login 处理用户登录请求
// @Summary      用户登录
// @Description  用户通过邮箱和密码进行登录
// @Tags         用户认证
// @Accept       json
// @Produce      json
// @Param        body  body      model.LoginRequest  true  "登录信息"
// @Success      200   {object}  response.Response{data=model.LoginResponse}  "登录成功"
// @Failure      400   {object}  response.Response  "邮箱或密码格式不正确"
// @Failure      401   {object}  response.Response  "认证失败"
// @Failure      403   {object}  response.Response  "用户未激活或已被封禁"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "邮箱或密码格式不正确")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "登录成功")
}

// RefreshToken 使用刷新令牌换取新的访问令牌
// @Summary      刷新访问令牌
// @Tags         用户认证
// @Accept       json
// @Produce      json
// @Param        body  body      model.RefreshTokenRequest  true  "刷新令牌"
// @Success      200   {object}  response.Response{data=model.RefreshTokenResponse}  "刷新成功"
// @Failure      401   {object}  response.Response  "刷新令牌无效或已过期"
// @Router       /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "缺少刷新令牌")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "刷新成功")
}

// GetAntiforgeryToken 签发防伪令牌，同时写入 XSRF-TOKEN Cookie
// @Summary      获取防伪令牌
// @Description  未使用 Bearer 令牌的写请求需要在 X-XSRF-TOKEN 头中回传该值
// @Tags         用户认证
// @Produce      json
// @Success      200  {object}  response.Response{data=object{token=string}}  "获取成功"
// @Router       /antiforgery/token [get]
func (h *AuthHandler) GetAntiforgeryToken(c *gin.Context) {
	token, err := auth.NewAntiforgeryToken(h.tokenSvc)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	// 前端需要读取 Cookie 再放入请求头，所以不能设置 HttpOnly
	c.SetCookie(auth.AntiforgeryCookieName, token, int(auth.AntiforgeryTTL.Seconds()), "/", "", c.Request.TLS != nil, false)
	response.Success(c, gin.H{"token": token}, "获取防伪令牌成功")
}
