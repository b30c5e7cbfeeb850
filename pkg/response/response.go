/*
 * @Description: 统一的 API 返回结构与错误映射
 * @Author: 安知鱼
 * @Date: 2026-03-02 11:45:18
 * @LastEditTime: 2026-04-11 10:02:51
 * @LastEditors: 安知鱼
 */
package response

import (
	"errors"
	"net/http"

	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/gin-gonic/gin"
)

// Response 是统一的API返回结构体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// PageResult 是分页列表的统一数据结构
type PageResult struct {
	List     interface{} `json:"list"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}, message string) {
	SuccessWithStatus(c, http.StatusOK, data, message)
}

// SuccessWithStatus 成功响应，但允许自定义 HTTP 状态码，例如 201 Created。
func SuccessWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// FailWithError 根据业务错误选择 HTTP 状态码，未知错误一律返回 500 且不暴露细节
func FailWithError(c *gin.Context, err error) {
	code := StatusFromError(err)
	switch code {
	case http.StatusInternalServerError:
		_ = c.Error(err)
		Fail(c, code, "服务器内部错误")
		return
	case http.StatusServiceUnavailable:
		// 上游代理的错误里可能带有响应正文，只返回固定提示
		_ = c.Error(err)
		if errors.Is(err, constant.ErrAgentDisabled) {
			Fail(c, code, constant.ErrAgentDisabled.Error())
			return
		}
		Fail(c, code, constant.ErrAgentUnavailable.Error())
		return
	}
	Fail(c, code, err.Error())
}

// StatusFromError 把标准业务错误映射到 HTTP 状态码
func StatusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, constant.ErrBadRequest), errors.Is(err, constant.ErrCaptchaInvalid):
		return http.StatusBadRequest
	case errors.Is(err, constant.ErrUnauthorized), errors.Is(err, constant.ErrInvalidToken),
		errors.Is(err, constant.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, constant.ErrForbidden), errors.Is(err, constant.ErrUserInactive),
		errors.Is(err, constant.ErrSignatureInvalid):
		return http.StatusForbidden
	case errors.Is(err, constant.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, constant.ErrConflict), errors.Is(err, constant.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, constant.ErrContentRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, constant.ErrAgentDisabled), errors.Is(err, constant.ErrAgentUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
