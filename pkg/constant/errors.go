/*
 * @Description: 业务标准错误
 * @Author: 安知鱼
 * @Date: 2026-03-02 11:20:15
 * @LastEditTime: 2026-04-11 09:48:30
 * @LastEditors: 安知鱼
 */
package constant

import "errors"

// 定义业务逻辑相关的标准错误，Handler 通过 errors.Is 将它们转换为 HTTP 状态码
var (
	// ErrNotFound 资源未找到 (404)
	ErrNotFound = errors.New("资源未找到")

	// ErrForbidden 无权操作 (403)
	ErrForbidden = errors.New("操作禁止")

	// ErrConflict 资源冲突 (409)
	ErrConflict = errors.New("资源冲突")

	// ErrBadRequest 请求参数错误 (400)
	ErrBadRequest = errors.New("错误的请求")

	// ErrUnauthorized 未授权 (401)
	ErrUnauthorized = errors.New("未经授权的访问")

	// ErrInvalidToken 无效的令牌 (401)
	ErrInvalidToken = errors.New("无效令牌")

	// ErrEmailExists 邮箱已被注册 (409)
	ErrEmailExists = errors.New("该邮箱已被注册")

	// ErrInvalidCredentials 邮箱或密码错误 (401)
	ErrInvalidCredentials = errors.New("邮箱或密码错误")

	// ErrUserInactive 用户未激活或被封禁 (403)
	ErrUserInactive = errors.New("用户未激活或已被封禁")

	// ErrCaptchaInvalid 验证码错误或已过期 (400)
	ErrCaptchaInvalid = errors.New("验证码错误或已过期")

	// ErrContentRejected 内容未通过审核 (422)
	ErrContentRejected = errors.New("内容未通过审核")

	// ErrAgentDisabled AI 代理未启用 (503)
	ErrAgentDisabled = errors.New("AI 代理未启用")

	// ErrAgentUnavailable AI 代理调用失败 (503)
	ErrAgentUnavailable = errors.New("AI 代理暂时不可用")

	// ErrSignatureInvalid 签名无效或已过期 (403)
	ErrSignatureInvalid = errors.New("签名无效")
)
