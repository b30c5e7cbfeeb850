/*
 * @Description: 图形验证码 Handler
 * @Author: 安知鱼
 * @Date: 2026-03-10
 */
package captcha

import (
	"github.com/anzhiyu-c/ibbs/pkg/response"
	"github.com/anzhiyu-c/ibbs/pkg/service/imagecaptcha"

	"github.com/gin-gonic/gin"
)

// ImageCaptchaResponse 图形验证码响应
type ImageCaptchaResponse struct {
	CaptchaID   string `json:"captchaId"`
	ImageBase64 string `json:"imageBase64"`
}

// Handler 图形验证码处理器
type Handler struct {
	captchaSvc imagecaptcha.ImageCaptchaService
}

// NewHandler 创建图形验证码处理器
func NewHandler(captchaSvc imagecaptcha.ImageCaptchaService) *Handler {
	return &Handler{
		captchaSvc: captchaSvc,
	}
}

// GenerateImage 生成图形验证码
// @Summary      生成图形验证码
// @Description  答案保存 5 分钟，只能使用一次
// @Tags         验证码
// @Produce      json
// @Success      200 {object} response.Response{data=ImageCaptchaResponse}
// @Failure      500 {object} response.Response "生成验证码失败"
// @Router       /captcha/image [get]
func (h *Handler) GenerateImage(c *gin.Context) {
	id, image, err := h.captchaSvc.Generate(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, ImageCaptchaResponse{CaptchaID: id, ImageBase64: image}, "生成验证码成功")
}
