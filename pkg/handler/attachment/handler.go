/*
 * @Description: 本地存储附件下载
 * @Author: 安知鱼
 * @Date: 2026-03-27 16:30:12
 * @LastEditTime: 2026-04-08 10:05:44
 * @LastEditors: 安知鱼
 */
package attachment_handler

import (
	"bufio"
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/anzhiyu-c/ibbs/internal/infra/storage"
	"github.com/anzhiyu-c/ibbs/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 附件下载处理器
type Handler struct {
	provider storage.IStorageProvider
	logger   *zap.Logger
}

func NewHandler(provider storage.IStorageProvider, logger *zap.Logger) *Handler {
	return &Handler{provider: provider, logger: logger}
}

// Get 下载附件
// @Summary      下载附件
// @Tags         附件
// @Produce      octet-stream
// @Param        key  path  string  true  "对象键"
// @Success      200  {file}    file  "附件内容"
// @Failure      404  {object}  response.Response  "附件不存在"
// @Router       /attachments/{key} [get]
func (h *Handler) Get(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	reader, err := h.provider.Get(c.Request.Context(), key)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			h.logger.Debug("读取附件失败", zap.String("key", key), zap.Error(err))
		}
		response.Fail(c, http.StatusNotFound, storage.ErrObjectNotFound.Error())
		return
	}
	defer reader.Close()

	buffered := bufio.NewReader(reader)
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		head, _ := buffered.Peek(512)
		contentType = http.DetectContentType(head)
	}

	c.DataFromReader(http.StatusOK, -1, contentType, buffered, map[string]string{
		"X-Content-Type-Options": "nosniff",
		"Cache-Control":          "public, max-age=86400",
		"Content-Disposition":    "inline; filename=\"" + path.Base(key) + "\"",
	})
}
