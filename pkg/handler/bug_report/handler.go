/*
 * @Description: 缺陷反馈接口，支持 JSON 与 multipart 两种提交方式
 * @Author: 安知鱼
 * @Date: 2026-03-26 10:48:02
 * @LastEditTime: 2026-04-13 14:16:37
 * @LastEditors: 安知鱼
 */
package bug_report_handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/anzhiyu-c/ibbs/internal/pkg/auth"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/response"
	"github.com/anzhiyu-c/ibbs/pkg/service/bug_report"

	"github.com/gin-gonic/gin"
)

const attachmentField = "attachment"

// Handler 缺陷反馈处理器
type Handler struct {
	bugSvc bug_report.Service
}

func NewHandler(bugSvc bug_report.Service) *Handler {
	return &Handler{bugSvc: bugSvc}
}

// Submit 提交缺陷反馈
// @Summary      提交缺陷反馈
// @Description  未填写严重程度时由 AI 判断。multipart 提交时可附带 attachment 文件 (图片或纯文本，不超过 5MB)
// @Tags         缺陷反馈
// @Accept       json,mpfd
// @Produce      json
// @Param        body        body      model.SubmitBugReportRequest  false  "JSON 提交"
// @Param        attachment  formData  file                          false  "附件"
// @Success      201  {object}  response.Response{data=model.BugReportResponse}  "提交成功"
// @Failure      400  {object}  response.Response  "参数错误或附件不合法"
// @Router       /bug-reports [post]
func (h *Handler) Submit(c *gin.Context) {
	var req model.SubmitBugReportRequest
	var attachment *model.BugAttachment

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			response.Fail(c, http.StatusBadRequest, "标题和描述不能为空")
			return
		}
		fileHeader, err := c.FormFile(attachmentField)
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			response.Fail(c, http.StatusBadRequest, "读取附件失败")
			return
		default:
			if attachment, err = readAttachment(fileHeader); err != nil {
				response.FailWithError(c, err)
				return
			}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "标题和描述不能为空")
		return
	}

	var reporterID *uint
	if userID, ok := auth.CurrentUserID(c); ok {
		reporterID = &userID
	}

	result, err := h.bugSvc.Submit(c.Request.Context(), reporterID, &req, attachment)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, result, "感谢反馈")
}

// readAttachment 最多读取上限加一个字节，超出部分交给服务层拒绝
func readAttachment(fileHeader *multipart.FileHeader) (*model.BugAttachment, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, bug_report.MaxAttachmentSize+1))
	if err != nil {
		return nil, err
	}
	return &model.BugAttachment{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Data:        data,
	}, nil
}

// List 查询缺陷反馈
// @Summary      缺陷反馈列表
// @Description  管理员可以看到全部，普通用户只能看到自己提交的
// @Tags         缺陷反馈
// @Security     BearerAuth
// @Produce      json
// @Param        page      query  int     false  "页码"  default(1)
// @Param        pageSize  query  int     false  "每页数量"  default(10)
// @Param        status    query  string  false  "状态编码"
// @Success      200  {object}  response.Response{data=model.BugReportListResponse}  "获取成功"
// @Router       /bug-reports [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "请先登录")
		return
	}
	var req model.ListBugReportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "分页参数错误")
		return
	}
	result, err := h.bugSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取成功")
}

// UpdateStatus 修改缺陷状态
// @Summary      修改缺陷状态
// @Tags         缺陷反馈
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                        true  "反馈公共ID"
// @Param        body  body      model.UpdateBugStatusRequest  true  "新状态"
// @Success      200   {object}  response.Response{data=model.BugReportResponse}  "修改成功"
// @Failure      400   {object}  response.Response  "无效的状态"
// @Failure      404   {object}  response.Response  "反馈不存在"
// @Router       /bug-reports/{id}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "请先登录")
		return
	}
	var req model.UpdateBugStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "状态不能为空")
		return
	}
	result, err := h.bugSvc.UpdateStatus(c.Request.Context(), userID, c.Param("id"), req.Status)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "状态已更新")
}
