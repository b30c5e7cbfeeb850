/*
 * @Description: 缺陷反馈
 * @Author: 安知鱼
 * @Date: 2026-03-12 14:02:51
 * @LastEditTime: 2026-03-30 10:11:09
 * @LastEditors: 安知鱼
 */
package model

import "time"

type BugReport struct {
	ID            uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ReporterID    *uint
	Title         string
	Description   string
	PageURL       string
	Severity      string
	Status        string
	AttachmentURL string
}

type BugReportQueryOptions struct {
	ReporterID *uint
	Status     string
	Page       int
	PageSize   int
}

// BugAttachment 是上传的附件内容
type BugAttachment struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}

// SubmitBugReportRequest 同时支持 JSON 和 multipart 表单
type SubmitBugReportRequest struct {
	Title       string `json:"title" form:"title" binding:"required"`
	Description string `json:"description" form:"description" binding:"required"`
	PageURL     string `json:"pageUrl" form:"pageUrl" binding:"omitempty,max=1024"`
	Severity    string `json:"severity" form:"severity"`
}

type ListBugReportsRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Status   string `form:"status"`
}

type UpdateBugStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type BugReportResponse struct {
	ID            string    `json:"id"`
	ReporterID    string    `json:"reporterId,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	PageURL       string    `json:"pageUrl"`
	Severity      string    `json:"severity"`
	Status        string    `json:"status"`
	AttachmentURL string    `json:"attachmentUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type BugReportListResponse struct {
	List     []BugReportResponse `json:"list"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
}
