/*
 * @Description: 缺陷反馈服务
 * @Author: 安知鱼
 * @Date: 2026-03-12 15:30:18
 * @LastEditTime: 2026-04-16 11:02:45
 * @LastEditors: 安知鱼
 */
package bug_report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anzhiyu-c/ibbs/internal/infra/storage"
	"github.com/anzhiyu-c/ibbs/internal/pkg/event"
	"github.com/anzhiyu-c/ibbs/internal/pkg/utils"
	"github.com/anzhiyu-c/ibbs/pkg/constant"
	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"
	"github.com/anzhiyu-c/ibbs/pkg/idgen"
	"github.com/anzhiyu-c/ibbs/pkg/service/ai"
	"github.com/anzhiyu-c/ibbs/pkg/service/lookup"

	"go.uber.org/zap"
)

const (
	MaxTitleRunes       = 200
	MaxDescriptionRunes = 5000
	MaxPageURLLength    = 1024
	// MaxAttachmentSize 附件大小上限 5MB
	MaxAttachmentSize = 5 << 20

	attachmentPrefix = "bug-reports"
)

type Service interface {
	// Submit 提交缺陷反馈，reporterID 为 nil 表示匿名
	Submit(ctx context.Context, reporterID *uint, req *model.SubmitBugReportRequest, attachment *model.BugAttachment) (*model.BugReportResponse, error)
	// List 管理员可以看到全部反馈，普通用户只能看到自己的
	List(ctx context.Context, viewerID uint, req *model.ListBugReportsRequest) (*model.BugReportListResponse, error)
	UpdateStatus(ctx context.Context, actorID uint, publicID, status string) (*model.BugReportResponse, error)
}

type service struct {
	repo      repository.BugReportRepository
	userRepo  repository.UserRepository
	lookupSvc lookup.Service
	aiSvc     ai.Service
	storage   storage.IStorageProvider
	bus       *event.EventBus
	logger    *zap.Logger
}

func NewService(
	repo repository.BugReportRepository,
	userRepo repository.UserRepository,
	lookupSvc lookup.Service,
	aiSvc ai.Service,
	storageProvider storage.IStorageProvider,
	bus *event.EventBus,
	logger *zap.Logger,
) Service {
	return &service{
		repo:      repo,
		userRepo:  userRepo,
		lookupSvc: lookupSvc,
		aiSvc:     aiSvc,
		storage:   storageProvider,
		bus:       bus,
		logger:    logger,
	}
}

func (s *service) Submit(ctx context.Context, reporterID *uint, req *model.SubmitBugReportRequest, attachment *model.BugAttachment) (*model.BugReportResponse, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	pageURL := strings.TrimSpace(req.PageURL)
	if n := utils.RuneLen(title); n == 0 || n > MaxTitleRunes {
		return nil, fmt.Errorf("%w: 标题长度需在 1 到 %d 字之间", constant.ErrBadRequest, MaxTitleRunes)
	}
	if n := utils.RuneLen(description); n == 0 || n > MaxDescriptionRunes {
		return nil, fmt.Errorf("%w: 描述长度需在 1 到 %d 字之间", constant.ErrBadRequest, MaxDescriptionRunes)
	}
	if len(pageURL) > MaxPageURLLength {
		return nil, fmt.Errorf("%w: 页面地址过长", constant.ErrBadRequest)
	}

	var contentType string
	if attachment != nil {
		var err error
		if contentType, err = checkAttachment(attachment); err != nil {
			return nil, err
		}
	}

	severity := strings.ToUpper(strings.TrimSpace(req.Severity))
	if severity == "" {
		severity = s.aiSvc.ClassifySeverity(ctx, title, description)
	} else if ok, err := s.lookupSvc.IsValidCode(ctx, constant.LookupBugSeverity.String(), severity); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: 无效的严重程度 %s", constant.ErrBadRequest, severity)
	}

	report := &model.BugReport{
		ReporterID:  reporterID,
		Title:       title,
		Description: description,
		PageURL:     pageURL,
		Severity:    severity,
		Status:      constant.BugStatusOpen,
	}

	var attachmentKey string
	if attachment != nil {
		attachmentKey = storage.BuildObjectKey(attachmentPrefix, attachment.FileName, time.Now())
		res, err := s.storage.Upload(ctx, attachmentKey, contentType, attachment.Data)
		if err != nil {
			return nil, fmt.Errorf("保存附件失败: %w", err)
		}
		report.AttachmentURL = res.URL
	}

	if err := s.repo.Create(ctx, report); err != nil {
		if attachmentKey != "" {
			if delErr := s.storage.Delete(ctx, attachmentKey); delErr != nil {
				s.logger.Warn("清理孤立附件失败", zap.String("key", attachmentKey), zap.Error(delErr))
			}
		}
		return nil, fmt.Errorf("保存缺陷反馈失败: %w", err)
	}

	var reporter uint
	if reporterID != nil {
		reporter = *reporterID
	}
	s.logger.Info("收到缺陷反馈",
		zap.Uint("bug_id", report.ID),
		zap.Uint("reporter_id", reporter),
		zap.String("severity", severity),
		zap.Bool("has_attachment", report.AttachmentURL != ""))
	s.bus.Publish(event.BugReported, event.BugEvent{BugID: report.ID, ReporterID: reporter, Severity: severity})

	resp := ToBugReportResponse(report)
	return &resp, nil
}

// checkAttachment 校验大小和类型，返回最终使用的 Content-Type
func checkAttachment(a *model.BugAttachment) (string, error) {
	size := a.Size
	if size <= 0 {
		size = int64(len(a.Data))
	}
	if size == 0 {
		return "", fmt.Errorf("%w: 附件为空", constant.ErrBadRequest)
	}
	if size > MaxAttachmentSize || int64(len(a.Data)) > MaxAttachmentSize {
		return "", fmt.Errorf("%w: 附件不能超过 5MB", constant.ErrBadRequest)
	}

	// 以文件内容为准，不信任客户端声明的类型
	detected := http.DetectContentType(a.Data)
	mediaType := strings.TrimSpace(strings.SplitN(detected, ";", 2)[0])
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return mediaType, nil
	case mediaType == "text/plain":
		return "text/plain; charset=utf-8", nil
	default:
		return "", fmt.Errorf("%w: 附件只支持图片或纯文本", constant.ErrBadRequest)
	}
}

func (s *service) List(ctx context.Context, viewerID uint, req *model.ListBugReportsRequest) (*model.BugReportListResponse, error) {
	viewer, err := s.userRepo.FindByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			return nil, constant.ErrUnauthorized
		}
		return nil, err
	}

	page, pageSize := utils.NormalizePage(req.Page, req.PageSize)
	opts := model.BugReportQueryOptions{Page: page, PageSize: pageSize}
	if status := strings.ToUpper(strings.TrimSpace(req.Status)); status != "" {
		ok, err := s.lookupSvc.IsValidCode(ctx, constant.LookupBugStatus.String(), status)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: 无效的状态 %s", constant.ErrBadRequest, status)
		}
		opts.Status = status
	}
	if !viewer.IsAdmin() {
		opts.ReporterID = &viewer.ID
	}

	reports, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	list := make([]model.BugReportResponse, 0, len(reports))
	for _, r := range reports {
		list = append(list, ToBugReportResponse(r))
	}
	return &model.BugReportListResponse{List: list, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *service) UpdateStatus(ctx context.Context, actorID uint, publicID, status string) (*model.BugReportResponse, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			return nil, constant.ErrUnauthorized
		}
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: 只有管理员可以修改反馈状态", constant.ErrForbidden)
	}

	id, err := idgen.DecodeEntityID(strings.TrimSpace(publicID), idgen.EntityTypeBugReport)
	if err != nil {
		return nil, fmt.Errorf("%w: 缺陷反馈不存在", constant.ErrNotFound)
	}
	status = strings.ToUpper(strings.TrimSpace(status))
	ok, err := s.lookupSvc.IsValidCode(ctx, constant.LookupBugStatus.String(), status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: 无效的状态 %s", constant.ErrBadRequest, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("缺陷反馈状态已更新", zap.Uint("bug_id", id), zap.String("status", status), zap.Uint("actor_id", actor.ID))

	resp := ToBugReportResponse(report)
	return &resp, nil
}

func ToBugReportResponse(r *model.BugReport) model.BugReportResponse {
	resp := model.BugReportResponse{
		ID:            idgen.MustPublicID(r.ID, idgen.EntityTypeBugReport),
		Title:         r.Title,
		Description:   r.Description,
		PageURL:       r.PageURL,
		Severity:      r.Severity,
		Status:        r.Status,
		AttachmentURL: r.AttachmentURL,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.ReporterID != nil {
		resp.ReporterID = idgen.MustPublicID(*r.ReporterID, idgen.EntityTypeUser)
	}
	return resp
}
