package repository

import (
	"context"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
)

// BugReportRepository 定义了缺陷反馈操作的契约
type BugReportRepository interface {
	Create(ctx context.Context, report *model.BugReport) error
	FindByID(ctx context.Context, id uint) (*model.BugReport, error)
	List(ctx context.Context, opts model.BugReportQueryOptions) ([]*model.BugReport, int64, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
}
