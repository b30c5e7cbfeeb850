/*
 * @Description: 缺陷反馈仓储
 * @Author: 安知鱼
 * @Date: 2026-03-12 15:10:44
 * @LastEditTime: 2026-03-30 10:20:13
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"

	entsql "entgo.io/ent/dialect/sql"
)

const tableBugReports = "bug_reports"

var bugReportColumns = []string{
	"id", "created_at", "updated_at", "reporter_id", "title", "description",
	"page_url", "severity", "status", "attachment_url",
}

type bugReportRepo struct {
	base
}

func NewBugReportRepository(ex Executor, dialectName string) repository.BugReportRepository {
	return &bugReportRepo{base{ex: ex, dialect: dialectName}}
}

func (r *bugReportRepo) Create(ctx context.Context, report *model.BugReport) error {
	now := time.Now()
	report.CreatedAt, report.UpdatedAt = now, now

	var reporter sql.NullInt64
	if report.ReporterID != nil {
		reporter = sql.NullInt64{Int64: int64(*report.ReporterID), Valid: true}
	}
	ib := r.sql().Insert(tableBugReports).
		Columns("created_at", "updated_at", "reporter_id", "title", "description", "page_url", "severity", "status", "attachment_url").
		Values(now, now, reporter, report.Title, report.Description, report.PageURL, report.Severity, report.Status, report.AttachmentURL)
	id, err := r.insert(ctx, ib)
	if err != nil {
		return fmt.Errorf("创建缺陷反馈失败: %w", err)
	}
	report.ID = id
	return nil
}

func (r *bugReportRepo) FindByID(ctx context.Context, id uint) (*model.BugReport, error) {
	sel := r.sql().Select(bugReportColumns...).From(r.sql().Table(tableBugReports)).Where(entsql.EQ("id", id)).Limit(1)
	report, err := scanBugReport(r.queryRow(ctx, sel))
	if err != nil {
		return nil, notFound(err)
	}
	return report, nil
}

func (r *bugReportRepo) List(ctx context.Context, opts model.BugReportQueryOptions) ([]*model.BugReport, int64, error) {
	preds := func() []*entsql.Predicate {
		var ps []*entsql.Predicate
		if opts.ReporterID != nil {
			ps = append(ps, entsql.EQ("reporter_id", *opts.ReporterID))
		}
		if opts.Status != "" {
			ps = append(ps, entsql.EQ("status", opts.Status))
		}
		return ps
	}

	total, err := r.count(ctx, tableBugReports, preds()...)
	if err != nil {
		return nil, 0, fmt.Errorf("统计缺陷反馈失败: %w", err)
	}
	if total == 0 {
		return []*model.BugReport{}, 0, nil
	}

	sel := r.sql().Select(bugReportColumns...).From(r.sql().Table(tableBugReports))
	if ps := preds(); len(ps) > 0 {
		sel.Where(entsql.And(ps...))
	}
	sel.OrderBy(entsql.Desc("id")).Limit(opts.PageSize).Offset(offset(opts.Page, opts.PageSize))

	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, 0, fmt.Errorf("查询缺陷反馈失败: %w", err)
	}
	defer rows.Close()

	reports := make([]*model.BugReport, 0, opts.PageSize)
	for rows.Next() {
		report, err := scanBugReport(rows)
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, report)
	}
	return reports, total, rows.Err()
}

func (r *bugReportRepo) UpdateStatus(ctx context.Context, id uint, status string) error {
	ub := r.sql().Update(tableBugReports).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(entsql.EQ("id", id))
	res, err := r.exec(ctx, ub)
	if err != nil {
		return fmt.Errorf("更新缺陷状态失败: %w", err)
	}
	return requireAffected(res)
}

func scanBugReport(row rowScanner) (*model.BugReport, error) {
	var b model.BugReport
	var reporter sql.NullInt64
	if err := row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt, &reporter, &b.Title, &b.Description,
		&b.PageURL, &b.Severity, &b.Status, &b.AttachmentURL); err != nil {
		return nil, err
	}
	if reporter.Valid {
		id := uint(reporter.Int64)
		b.ReporterID = &id
	}
	return &b, nil
}
