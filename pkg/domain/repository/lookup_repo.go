package repository

import (
	"context"

	"github.com/anzhiyu-c/ibbs/pkg/domain/model"
)

// LookupRepository 定义了参考数据操作的契约
type LookupRepository interface {
	FindByType(ctx context.Context, lookupType string) ([]*model.LookupMaster, error)
	// CreateIfAbsent 按 (lookup_type, code) 插入，已存在时不做修改
	CreateIfAbsent(ctx context.Context, item *model.LookupMaster) (bool, error)
}
