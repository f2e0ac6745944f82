package repository

import (
	"context"

	"github.com/ocerny17-lgtm/kavarna/internal/model"
)

// OrderRepository 本地持久化槽：整份订单集合的落盘与读取
type OrderRepository interface {
	// Load 读取全部订单（启动时调用一次）
	Load(ctx context.Context) ([]model.Order, error)

	// Save 整份写入集合。订单只增改不删，所以实现为逐条 upsert。
	Save(ctx context.Context, orders []model.Order) error

	// Count 统计订单数量
	Count(ctx context.Context) (int64, error)

	// InitSchema 初始化表结构
	InitSchema() error

	// Close 关闭数据库连接
	Close() error
}
