package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ocerny17-lgtm/kavarna/internal/model"
)

// GormOrderRepository 基于 gorm 的订单仓储实现（sqlite / postgres 由连接决定）
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建订单仓储
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// Load 读取全部订单，按创建时间升序
func (r *GormOrderRepository) Load(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Order("timestamp ASC, id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Save 整份 upsert 集合。同 id 整条覆盖（合并已经在内存里裁决过了）。
func (r *GormOrderRepository) Save(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&orders).Error
}

// Count 统计订单数量
func (r *GormOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&count).Error
	return count, err
}

// InitSchema 初始化数据库表结构
func (r *GormOrderRepository) InitSchema() error {
	if err := r.db.AutoMigrate(&model.Order{}); err != nil {
		return fmt.Errorf("failed to migrate orders table: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func (r *GormOrderRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
