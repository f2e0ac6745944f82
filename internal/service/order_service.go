package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ocerny17-lgtm/kavarna/internal/metrics"
	"github.com/ocerny17-lgtm/kavarna/internal/model"
	"github.com/ocerny17-lgtm/kavarna/internal/repository"
	"github.com/ocerny17-lgtm/kavarna/pkg/logger"
)

var (
	// 校验类失败：同步返回给用户，不产生任何状态变更
	ErrEmptyName    = errors.New("customer name is required")
	ErrEmptyCoffee  = errors.New("coffee type is required")
	ErrBaristaOrder = errors.New("baristas cannot place orders")
	ErrNoBarista    = errors.New("an active barista identity is required")
)

// CreateOrderInput 创建订单的输入
type CreateOrderInput struct {
	CustomerName string
	CoffeeType   string
	ExtraWishes  string
	WithMilk     bool
	SugarSpoons  int
}

// Pusher 把一份集合快照异步推到远端，绝不阻塞调用方
type Pusher interface {
	EnqueuePush(orders []model.Order)
}

// OrderService 生命周期控制器：权威集合的唯一写入入口（合并引擎除外）
type OrderService interface {
	// Restore 启动时从本地持久化槽恢复权威集合
	Restore(ctx context.Context) error
	// Create 顾客下单。姓名为空或当前会话是 barista 时拒绝。
	Create(ctx context.Context, in CreateOrderInput, identity string) (*model.Order, error)
	// Claim barista 接单：new → claimed。订单不存在或状态不对时静默跳过。
	Claim(ctx context.Context, orderID int64, identity string) (*model.Order, error)
	// MarkDelivering 开始配送：claimed → delivering，只有认领者本人可以推进
	MarkDelivering(ctx context.Context, orderID int64, identity string) (*model.Order, error)
	// List 展示用的活跃订单（done 过滤掉），按创建时间升序
	List(ctx context.Context) []model.Order
	// Snapshot 完整集合的拷贝（推送远端用，包含 done）
	Snapshot(ctx context.Context) []model.Order
	// MergeRemote 合并引擎入口：远端集合并进权威集合，返回是否有变化
	MergeRemote(ctx context.Context, remote []model.Order) (bool, error)
}

type orderService struct {
	// mu 把 HTTP/同步两侧的并发串行化，对应原设计里的单一 UI 线程
	mu      sync.Mutex
	orders  []model.Order
	repo    repository.OrderRepository
	pusher  Pusher
	metrics *metrics.Registry
	nowFn   func() int64
}

// NewOrderService 创建生命周期控制器；pusher、m 允许为 nil（离线/测试）
func NewOrderService(repo repository.OrderRepository, pusher Pusher, m *metrics.Registry) OrderService {
	return &orderService{
		repo:    repo,
		pusher:  pusher,
		metrics: m,
		nowFn:   func() int64 { return time.Now().UnixMilli() },
	}
}

func (s *orderService) Restore(ctx context.Context) error {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	now := s.nowFn()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = model.NormalizeAllAt(loaded, now)
	model.SortByTimestamp(s.orders)
	s.gaugeLocked()
	return nil
}

func (s *orderService) Create(ctx context.Context, in CreateOrderInput, identity string) (*model.Order, error) {
	if identity != "" {
		return nil, ErrBaristaOrder
	}
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, ErrEmptyName
	}
	coffee := strings.TrimSpace(in.CoffeeType)
	if coffee == "" {
		return nil, ErrEmptyCoffee
	}
	sugar := in.SugarSpoons
	if sugar < 0 { sugar = 0 }

	now := s.nowFn()
	s.mu.Lock()
	order := model.Order{
		ID:           s.freeIDLocked(now),
		CustomerName: name,
		CoffeeType:   coffee,
		ExtraWishes:  strings.TrimSpace(in.ExtraWishes),
		WithMilk:     in.WithMilk,
		SugarSpoons:  sugar,
		Status:       model.StatusNew,
		Timestamp:    now,
		UpdatedAt:    now,
	}
	s.orders = append(s.orders, order)
	model.SortByTimestamp(s.orders)
	s.afterMutationLocked(ctx)
	s.mu.Unlock()

	logger.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.String("coffee", order.CoffeeType))
	return &order, nil
}

func (s *orderService) Claim(ctx context.Context, orderID int64, identity string) (*model.Order, error) {
	if identity == "" {
		return nil, ErrNoBarista
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(orderID)
	if i < 0 {
		return nil, nil
	}
	if s.orders[i].Status != model.StatusNew {
		// 另一个 barista 抢先了：界面过期导致的竞态，按预期静默处理
		o := s.orders[i]
		return &o, nil
	}
	s.orders[i].Status = model.StatusClaimed
	s.orders[i].Barista = identity
	s.orders[i].UpdatedAt = s.nowFn()
	o := s.orders[i]
	s.afterMutationLocked(ctx)

	logger.Info("order claimed",
		zap.Int64("order_id", o.ID),
		zap.String("barista", identity))
	return &o, nil
}

func (s *orderService) MarkDelivering(ctx context.Context, orderID int64, identity string) (*model.Order, error) {
	if identity == "" {
		return nil, ErrNoBarista
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(orderID)
	if i < 0 {
		return nil, nil
	}
	if s.orders[i].Status != model.StatusClaimed || s.orders[i].Barista != identity {
		// 所有权检查：别人认领的订单不能由我推进
		o := s.orders[i]
		return &o, nil
	}
	s.orders[i].Status = model.StatusDelivering
	s.orders[i].UpdatedAt = s.nowFn()
	o := s.orders[i]
	s.afterMutationLocked(ctx)

	logger.Info("order delivering",
		zap.Int64("order_id", o.ID),
		zap.String("barista", identity))
	return &o, nil
}

func (s *orderService) List(ctx context.Context) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Active(s.orders)
}

func (s *orderService) Snapshot(ctx context.Context) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *orderService) MergeRemote(ctx context.Context, remote []model.Order) (bool, error) {
	now := s.nowFn()
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := Merge(s.orders, remote, now)
	if ordersEqual(merged, s.orders) {
		return false, nil
	}
	s.orders = merged
	s.persistLocked(ctx)
	s.gaugeLocked()
	if s.metrics != nil {
		s.metrics.MergeChanged.Inc()
	}
	return true, nil
}

// freeIDLocked 以当前毫秒为 id，撞上已有订单就逐毫秒后移
func (s *orderService) freeIDLocked(now int64) int64 {
	id := now
	for s.indexLocked(id) >= 0 {
		id++
	}
	return id
}

func (s *orderService) indexLocked(orderID int64) int {
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			return i
		}
	}
	return -1
}

func (s *orderService) snapshotLocked() []model.Order {
	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// afterMutationLocked 先落盘再尽力推送；推送失败不回滚本地变更
func (s *orderService) afterMutationLocked(ctx context.Context) {
	s.persistLocked(ctx)
	s.gaugeLocked()
	if s.pusher != nil {
		s.pusher.EnqueuePush(s.snapshotLocked())
	}
}

func (s *orderService) persistLocked(ctx context.Context) {
	if err := s.repo.Save(ctx, s.orders); err != nil {
		// 本地落盘失败也不中断：内存里的权威集合继续可用
		logger.Error("persist orders failed", zap.Error(err))
	}
}

func (s *orderService) gaugeLocked() {
	if s.metrics != nil {
		s.metrics.OrdersTotal.Set(float64(len(s.orders)))
	}
}
