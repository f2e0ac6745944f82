package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ocerny17-lgtm/kavarna/internal/metrics"
	"github.com/ocerny17-lgtm/kavarna/internal/model"
	"github.com/ocerny17-lgtm/kavarna/internal/repository"
	"github.com/ocerny17-lgtm/kavarna/pkg/logger"
)

type pushJob struct {
	orders []model.Order
	enqAt  time.Time
}

// RemotePusher 本地异步推送执行器：每次变更后整份快照进队列，
// 由后台 worker 尽力推到远端。队列满直接丢弃——下一次变更或
// 下一轮 pull 自然会把状态补齐，不做重试退避。
type RemotePusher struct {
	channel   repository.RemoteChannel
	ch        chan pushJob
	metrics   *metrics.Registry
	metricsCh chan time.Duration
}

func NewRemotePusher(channel repository.RemoteChannel, queueSize int, m *metrics.Registry) *RemotePusher {
	if queueSize <= 0 { queueSize = 256 }
	return &RemotePusher{channel: channel, ch: make(chan pushJob, queueSize), metrics: m, metricsCh: make(chan time.Duration, 4096)}
}

// Start 启动若干 worker 消费推送队列；返回停止函数。
func (p *RemotePusher) Start(workers int) func(context.Context) error {
	if workers <= 0 { workers = 2 }
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case job := <-p.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					p.pushOnce(ctx, job.orders)
					cancel()
					if !job.enqAt.IsZero() {
						select {
						case p.metricsCh <- time.Since(job.enqAt):
						default:
						}
					}
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 等待队列自然排空一小段时间
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(p.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

// EnqueuePush 入队一份集合快照，绝不阻塞调用方
func (p *RemotePusher) EnqueuePush(orders []model.Order) {
	select {
	case p.ch <- pushJob{orders: orders, enqAt: time.Now()}:
	default:
		logger.Warn("push queue full, drop snapshot", zap.Int("orders", len(orders)))
		if p.metrics != nil {
			p.metrics.PushDropped.Inc()
		}
	}
}

func (p *RemotePusher) pushOnce(ctx context.Context, orders []model.Order) {
	payload, err := json.Marshal(orders)
	if err != nil {
		logger.Error("marshal push payload failed", zap.Error(err))
		return
	}
	if err := p.channel.Push(ctx, payload); err != nil {
		// fire-and-forget：失败只记日志，靠后续变更或 pull 收敛
		logger.Warn("remote push failed", zap.Error(err))
		if p.metrics != nil {
			p.metrics.PushFailures.Inc()
		}
		return
	}
	if p.metrics != nil {
		p.metrics.Pushes.Inc()
	}
}

// Metrics 返回推送入队到落地的耗时只读通道（每推一次发送一次 duration）。
func (p *RemotePusher) Metrics() <-chan time.Duration { return p.metricsCh }

// QueueLen 返回当前队列长度（采样值）。
func (p *RemotePusher) QueueLen() int { return len(p.ch) }

// RemotePuller 定时从远端通道拉取集合并交给合并引擎。
// 拉取失败或 payload 不是数组时整轮跳过，等下一个周期重试。
type RemotePuller struct {
	orders   OrderService
	channel  repository.RemoteChannel
	interval time.Duration
	metrics  *metrics.Registry
}

func NewRemotePuller(orders OrderService, channel repository.RemoteChannel, interval time.Duration, m *metrics.Registry) *RemotePuller {
	if interval <= 0 { interval = 8 * time.Second }
	return &RemotePuller{orders: orders, channel: channel, interval: interval, metrics: m}
}

// Start 先立即拉一次（启动时加载共享状态），然后进入固定周期循环；返回停止函数。
// 周期之间不做互斥：合并是幂等的，重叠的 pull 无害。
func (p *RemotePuller) Start() func(context.Context) error {
	stopCh := make(chan struct{})
	go func() {
		_ = p.PullOnce(context.Background())
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = p.PullOnce(context.Background())
			case <-stopCh:
				return
			}
		}
	}()
	return func(ctx context.Context) error { close(stopCh); return nil }
}

// PullOnce 拉取一轮。任何失败都不致命：记日志、计数、等下一轮。
func (p *RemotePuller) PullOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	payload, err := p.channel.Pull(ctx)
	if errors.Is(err, repository.ErrChannelEmpty) {
		return nil
	}
	if err != nil {
		logger.Warn("remote pull failed", zap.Error(err))
		if p.metrics != nil {
			p.metrics.PullFailures.Inc()
		}
		return err
	}
	remote, err := model.DecodeOrders(payload)
	if err != nil {
		// 远端没有 schema 约束，拿到非数组 payload 时按 no-op 处理
		logger.Warn("remote payload is not an order collection", zap.Error(err))
		if p.metrics != nil {
			p.metrics.PullFailures.Inc()
		}
		return err
	}
	if p.metrics != nil {
		p.metrics.Pulls.Inc()
	}
	changed, err := p.orders.MergeRemote(ctx, remote)
	if err != nil {
		return err
	}
	if changed {
		logger.Info("remote merge applied", zap.Int("remote_orders", len(remote)))
	}
	return nil
}
