package repository

import (
	"context"
	"errors"
)

var (
	// ErrChannelEmpty 远端还没有任何数据（等价于 HTTP 404 / redis nil）
	ErrChannelEmpty = errors.New("remote channel is empty")
)

// RemoteChannel 共享远端通道：多个客户端的汇合点。
// 无鉴权、无逐单粒度，读写都是整份 JSON 集合；
// 存储端 last-POST-wins，并发冲突完全由客户端在下一次 pull 时裁决。
type RemoteChannel interface {
	// Pull 取回最近一次推送的完整集合原始字节
	Pull(ctx context.Context) ([]byte, error)

	// Push 整份覆盖远端集合
	Push(ctx context.Context, payload []byte) error
}

// NopChannel 离线模式：pull 永远为空，push 直接丢弃，本地状态独立运转
type NopChannel struct{}

func (NopChannel) Pull(ctx context.Context) ([]byte, error) { return nil, ErrChannelEmpty }

func (NopChannel) Push(ctx context.Context, payload []byte) error { return nil }
