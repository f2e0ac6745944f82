package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPChannel 对接 jsonbase 风格的公共 blob 存储：
// GET 返回整份 JSON 数组，POST 整份覆盖。没有鉴权，没有条件写。
type HTTPChannel struct {
	url    string
	client *http.Client
}

// NewHTTPChannel 创建 HTTP 通道
func NewHTTPChannel(url string, timeout time.Duration) *HTTPChannel {
	if timeout <= 0 { timeout = 5 * time.Second }
	return &HTTPChannel{url: url, client: &http.Client{Timeout: timeout}}
}

func (c *HTTPChannel) Pull(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("http pull: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http pull: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrChannelEmpty
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http pull: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http pull: %w", err)
	}
	return data, nil
}

func (c *HTTPChannel) Push(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("http push: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http push: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("http push: unexpected status %d", resp.StatusCode)
	}
	return nil
}
