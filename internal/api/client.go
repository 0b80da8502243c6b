package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Zacy-Sokach/RagChat/internal/utils"
)

const (
	askPath = "/ask"

	// 响应体读取上限
	maxBodyBytes  = 10 << 20
	maxErrorBytes = 4 << 10
)

// ErrMalformedResponse 2xx 响应但缺少 answer 字段或不是合法 JSON
var ErrMalformedResponse = errors.New("malformed response from backend")

// APIError 表示非 2xx 的响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Server error: %d", e.StatusCode)
}

// 全局共享的HTTP客户端，实现连接池化
var (
	sharedHTTPClient *http.Client
	httpClientOnce   sync.Once
)

// getSharedHTTPClient 返回共享的HTTP客户端实例
// 没有整体超时：请求只受传输层自身的超时约束，也不会被取消
func getSharedHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		sharedHTTPClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	})
	return sharedHTTPClient
}

type Client struct {
	baseURL string
	client  utils.Doer
}

// NewClient 创建问答后端客户端
// baseURL: 后端根地址，例如 http://localhost:8000
func NewClient(baseURL string) *Client {
	return NewClientWithDoer(baseURL, getSharedHTTPClient())
}

// NewClientWithDoer 使用自定义传输创建客户端，测试用
func NewClientWithDoer(baseURL string, doer utils.Doer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  doer,
	}
}

// BaseURL 返回后端根地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ask 发送一个问题并返回答案
// 网络错误、非 2xx 状态码、响应格式错误都会返回 error
func (c *Client) Ask(ctx context.Context, question, requestID string) (string, error) {
	body, err := json.Marshal(AskRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+askPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to connect to the backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(bodyBytes)),
		}
	}

	var askResp AskResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&askResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if askResp.Answer == nil {
		return "", fmt.Errorf("%w: missing answer field", ErrMalformedResponse)
	}

	return *askResp.Answer, nil
}

// Health 调用 GET / 检查后端是否在线
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(bodyBytes)}
	}

	var health HealthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&health); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return &health, nil
}
