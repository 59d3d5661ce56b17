package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrClientDisabled  = errors.New("commerce client disabled")
	ErrRequestFailed   = errors.New("commerce request failed")
	ErrResponseInvalid = errors.New("commerce response invalid")
)

// Client 电商平台只读查询客户端（目前仅用于补查顾客标签）
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient 创建平台客户端；baseURL 为空时返回禁用客户端
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Enabled 客户端是否可用
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// CustomerTags 按平台顾客ID补查顾客标签。
// webhook 载荷缺失标签时调用；失败由调用方降级处理。
func (c *Client) CustomerTags(ctx context.Context, domain string, customerID int64) ([]string, error) {
	if !c.Enabled() {
		return nil, ErrClientDisabled
	}
	if customerID == 0 {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/customers/%d.json", c.baseURL, customerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if domain = strings.TrimSpace(domain); domain != "" {
		req.Header.Set(HeaderDomain, domain)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	var payload struct {
		Customer Customer `json:"customer"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return SplitTags(payload.Customer.Tags), nil
}
