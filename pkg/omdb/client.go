// Package omdb 提供了一个与 OMDb 元数据服务交互的客户端。
package omdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"cinematch-go/internal/config"
	"cinematch-go/pkg/log"
)

// NotAvailable 是查询失败时返回的哨兵值。
// 元数据查询的任何失败（未找到、超时、响应格式错误、网络错误）都在此边界被吞掉，
// 以哨兵值形式返回，绝不向调用方抛出错误，也绝不影响推荐结果本身。
const NotAvailable = "N/A"

// Details 是单部电影的元数据查询结果。
type Details struct {
	Plot   string `json:"plot"`
	Poster string `json:"poster"`
}

// Client defines the interface for a movie metadata lookup client.
type Client interface {
	GetMovieDetails(ctx context.Context, title string) Details
}

type httpClient struct {
	cfg    config.OMDbConfig
	client *http.Client
}

// NewClient creates a new OMDb client with a bounded request timeout.
func NewClient(cfg config.OMDbConfig) Client {
	return &httpClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// omdbResponse 对应 OMDb API 的响应结构（只取我们需要的字段）。
type omdbResponse struct {
	Response string `json:"Response"`
	Plot     string `json:"Plot"`
	Poster   string `json:"Poster"`
}

// GetMovieDetails 按标题查询完整剧情与海报地址。
func (c *httpClient) GetMovieDetails(ctx context.Context, title string) Details {
	notFound := Details{Plot: NotAvailable, Poster: NotAvailable}

	params := url.Values{}
	params.Set("t", title)
	params.Set("plot", "full")
	params.Set("apikey", c.cfg.APIKey)
	reqURL := c.cfg.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Errorf("[OMDbClient] 创建请求失败, title: '%s', error: %v", title, err)
		return notFound
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("[OMDbClient] 调用 OMDb API 失败, title: '%s', error: %v", title, err)
		return notFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("[OMDbClient] OMDb API 返回非 200 状态码: %s, title: '%s'", resp.Status, title)
		return notFound
	}

	var omdbResp omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&omdbResp); err != nil {
		log.Errorf("[OMDbClient] 解析 OMDb 响应失败, title: '%s', error: %v", title, err)
		return notFound
	}

	if omdbResp.Response != "True" {
		log.Debugf("[OMDbClient] OMDb 未找到电影, title: '%s'", title)
		return notFound
	}

	details := Details{Plot: omdbResp.Plot, Poster: omdbResp.Poster}
	if details.Plot == "" {
		details.Plot = NotAvailable
	}
	if details.Poster == "" {
		details.Poster = NotAvailable
	}
	return details
}
