// Package steamdt talks to the SteamDT open API (item list, batch prices) and
// the web API behind steamdt.com (kline, market index chart).
package steamdt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"csgo-market-data/internal/anchor"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultOpenAPIURL = "https://open.steamdt.com"
	DefaultWebAPIURL  = "https://api.steamdt.com"
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultReferer    = "https://steamdt.com/"

	pathBase       = "/open/cs2/v1/base"
	pathPriceBatch = "/open/cs2/v1/price/batch"
	pathKline      = "/user/steam/category/v1/kline"
	pathChart      = "/user/statistics/v2/chart"
)

// Config is injected at construction; the client never reads the environment.
type Config struct {
	APIKey     string
	OpenAPIURL string
	WebAPIURL  string
	Timeout    time.Duration
	UserAgent  string
}

type Client struct {
	open *resty.Client
	web  *resty.Client
	now  func() time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.OpenAPIURL == "" {
		cfg.OpenAPIURL = DefaultOpenAPIURL
	}
	if cfg.WebAPIURL == "" {
		cfg.WebAPIURL = DefaultWebAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	open := resty.New().
		SetBaseURL(cfg.OpenAPIURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		open.SetAuthToken(cfg.APIKey)
	}

	web := resty.New().
		SetBaseURL(cfg.WebAPIURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Referer", DefaultReferer)

	return &Client{open: open, web: web, now: time.Now}
}

// ListItems returns every CS2 item with its per-platform ids.
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	resp, err := c.open.R().SetContext(ctx).Get(pathBase)
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := decode(resp, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// PriceBatch queries all platform quotes for the given items.
func (c *Client) PriceBatch(ctx context.Context, marketHashNames []string) ([]PriceItem, error) {
	resp, err := c.open.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"marketHashNames": marketHashNames}).
		Post(pathPriceBatch)
	if err != nil {
		return nil, err
	}
	var items []PriceItem
	if err := decode(resp, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Kline returns raw daily rows [ts, open, close, high, low, volume, turnover]
// for a C5 typeVal. maxTime (seconds) is sent when positive.
func (c *Client) Kline(ctx context.Context, typeVal string, maxTime int64) ([][]json.RawMessage, error) {
	params := map[string]string{
		"timestamp":    strconv.FormatInt(anchor.At(c.now(), anchor.Milliseconds), 10),
		"type":         "2",
		"platform":     "ALL",
		"specialStyle": "",
		"typeVal":      typeVal,
	}
	if maxTime > 0 {
		params["maxTime"] = strconv.FormatInt(maxTime, 10)
	}
	resp, err := c.web.R().SetContext(ctx).SetQueryParams(params).Get(pathKline)
	if err != nil {
		return nil, err
	}
	var rows [][]json.RawMessage
	if err := decode(resp, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// IndexChart returns raw [ts, value] rows of the market index.
func (c *Client) IndexChart(ctx context.Context, maxTime int64) ([][]json.RawMessage, error) {
	params := map[string]string{
		"timestamp": strconv.FormatInt(anchor.At(c.now(), anchor.Milliseconds), 10),
		"type":      "2",
		"dateType":  "4",
	}
	if maxTime > 0 {
		params["maxTime"] = strconv.FormatInt(maxTime, 10)
	}
	resp, err := c.web.R().SetContext(ctx).SetQueryParams(params).Get(pathChart)
	if err != nil {
		return nil, err
	}
	var rows [][]json.RawMessage
	if err := decode(resp, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func decode(resp *resty.Response, out interface{}) error {
	if resp.IsError() {
		return fmt.Errorf("steamdt http %d", resp.StatusCode())
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("decode steamdt response: %w", err)
	}
	if !env.Success {
		apiErr := &APIError{Message: env.ErrorMsg}
		if env.ErrorCode != nil {
			apiErr.Code = fmt.Sprint(env.ErrorCode)
		}
		return apiErr
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode steamdt data: %w", err)
	}
	return nil
}
