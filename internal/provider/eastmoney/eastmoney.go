// Package eastmoney reads quotes, fund estimates and intraday trends from the
// Eastmoney push2 quote service and the fund.eastmoney.com pages.
package eastmoney

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stockquote/internal/endpoint"
	"stockquote/internal/market"
	"stockquote/internal/quote"
)

// Fetcher is the subset of the endpoint client the provider needs.
//
//go:generate mockgen -package=eastmoney_test -destination=mock_fetcher_test.go -source=eastmoney.go Fetcher
type Fetcher interface {
	JSON(ctx context.Context, req endpoint.Request) (map[string]any, error)
	Text(ctx context.Context, req endpoint.Request) (string, error)
}

// ErrNoData is returned when the payload carries no data object or value.
var ErrNoData = errors.New("no data")

const (
	quotePath  = "/api/qt/stock/get"
	trendsPath = "/api/qt/stock/trends2/get"
	lsjzPath   = "/f10/F10DataApi.aspx"

	stockFields = "f43,f44,f45,f46,f47,f48,f57,f58,f60,f71,f116,f168,f169,f170,f8,f51"
	fundFields  = "f43,f58,f60,f8,f51,f169,f170,f116,f71,f161"

	pageMarker = `"gz_gsz":"`
	pageWindow = 100
)

// Hosts are base URLs without a trailing slash.
type Hosts struct {
	Push2    string
	Push2His string
	FundPage string
	UT       string
}

// Client is safe for concurrent use.
type Client struct {
	fetcher Fetcher
	hosts   Hosts
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithClock replaces time.Now, which feeds the JSONP callback name.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a client over f.
func New(f Fetcher, hosts Hosts, opts ...Option) *Client {
	c := &Client{fetcher: f, hosts: hosts, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StockPush2 fetches a stock quote payload from the push2 host.
func (c *Client) StockPush2(ctx context.Context, sec market.Security) (map[string]any, error) {
	return c.stock(ctx, "eastmoney-push2", c.hosts.Push2, sec)
}

// StockPush2His fetches a stock quote payload from the push2his host, which
// serves Hong Kong listings more reliably.
func (c *Client) StockPush2His(ctx context.Context, sec market.Security) (map[string]any, error) {
	return c.stock(ctx, "eastmoney-push2his", c.hosts.Push2His, sec)
}

func (c *Client) stock(ctx context.Context, name, base string, sec market.Security) (map[string]any, error) {
	params := map[string]string{
		"ut":      c.hosts.UT,
		"invt":    "2",
		"fltt":    "2",
		"fields":  stockFields,
		"secid":   sec.SecID(),
		"forcect": "1",
	}
	if sec.Segment == market.HK {
		params["iscca"] = "1"
	}
	doc, err := c.fetcher.JSON(ctx, endpoint.Request{Name: name, URL: base + quotePath, Params: params})
	if err != nil {
		return nil, err
	}
	return data(doc)
}

// Fund fetches a fund quote payload. The fund feed answers in JSONP.
func (c *Client) Fund(ctx context.Context, code string) (map[string]any, error) {
	doc, err := c.fetcher.JSON(ctx, c.fundRequest("eastmoney-fund", code))
	if err != nil {
		return nil, err
	}
	return data(doc)
}

// FundQuote is Fund for an already classified security.
func (c *Client) FundQuote(ctx context.Context, sec market.Security) (map[string]any, error) {
	return c.Fund(ctx, sec.Code)
}

// EstimateNAV reads the intraday NAV estimate (f71) from the fund feed.
func (c *Client) EstimateNAV(ctx context.Context, code string) (float64, error) {
	payload, err := c.fetcher.JSON(ctx, c.fundRequest("eastmoney-f71", code))
	if err != nil {
		return 0, err
	}
	d, err := data(payload)
	if err != nil {
		return 0, err
	}
	return quote.Field(d, "f71"), nil
}

func (c *Client) fundRequest(name, code string) endpoint.Request {
	return endpoint.Request{
		Name: name,
		URL:  c.hosts.Push2 + quotePath,
		Params: map[string]string{
			"secid":  market.Fund(code).SecID(),
			"fields": fundFields,
			"ut":     c.hosts.UT,
			"fltt":   "2",
			"cb":     "jQuery.jQuery" + strconv.FormatInt(c.now().UnixMilli(), 10),
		},
		Unwrap: endpoint.Callback,
	}
}

// PageEstimate scrapes the estimate embedded in the fund detail page.
func (c *Client) PageEstimate(ctx context.Context, code string) (float64, error) {
	text, err := c.fetcher.Text(ctx, endpoint.Request{
		Name: "eastmoney-detail-page",
		URL:  fmt.Sprintf("%s/%s.html", c.hosts.FundPage, code),
	})
	if err != nil {
		return 0, err
	}
	return parsePageEstimate(text)
}

func parsePageEstimate(text string) (float64, error) {
	idx := strings.Index(text, pageMarker)
	if idx < 0 {
		return 0, fmt.Errorf("detail page: %w", ErrNoData)
	}
	window := text[idx:min(len(text), idx+pageWindow)]
	parts := strings.Split(window, `"`)
	for i, p := range parts {
		if p == "gz_gsz" && i+2 < len(parts) {
			v, err := strconv.ParseFloat(parts[i+2], 64)
			if err != nil {
				return 0, fmt.Errorf("detail page: parse estimate: %w", err)
			}
			return v, nil
		}
	}
	return 0, fmt.Errorf("detail page: %w", ErrNoData)
}

// HistoryNAV reads the most recently published NAV.
func (c *Client) HistoryNAV(ctx context.Context, code string) (float64, error) {
	text, err := c.fetcher.Text(ctx, endpoint.Request{
		Name: "eastmoney-history-nav",
		URL:  c.hosts.FundPage + lsjzPath,
		Params: map[string]string{
			"type": "lsjz",
			"code": code,
			"page": "1",
			"per":  "1",
		},
	})
	if err != nil {
		return 0, err
	}
	return parseHistoryNAV(text)
}

// parseHistoryNAV takes the second quote-delimited token after the first
// occurrence of "value".
func parseHistoryNAV(text string) (float64, error) {
	_, rest, ok := strings.Cut(text, "value")
	if !ok {
		return 0, fmt.Errorf("history nav: %w", ErrNoData)
	}
	parts := strings.Split(rest, `"`)
	if len(parts) < 2 {
		return 0, fmt.Errorf("history nav: %w", ErrNoData)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("history nav: parse value: %w", err)
	}
	return v, nil
}

// Trends fetches one day of intraday ticks. Hong Kong listings are served by
// push2his with a 240-tick limit.
func (c *Client) Trends(ctx context.Context, sec market.Security) (map[string]any, error) {
	base := c.hosts.Push2
	params := map[string]string{
		"fields1": "f1,f2,f3,f4,f5,f6,f7,f8,f9,f10,f11",
		"fields2": "f51,f52,f53,f54,f55,f56,f57,f58",
		"ut":      c.hosts.UT,
		"ndays":   "1",
		"iscr":    "0",
		"secid":   sec.SecID(),
		"forcect": "1",
	}
	if sec.Segment == market.HK {
		base = c.hosts.Push2His
		params["iscca"] = "1"
		params["lmt"] = "240"
	}
	doc, err := c.fetcher.JSON(ctx, endpoint.Request{Name: "eastmoney-trends", URL: base + trendsPath, Params: params})
	if err != nil {
		return nil, err
	}
	return data(doc)
}

func data(doc map[string]any) (map[string]any, error) {
	d, ok := doc["data"].(map[string]any)
	if !ok || len(d) == 0 {
		return nil, ErrNoData
	}
	return d, nil
}
