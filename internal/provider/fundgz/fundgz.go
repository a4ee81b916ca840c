// Package fundgz reads real-time fund NAV estimates from the fundgz feed,
// which answers `jsonpgz({...});`.
package fundgz

import (
	"context"
	"fmt"

	"stockquote/internal/endpoint"
	"stockquote/internal/quote"
)

// Fetcher is the subset of the endpoint client the provider needs.
//
//go:generate mockgen -package=fundgz_test -destination=mock_fetcher_test.go -source=fundgz.go Fetcher
type Fetcher interface {
	JSON(ctx context.Context, req endpoint.Request) (map[string]any, error)
}

// Estimate is one fundgz record.
type Estimate struct {
	Code string
	Name string
	// NAV is the last published unit NAV (dwjz).
	NAV float64
	// Value is the intraday estimate (gsz).
	Value float64
	// Time is the estimate timestamp as sent, e.g. "2024-03-01 15:00".
	Time string
}

// Client is safe for concurrent use.
type Client struct {
	fetcher Fetcher
	baseURL string
}

// New creates a client. baseURL has no trailing slash.
func New(f Fetcher, baseURL string) *Client {
	return &Client{fetcher: f, baseURL: baseURL}
}

// Estimate fetches the record for code.
func (c *Client) Estimate(ctx context.Context, code string) (Estimate, error) {
	doc, err := c.fetcher.JSON(ctx, endpoint.Request{
		Name:   "fundgz",
		URL:    fmt.Sprintf("%s/js/%s.js", c.baseURL, code),
		Unwrap: endpoint.FixedPadding(8, 2),
	})
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{
		Code:  quote.Text(doc, "fundcode"),
		Name:  quote.Text(doc, "name"),
		NAV:   quote.Field(doc, "dwjz"),
		Value: quote.Field(doc, "gsz"),
		Time:  quote.Text(doc, "gztime"),
	}, nil
}
