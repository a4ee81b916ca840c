// Package quote maps raw provider payloads to the canonical Quote record.
package quote

import (
	"errors"
	"fmt"

	"stockquote/internal/market"
)

// ErrNoPrice means the resolved price is zero; such a record is never a Quote.
var ErrNoPrice = errors.New("price is zero or unavailable")

// Kind distinguishes stocks from exchange-traded funds.
type Kind string

const (
	Stock Kind = "stock"
	Fund  Kind = "fund"
)

// Quote is a snapshot of a security at query time.
type Quote struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Kind          Kind    `json:"kind"`
	Price         float64 `json:"price"`
	PreClose      float64 `json:"preClose"`
	ChangePercent float64 `json:"changePercent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        float64 `json:"volume"`
	Amount        float64 `json:"amount"`
	TurnoverRate  float64 `json:"turnoverRate"`
	// MarketValue is in hundred-millions of the home currency.
	MarketValue float64 `json:"marketValue"`
	NAV         float64 `json:"nav,omitempty"`
	// PremiumRate is set only when NAV > 0.
	PremiumRate *float64 `json:"premiumRate,omitempty"`
	Currency    string   `json:"currency"`
	// Source names the feed the price came from.
	Source string `json:"source,omitempty"`
	// NAVSource names the strategy the NAV came from.
	NAVSource string `json:"navSource,omitempty"`
}

// Result is what callers get per code: a Quote or a labeled error.
type Result struct {
	Code  string `json:"code"`
	Quote *Quote `json:"quote,omitempty"`
	// Chart is the rendered image path, empty when no chart was produced.
	Chart string `json:"chart,omitempty"`
	// TimelineChart is the secondary chart path, when requested.
	TimelineChart string `json:"timelineChart,omitempty"`
	Error         string `json:"error,omitempty"`
}

// OK wraps a quote.
func OK(q Quote) Result {
	return Result{Code: q.Code, Quote: &q}
}

// Failed is the error record for code.
func Failed(code string, err error) Result {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return Result{Code: code, Error: reason}
}

// Fields maps provider field codes to Quote attributes. An empty code means
// the provider has no such field. Scales divide the raw value.
type Fields struct {
	Price         string
	Name          string
	PreClose      string
	High          string
	Low           string
	Volume        string
	Amount        string
	ChangePercent string
	Change        string
	Turnover      string
	TurnoverAlt   string
	MarketValue   string
	NAVEstimate   string

	VolumeScale float64
	AmountScale float64
}

var (
	// StockFields is the push2 stock quote table.
	StockFields = Fields{
		Price:         "f43",
		Name:          "f58",
		PreClose:      "f60",
		High:          "f44",
		Low:           "f45",
		Volume:        "f47",
		Amount:        "f48",
		ChangePercent: "f170",
		Change:        "f169",
		Turnover:      "f168",
		TurnoverAlt:   "f8",
		MarketValue:   "f116",
		VolumeScale:   1e4,
		AmountScale:   1e4,
	}
	// FundFields is the push2 fund quote table.
	FundFields = Fields{
		Price:         "f43",
		Name:          "f58",
		PreClose:      "f60",
		ChangePercent: "f170",
		Change:        "f169",
		Turnover:      "f8",
		TurnoverAlt:   "f51",
		MarketValue:   "f116",
		NAVEstimate:   "f71",
	}
)

const hundredMillion = 1e8

// Normalize builds a Quote from payload using f. Every numeric field is
// parse-or-zero.
func Normalize(code string, kind Kind, payload map[string]any, f Fields) (Quote, error) {
	price := Field(payload, f.Price)
	if price == 0 {
		return Quote{}, fmt.Errorf("%s: %w", code, ErrNoPrice)
	}
	preClose := Field(payload, f.PreClose)
	q := Quote{
		Code:          code,
		Name:          Text(payload, f.Name),
		Kind:          kind,
		Price:         price,
		PreClose:      preClose,
		ChangePercent: ChangePercent(Field(payload, f.ChangePercent), Field(payload, f.Change), price, preClose),
		High:          Field(payload, f.High),
		Low:           Field(payload, f.Low),
		Volume:        scaled(Field(payload, f.Volume), f.VolumeScale),
		Amount:        scaled(Field(payload, f.Amount), f.AmountScale),
		TurnoverRate:  Field(payload, f.Turnover),
		MarketValue:   Round2(Field(payload, f.MarketValue) / hundredMillion),
		Currency:      "CNY",
	}
	if q.TurnoverRate == 0 {
		q.TurnoverRate = Field(payload, f.TurnoverAlt)
	}
	return q, nil
}

// NormalizeStock builds a stock Quote for a classified security.
func NormalizeStock(sec market.Security, payload map[string]any, source string) (Quote, error) {
	q, err := Normalize(sec.Code, Stock, payload, StockFields)
	if err != nil {
		return Quote{}, err
	}
	q.Currency = sec.Segment.Currency()
	q.Source = source
	return q, nil
}

// NormalizeFund builds a fund Quote. nav is the resolved NAV; when it is 0 the
// payload's own estimate is used instead.
func NormalizeFund(code string, payload map[string]any, nav float64, navSource string) (Quote, error) {
	q, err := Normalize(code, Fund, payload, FundFields)
	if err != nil {
		return Quote{}, err
	}
	q.Source = "eastmoney-fund"
	if nav <= 0 {
		nav = Field(payload, FundFields.NAVEstimate)
		navSource = "payload-f71"
	}
	if nav > 0 {
		q.NAV = nav
		q.NAVSource = navSource
		q.PremiumRate = PremiumRate(q.Price, nav)
	}
	return q, nil
}

// ChangePercent prefers the provider's percent. Only when it is exactly 0 is
// the percent derived from the absolute change, or from price - preClose when
// the change is also 0. A genuinely flat session and an omitted field look
// the same here.
func ChangePercent(pct, change, price, preClose float64) float64 {
	if pct != 0 {
		return pct
	}
	if change == 0 && preClose > 0 {
		change = price - preClose
	}
	if change == 0 || price-change == 0 {
		return 0
	}
	return change / (price - change) * 100
}

// PremiumRate is round((price/nav - 1) * 100, 2), or nil when nav <= 0.
func PremiumRate(price, nav float64) *float64 {
	if nav <= 0 {
		return nil
	}
	r := Round2((price/nav - 1) * 100)
	return &r
}

func scaled(v, scale float64) float64 {
	if scale == 0 {
		return v
	}
	return v / scale
}
