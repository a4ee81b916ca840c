package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"stockquote/internal/config"
	"stockquote/internal/query"
	"stockquote/internal/quote"
)

const maxCodes = 200

type quoter interface {
	Query(ctx context.Context, code string, opts query.Options) quote.Result
	QueryAll(ctx context.Context, codes []string, opts query.Options) []quote.Result
	NAV(ctx context.Context, code string) quote.Result
}

type quotesResponse struct {
	Results []quote.Result `json:"results"`
}

type handler struct {
	svc     quoter
	timeout time.Duration
	log     *zap.Logger
	// flights coalesces identical in-flight requests; nothing outlives a flight.
	flights singleflight.Group
	// chartMu serializes chart requests, which share one output file.
	chartMu sync.Mutex
}

func newHandler(svc quoter, timeout time.Duration, log *zap.Logger) *handler {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &handler{svc: svc, timeout: timeout, log: log}
}

func (h *handler) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.accessLog(), cors())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/quotes", h.quotes)
		api.GET("/nav/:code", h.nav)
		api.GET("/chart/:code", h.chart)
	}
	return r
}

func (h *handler) quotes(c *gin.Context) {
	raw := c.Query("codes")
	if strings.TrimSpace(raw) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing codes query param"})
		return
	}
	codes := config.SplitCodes(raw)
	if len(codes) > maxCodes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many codes"})
		return
	}

	v, _, _ := h.flights.Do("quotes:"+strings.Join(codes, ","), func() (any, error) {
		ctx, cancel := h.flightContext(c)
		defer cancel()
		return h.svc.QueryAll(ctx, codes, query.Options{}), nil
	})
	c.JSON(http.StatusOK, quotesResponse{Results: v.([]quote.Result)})
}

func (h *handler) nav(c *gin.Context) {
	code := c.Param("code")
	v, _, _ := h.flights.Do("nav:"+code, func() (any, error) {
		ctx, cancel := h.flightContext(c)
		defer cancel()
		return h.svc.NAV(ctx, code), nil
	})
	res := v.(quote.Result)
	if res.Quote == nil {
		c.JSON(http.StatusBadGateway, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// flightContext outlives the caller that started the flight, since other
// requests may be waiting on its result; only the timeout bounds it.
func (h *handler) flightContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.timeout)
}

func (h *handler) chart(c *gin.Context) {
	code := c.Param("code")
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	h.chartMu.Lock()
	defer h.chartMu.Unlock()
	res := h.svc.Query(ctx, code, query.Options{Chart: true})
	if res.Chart == "" {
		body := gin.H{"error": "no chart produced"}
		if res.Error != "" {
			body["reason"] = res.Error
		}
		c.JSON(http.StatusNotFound, body)
		return
	}
	png, err := os.ReadFile(res.Chart)
	if err != nil {
		h.log.Warn("read chart", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "no chart produced"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

// cors allows browser usage; adjust as needed.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
