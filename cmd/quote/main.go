package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"stockquote/internal/config"
	"stockquote/internal/logger"
	"stockquote/internal/query"
	"stockquote/internal/quote"
)

func main() {
	var codesArg string
	var chart bool
	var timelineDir string
	var navOnly bool
	var configPath string

	flag.StringVar(&codesArg, "codes", getenv("CODES", ""), "security codes, comma or space separated")
	flag.BoolVar(&chart, "chart", getenvBool("CHART", false), "render the intraday chart")
	flag.StringVar(&timelineDir, "timeline-dir", "", "also render the timeline chart into this directory")
	flag.BoolVar(&navOnly, "nav", false, "resolve fund NAV only")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	codes := config.SplitCodes(codesArg)
	codes = append(codes, flag.Args()...)
	if len(codes) == 0 {
		log.Fatal("no codes provided")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := query.FromConfig(cfg, zl, nil)
	var results []quote.Result
	if navOnly {
		results = svc.NAVAll(ctx, codes)
	} else {
		results = svc.QueryAll(ctx, codes, query.Options{Chart: chart, TimelineDir: timelineDir})
	}

	out := struct {
		Results []quote.Result `json:"results"`
	}{Results: results}
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode: %v", err)
	}
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", r.Code, r.Error)
		}
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y":
			return true
		case "0", "false", "no", "n":
			return false
		}
	}
	return def
}
