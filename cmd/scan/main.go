package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stockquote/internal/config"
	"stockquote/internal/logger"
	"stockquote/internal/query"
	"stockquote/internal/ratelimit"
	"stockquote/internal/scan"
)

func main() {
	var codesArg string
	var xlsxPath string
	var configPath string

	flag.StringVar(&codesArg, "codes", "", "watch list override, comma or space separated")
	flag.StringVar(&xlsxPath, "xlsx", "", "also write the report to this xlsx file")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config file (optional)")
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

	codes := cfg.Scan.WatchList
	if codesArg != "" {
		codes = config.SplitCodes(codesArg)
	}
	if len(codes) == 0 {
		log.Fatal("empty watch list")
	}
	if xlsxPath == "" {
		xlsxPath = cfg.Scan.XLSXPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := query.FromConfig(cfg, zl, nil)
	throttle := ratelimit.NewMinInterval(time.Duration(cfg.Scan.DelayMS) * time.Millisecond)
	report := scan.New(svc, throttle, zl.Named("scan")).Run(ctx, codes)

	if err := report.Print(os.Stdout); err != nil {
		zl.Error("print report", zap.Error(err))
	}
	if xlsxPath != "" {
		if err := report.WriteXLSX(xlsxPath); err != nil {
			zl.Fatal("write xlsx", zap.Error(err))
		}
		zl.Info("report written", zap.String("path", xlsxPath))
	}
}
