package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"stockquote/internal/logger"
)

type HTTP struct {
	TimeoutSec           int               `mapstructure:"timeout_sec" json:"timeout_sec"`
	UserAgent            string            `mapstructure:"user_agent" json:"user_agent"`
	Headers              map[string]string `mapstructure:"headers" json:"headers"`
	MaxRequestsPerMinute int               `mapstructure:"max_requests_per_minute" json:"max_requests_per_minute"`
	Burst                int               `mapstructure:"burst" json:"burst"`
}

// Endpoints holds upstream hosts. Paths are fixed by the provider packages.
type Endpoints struct {
	Push2    string `mapstructure:"push2" json:"push2"`
	Push2His string `mapstructure:"push2his" json:"push2his"`
	FundGZ   string `mapstructure:"fundgz" json:"fundgz"`
	FundPage string `mapstructure:"fund_page" json:"fund_page"`
	UT       string `mapstructure:"ut" json:"ut"`
}

type Chart struct {
	Dir         string  `mapstructure:"dir" json:"dir"`
	Filename    string  `mapstructure:"filename" json:"filename"`
	TimelineDir string  `mapstructure:"timeline_dir" json:"timeline_dir"`
	FontPath    string  `mapstructure:"font_path" json:"font_path"`
	FontSize    float64 `mapstructure:"font_size" json:"font_size"`
	Location    string  `mapstructure:"location" json:"location"`
}

type Scan struct {
	WatchList []string `mapstructure:"watch_list" json:"watch_list"`
	DelayMS   int      `mapstructure:"delay_ms" json:"delay_ms"`
	XLSXPath  string   `mapstructure:"xlsx_path" json:"xlsx_path"`
}

type Server struct {
	Port              string `mapstructure:"port" json:"port"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec" json:"request_timeout_sec"`
}

type Config struct {
	HTTP      HTTP          `mapstructure:"http" json:"http"`
	Endpoints Endpoints     `mapstructure:"endpoints" json:"endpoints"`
	Chart     Chart         `mapstructure:"chart" json:"chart"`
	Scan      Scan          `mapstructure:"scan" json:"scan"`
	Server    Server        `mapstructure:"server" json:"server"`
	Log       logger.Config `mapstructure:"log" json:"log"`
}

func Default() Config {
	return Config{
		HTTP: HTTP{
			TimeoutSec: 10,
			Burst:      5,
		},
		Endpoints: Endpoints{
			Push2:    "http://push2.eastmoney.com",
			Push2His: "http://push2his.eastmoney.com",
			FundGZ:   "http://fundgz.1234567.com.cn",
			FundPage: "http://fund.eastmoney.com",
			UT:       "fa5fd1943c7b386f172d6893dbfba10b",
		},
		Chart: Chart{
			Dir:         ".",
			Filename:    "kline.png",
			TimelineDir: "charts",
			FontSize:    12,
			Location:    "Asia/Shanghai",
		},
		Scan: Scan{
			WatchList: []string{
				"688256", "688521", "300474", "300223", "688536",
				"002180", "002649", "688008", "300458", "688123",
			},
			DelayMS: 500,
		},
		Server: Server{Port: "8080", RequestTimeoutSec: 20},
		Log:    logger.Config{Level: "info", Format: "json", MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 30},
	}
}

// Load reads an optional .env file, then an optional config file (json, yaml
// or toml; "config.json" in the working directory is picked up when path is
// empty), then applies STOCKQUOTE_* environment overrides. Missing files are
// not an error; defaults fill every unset field.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := v.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STOCKQUOTE_HTTP_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.HTTP.TimeoutSec = x
		}
	}
	if v := os.Getenv("STOCKQUOTE_USER_AGENT"); v != "" {
		cfg.HTTP.UserAgent = v
	}
	if v := os.Getenv("STOCKQUOTE_MAX_RPM"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.HTTP.MaxRequestsPerMinute = x
		}
	}
	if v := os.Getenv("STOCKQUOTE_BURST"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.HTTP.Burst = x
		}
	}
	if v := os.Getenv("STOCKQUOTE_PUSH2_URL"); v != "" {
		cfg.Endpoints.Push2 = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("STOCKQUOTE_PUSH2HIS_URL"); v != "" {
		cfg.Endpoints.Push2His = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("STOCKQUOTE_FUNDGZ_URL"); v != "" {
		cfg.Endpoints.FundGZ = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("STOCKQUOTE_FUND_PAGE_URL"); v != "" {
		cfg.Endpoints.FundPage = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("STOCKQUOTE_CHART_DIR"); v != "" {
		cfg.Chart.Dir = v
	}
	if v := os.Getenv("STOCKQUOTE_TIMELINE_DIR"); v != "" {
		cfg.Chart.TimelineDir = v
	}
	if v := os.Getenv("STOCKQUOTE_FONT_PATH"); v != "" {
		cfg.Chart.FontPath = v
	}
	if v := os.Getenv("STOCKQUOTE_WATCH_LIST"); v != "" {
		cfg.Scan.WatchList = splitCodes(v)
	}
	if v := os.Getenv("STOCKQUOTE_SCAN_DELAY_MS"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.Scan.DelayMS = x
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("STOCKQUOTE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("STOCKQUOTE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

// splitCodes accepts comma and/or whitespace separated security codes.
func splitCodes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// SplitCodes is exported for the binaries, which accept the same format on
// the command line.
func SplitCodes(s string) []string { return splitCodes(s) }
