package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	flag "github.com/spf13/pflag"

	"github.com/chaos-io/bgeraser/rembg"
)

type Config struct {
	Listen string

	// Threshold 默认的去背景阈值，会被限制在 [0, rembg.MaxThreshold]
	Threshold int
	// MaxWidth 处理前把图片缩到该宽度以内，0 表示不缩放
	MaxWidth int
	Workers  int

	MaxUploadBytes  int64
	DownloadTimeout time.Duration

	SessionTTL time.Duration
	// SweepSpec cron 表达式，定时清理过期会话
	SweepSpec string

	LogLevel  string
	LogFormat string
}

func Default() *Config {
	return &Config{
		Listen:          ":8080",
		Threshold:       60,
		MaxWidth:        700,
		Workers:         runtime.NumCPU(),
		MaxUploadBytes:  20 << 20,
		DownloadTimeout: 30 * time.Second,
		SessionTTL:      30 * time.Minute,
		SweepSpec:       "@every 1m",
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// BindFlags 把配置项注册到 flag 集合，默认值取当前字段
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.IntVarP(&c.Threshold, "threshold", "t", c.Threshold, "color distance below which pixels become transparent (0-442)")
	fs.IntVar(&c.MaxWidth, "max-width", c.MaxWidth, "scale images wider than this before processing, 0 disables")
	fs.IntVar(&c.Workers, "workers", c.Workers, "goroutines used for the per-pixel pass")
	fs.DurationVar(&c.DownloadTimeout, "download-timeout", c.DownloadTimeout, "timeout for fetching images by URL")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "text or json")
}

// BindServerFlags 只有 HTTP 服务需要的配置项
func (c *Config) BindServerFlags(fs *flag.FlagSet) {
	c.BindFlags(fs)
	fs.StringVar(&c.Listen, "listen", c.Listen, "listen address")
	fs.Int64Var(&c.MaxUploadBytes, "max-upload-bytes", c.MaxUploadBytes, "maximum accepted upload size")
	fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "idle time after which a session is dropped")
	fs.StringVar(&c.SweepSpec, "sweep-spec", c.SweepSpec, "cron spec for the expired session sweeper")
}

func (c *Config) Validate() error {
	var errs []error
	if c.Threshold < 0 || c.Threshold > rembg.MaxThreshold {
		errs = append(errs, fmt.Errorf("threshold %d out of range [0, %d]", c.Threshold, rembg.MaxThreshold))
	}
	if c.MaxWidth < 0 {
		errs = append(errs, fmt.Errorf("max-width must not be negative, got %d", c.MaxWidth))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max-upload-bytes must be positive, got %d", c.MaxUploadBytes))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("session-ttl must be positive, got %s", c.SessionTTL))
	}
	if _, err := cron.ParseStandard(c.SweepSpec); err != nil {
		errs = append(errs, fmt.Errorf("sweep-spec %q: %w", c.SweepSpec, err))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// NewLogger 按配置创建 slog.Logger
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
