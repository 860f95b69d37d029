package config

import (
	"bytes"
	"testing"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	c := Default()
	assert.Equal(t, 60, c.Threshold)
	assert.Equal(t, 700, c.MaxWidth)
	assert.Positive(t, c.Workers)
	assert.NoError(t, c.Validate())
}

func TestBindServerFlags(t *testing.T) {
	t.Parallel()

	c := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.BindServerFlags(fs)

	err := fs.Parse([]string{
		"-t", "120",
		"--max-width", "0",
		"--workers", "2",
		"--listen", "127.0.0.1:9000",
		"--session-ttl", "5m",
		"--sweep-spec", "*/5 * * * *",
		"--log-format", "json",
	})
	require.NoError(t, err)

	assert.Equal(t, 120, c.Threshold)
	assert.Zero(t, c.MaxWidth)
	assert.Equal(t, 2, c.Workers)
	assert.Equal(t, "127.0.0.1:9000", c.Listen)
	assert.Equal(t, 5*time.Minute, c.SessionTTL)
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "阈值为负", modify: func(c *Config) { c.Threshold = -1 }, wantErr: "threshold -1 out of range"},
		{name: "阈值过大", modify: func(c *Config) { c.Threshold = 500 }, wantErr: "threshold 500 out of range"},
		{name: "宽度为负", modify: func(c *Config) { c.MaxWidth = -5 }, wantErr: "max-width"},
		{name: "worker 为 0", modify: func(c *Config) { c.Workers = 0 }, wantErr: "workers"},
		{name: "上传大小为 0", modify: func(c *Config) { c.MaxUploadBytes = 0 }, wantErr: "max-upload-bytes"},
		{name: "TTL 为 0", modify: func(c *Config) { c.SessionTTL = 0 }, wantErr: "session-ttl"},
		{name: "cron 表达式错误", modify: func(c *Config) { c.SweepSpec = "every minute" }, wantErr: "sweep-spec"},
		{name: "日志级别错误", modify: func(c *Config) { c.LogLevel = "verbose" }, wantErr: "unknown log level"},
		{name: "日志格式错误", modify: func(c *Config) { c.LogFormat = "xml" }, wantErr: "unknown log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Default()
			tt.modify(c)
			assert.ErrorContains(t, c.Validate(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := Default()
	c.LogFormat = "json"
	c.LogLevel = "warn"

	logger, err := c.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "threshold", 60)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"threshold":60`)
}
