package util

import (
	"bytes"
	"io"
	"log/slog"
	"time"
)

// Trace 记录一段逻辑的耗时，用法：defer util.Trace("remove background")()
func Trace(msg string) func() {
	start := time.Now()
	slog.Debug("enter", "msg", msg)
	return func() {
		slog.Info("exit", "msg", msg, "elapsed", time.Since(start))
	}
}

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
