package session

import "io"

// LoadImage 载入一张新图片。Reader 和 URL 二选一，Reader 优先
type LoadImage struct {
	Reader io.Reader
	URL    string
}

// SetThreshold 调整灵敏度，不会自动重新去背景
type SetThreshold struct {
	Value int
}

// RemoveBackground 用当前阈值处理已载入的图片
type RemoveBackground struct{}

// ExportResult 把最近一次结果编码成 PNG 写到 Writer
type ExportResult struct {
	Writer io.Writer
}
