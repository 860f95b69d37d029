package http

import (
	"context"
	"errors"
	"time"
)

// ErrResponseTooLarge 响应体超过 RequestParam.MaxBodyBytes
var ErrResponseTooLarge = errors.New("response body too large")

// IClient 对外只暴露一个方法，方便在测试里替换
type IClient interface {
	DoHTTPRequest(ctx context.Context, requestParam *RequestParam) error
}

// RequestParam 描述一次请求以及响应落到哪里
//
//	Body:     nil / io.Reader / []byte / 任意可 JSON 序列化的值
//	Response: nil 忽略响应体，*[]byte 拿原始字节，其他按 JSON 解析
type RequestParam struct {
	Method     string
	RequestURI string
	Header     map[string]string

	Body     any
	Response any

	// Timeout 单次请求的超时，0 表示只用 client 的默认超时
	Timeout time.Duration
	// MaxBodyBytes 响应体上限，0 表示不限制
	MaxBodyBytes int64
}
