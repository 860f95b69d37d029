package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	client := NewHTTPClient()
	httpClient, ok := client.(*HTTPClient)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, httpClient.client.Timeout)

	client = NewHTTPClientWithTimeout(time.Second)
	httpClient, ok = client.(*HTTPClient)
	require.True(t, ok)
	assert.Equal(t, time.Second, httpClient.client.Timeout)
}

func TestHTTPClient_DoHTTPRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		requestParam *RequestParam
		handler      http.HandlerFunc
		wantErrMsg   string
	}{
		{
			name:         "GET 请求",
			requestParam: &RequestParam{Method: http.MethodGet},
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				_, _ = w.Write([]byte(`{"message": "success"}`))
			},
		},
		{
			name: "POST JSON body",
			requestParam: &RequestParam{
				Method: http.MethodPost,
				Body:   map[string]interface{}{"threshold": 60},
			},
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var data map[string]interface{}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&data))
				assert.EqualValues(t, 60, data["threshold"])
			},
		},
		{
			name: "io.Reader body 默认 text/plain",
			requestParam: &RequestParam{
				Method: http.MethodPost,
				Body:   strings.NewReader("plain body"),
			},
			handler: func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				assert.Equal(t, "plain body", string(body))
				assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
			},
		},
		{
			name: "Header 覆盖默认 Content-Type",
			requestParam: &RequestParam{
				Method: http.MethodPost,
				Body:   []byte{0x89, 'P', 'N', 'G'},
				Header: map[string]string{"Content-Type": "image/png"},
			},
			handler: func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, body)
				assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
			},
		},
		{
			name:         "服务器返回错误状态码",
			requestParam: &RequestParam{Method: http.MethodGet},
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error": "server error"}`))
			},
			wantErrMsg: "HTTP request failed with status 500",
		},
		{
			name: "请求超时",
			requestParam: &RequestParam{
				Method:  http.MethodGet,
				Timeout: 50 * time.Millisecond,
			},
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
			wantErrMsg: "context deadline exceeded",
		},
		{
			name:       "请求参数为nil",
			wantErrMsg: "request param is nil",
		},
		{
			name: "无效的URL",
			requestParam: &RequestParam{
				Method:     http.MethodGet,
				RequestURI: "://invalid-url",
			},
			wantErrMsg: "missing protocol scheme",
		},
		{
			name: "JSON序列化失败",
			requestParam: &RequestParam{
				Method: http.MethodPost,
				Body:   make(chan int),
			},
			wantErrMsg: "json: unsupported type: chan int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := tt.handler
			if handler == nil {
				handler = func(w http.ResponseWriter, r *http.Request) {}
			}
			server := httptest.NewServer(handler)
			defer server.Close()

			if tt.requestParam != nil && tt.requestParam.RequestURI == "" {
				tt.requestParam.RequestURI = server.URL
			}

			err := NewHTTPClient().DoHTTPRequest(context.Background(), tt.requestParam)
			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHTTPClient_DoHTTPRequest_Response(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			_, _ = w.Write([]byte(`{"width": 3, "height": 2}`))
		case "/raw":
			_, _ = w.Write([]byte("raw-bytes"))
		case "/bad":
			_, _ = w.Write([]byte("not json"))
		}
	}))
	defer server.Close()

	client := NewHTTPClient()
	ctx := context.Background()

	var size struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	err := client.DoHTTPRequest(ctx, &RequestParam{Method: http.MethodGet, RequestURI: server.URL + "/json", Response: &size})
	require.NoError(t, err)
	assert.Equal(t, 3, size.Width)
	assert.Equal(t, 2, size.Height)

	var raw []byte
	err = client.DoHTTPRequest(ctx, &RequestParam{Method: http.MethodGet, RequestURI: server.URL + "/raw", Response: &raw})
	require.NoError(t, err)
	assert.Equal(t, "raw-bytes", string(raw))

	var bad map[string]interface{}
	err = client.DoHTTPRequest(ctx, &RequestParam{Method: http.MethodGet, RequestURI: server.URL + "/bad", Response: &bad})
	assert.ErrorContains(t, err, "unmarshal response")
}

func TestHTTPClient_DoHTTPRequest_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := NewHTTPClient().DoHTTPRequest(ctx, &RequestParam{Method: http.MethodGet, RequestURI: server.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

func TestHTTPClient_DoHTTPRequest_ErrorStatusCodes(t *testing.T) {
	t.Parallel()

	for _, statusCode := range []int{400, 404, 500, 502} {
		t.Run(strconv.Itoa(statusCode), func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(statusCode)
				_, _ = w.Write([]byte(strings.Repeat("x", 2*maxErrorBody)))
			}))
			defer server.Close()

			err := NewHTTPClient().DoHTTPRequest(context.Background(), &RequestParam{Method: http.MethodGet, RequestURI: server.URL})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "HTTP request failed with status "+strconv.Itoa(statusCode))
			// 响应体被截断
			assert.Less(t, len(err.Error()), 2*maxErrorBody)
		})
	}
}

func TestHTTPClient_DoHTTPRequest_MaxBodyBytes(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("p", 100)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)

	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{name: "不限制", limit: 0},
		{name: "刚好等于上限", limit: 100},
		{name: "超过上限", limit: 99, wantErr: true},
		{name: "远小于响应", limit: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var raw []byte
			err := NewHTTPClient().DoHTTPRequest(context.Background(), &RequestParam{
				Method:       http.MethodGet,
				RequestURI:   server.URL,
				Response:     &raw,
				MaxBodyBytes: tt.limit,
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrResponseTooLarge)
				assert.Empty(t, raw)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, payload, string(raw))
		})
	}
}
