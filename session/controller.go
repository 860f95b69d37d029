package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/chaos-io/bgeraser/rembg"
	"github.com/chaos-io/bgeraser/util"
	nhttp "github.com/chaos-io/bgeraser/util/http"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoImage         = errors.New("no image loaded")
	ErrNoResult        = errors.New("background has not been removed yet")
	ErrEmptyLoad       = errors.New("neither reader nor url given")
)

type Options struct {
	Threshold int
	MaxWidth  int
	Workers   int
	TTL       time.Duration

	// MaxImageBytes 按 URL 载入时响应体的上限，0 表示不限制
	MaxImageBytes int64
}

// Controller 持有所有会话，把命令分发到对应会话上执行
type Controller struct {
	opts Options
	cli  nhttp.IClient
	now  func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewController(opts Options, cli nhttp.IClient) *Controller {
	return &Controller{
		opts:     opts,
		cli:      cli,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (c *Controller) Create() *Session {
	s := newSession(ClampThreshold(c.opts.Threshold), c.now())

	c.mu.Lock()
	c.sessions[s.ID] = s
	c.mu.Unlock()

	slog.Debug("session created", "id", s.ID)
	return s
}

func (c *Controller) Get(id string) (*Session, error) {
	c.mu.RLock()
	s, ok := c.sessions[id]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

func (c *Controller) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(c.sessions, id)
	return nil
}

func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// LoadImage 解码成功后替换原图并清掉上一次的结果，失败时会话保持不变
func (c *Controller) LoadImage(ctx context.Context, id string, cmd LoadImage) (Snapshot, error) {
	s, err := c.Get(id)
	if err != nil {
		return Snapshot{}, err
	}

	var (
		img    image.Image
		format string
	)
	switch {
	case cmd.Reader != nil:
		img, format, err = util.DecodeImage(cmd.Reader)
	case cmd.URL != "":
		img, format, err = util.DownloadImage(ctx, c.cli, cmd.URL, c.opts.MaxImageBytes)
	default:
		err = ErrEmptyLoad
	}
	if err != nil {
		return Snapshot{}, err
	}
	if img.Bounds().Empty() {
		return Snapshot{}, rembg.ErrEmptyImage
	}

	s.mu.Lock()
	s.original = img
	s.format = format
	s.result = nil
	s.updatedAt = c.now()
	s.mu.Unlock()

	slog.Info("image loaded", "id", id, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return s.Snapshot(), nil
}

// SetThreshold 返回限制到合法范围后的阈值
func (c *Controller) SetThreshold(id string, cmd SetThreshold) (int, error) {
	s, err := c.Get(id)
	if err != nil {
		return 0, err
	}

	v := ClampThreshold(cmd.Value)

	s.mu.Lock()
	s.threshold = v
	s.updatedAt = c.now()
	s.mu.Unlock()

	return v, nil
}

func (c *Controller) RemoveBackground(ctx context.Context, id string, _ RemoveBackground) (*rembg.Result, error) {
	s, err := c.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.original == nil {
		return nil, ErrNoImage
	}

	remover := rembg.NewThresholdRemover(s.threshold, c.opts.Workers, c.opts.MaxWidth)
	res, err := remover.Remove(ctx, s.original)
	if err != nil {
		return nil, fmt.Errorf("remove background: %w", err)
	}

	s.result = res
	s.updatedAt = c.now()

	slog.Info("background removed", "id", id, "threshold", res.Threshold,
		"background", res.Background.String(), "removed", res.Removed)
	return res, nil
}

func (c *Controller) ExportResult(id string, cmd ExportResult) error {
	s, err := c.Get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	res := s.result
	s.updatedAt = c.now()
	s.mu.Unlock()

	if res == nil {
		return ErrNoResult
	}
	// 结果生成后不会再被修改，编码时不需要持锁
	return util.EncodePNG(cmd.Writer, res.Image)
}

// Sweep 删除空闲超过 TTL 的会话，返回删除数量
func (c *Controller) Sweep() int {
	if c.opts.TTL <= 0 {
		return 0
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	expired := lo.Filter(lo.Values(c.sessions), func(s *Session, _ int) bool {
		return s.idleSince(now) > c.opts.TTL
	})
	for _, s := range expired {
		delete(c.sessions, s.ID)
	}

	if len(expired) > 0 {
		slog.Info("expired sessions swept", "count", len(expired), "remaining", len(c.sessions))
	}
	return len(expired)
}

// ClampThreshold 把阈值限制在 [0, rembg.MaxThreshold]
func ClampThreshold(v int) int {
	return lo.Clamp(v, 0, rembg.MaxThreshold)
}
