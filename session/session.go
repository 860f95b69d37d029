package session

import (
	"image"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/chaos-io/bgeraser/rembg"
)

type Session struct {
	ID string

	mu        sync.Mutex
	original  image.Image
	format    string
	threshold int
	result    *rembg.Result
	updatedAt time.Time
}

// Snapshot 会话的只读视图
type Snapshot struct {
	ID        string
	Width     int
	Height    int
	Format    string
	Threshold int
	HasImage  bool
	HasResult bool
	UpdatedAt time.Time
}

func newSession(threshold int, now time.Time) *Session {
	return &Session{
		ID:        ksuid.New().String(),
		threshold: threshold,
		updatedAt: now,
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.ID,
		Format:    s.format,
		Threshold: s.threshold,
		HasImage:  s.original != nil,
		HasResult: s.result != nil,
		UpdatedAt: s.updatedAt,
	}
	if s.original != nil {
		snap.Width = s.original.Bounds().Dx()
		snap.Height = s.original.Bounds().Dy()
	}
	return snap
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.updatedAt)
}
