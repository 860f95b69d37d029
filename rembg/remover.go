package rembg

import (
	"context"
	"errors"
	"image"
	"log/slog"
)

var ErrEmptyImage = errors.New("image has no pixels")

type BackgroundRemover interface {
	Remove(ctx context.Context, img image.Image) (*Result, error)
}

// Result 一次去背景的输出
type Result struct {
	Image      *image.NRGBA
	Background Color
	Threshold  int
	// Removed 变成全透明的像素数
	Removed int
	// Subject 剩余不透明像素的包围盒，全部被移除时为空
	Subject image.Rectangle
}

// ThresholdRemover 背景色估计 + 阈值合成
type ThresholdRemover struct {
	Threshold int
	// Workers <= 1 时顺序执行
	Workers int
	// MaxWidth 超过该宽度先等比缩小，0 表示不缩放
	MaxWidth int
}

func NewThresholdRemover(threshold, workers, maxWidth int) *ThresholdRemover {
	return &ThresholdRemover{
		Threshold: threshold,
		Workers:   workers,
		MaxWidth:  maxWidth,
	}
}

func (r *ThresholdRemover) Remove(ctx context.Context, img image.Image) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	// 总是复制一份，调用方的图片保持不变
	src := cloneNRGBA(img)
	src = resizeToWidth(src, r.MaxWidth)

	bg := EstimateImageBackground(src)
	if err := ApplyImageThreshold(ctx, src, bg, r.Threshold, r.Workers); err != nil {
		return nil, err
	}

	res := &Result{
		Image:      src,
		Background: bg,
		Threshold:  r.Threshold,
		Removed:    countTransparent(src),
		Subject:    alphaBBox(src),
	}

	slog.Debug("background removed",
		"background", bg.String(),
		"threshold", r.Threshold,
		"removed", res.Removed,
		"width", src.Bounds().Dx(),
		"height", src.Bounds().Dy())

	return res, nil
}
