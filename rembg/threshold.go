package rembg

import (
	"context"
	"image"

	"golang.org/x/sync/errgroup"
)

// MinParallelPixels 像素数低于该值时并行没有收益，直接走顺序路径
const MinParallelPixels = 16384

// ApplyThreshold 把与背景色距离小于 threshold 的像素 alpha 置 0
//
// 原地修改 pix，只写每个像素的 alpha 通道，RGB 保持不变。
// threshold <= 0 时没有像素会被移除。
func ApplyThreshold(pix []uint8, width, height int, bg Color, threshold int) {
	applyRows(pix, width*4, width, 0, height, bg, float64(threshold))
}

// ApplyThresholdParallel 按行切分后并行执行 ApplyThreshold，结果与顺序执行逐字节一致
//
// 每个 worker 只处理自己那一段连续的行，互不相交，所以不需要加锁。
// ctx 取消后尚未开始的行段不再处理，返回 ctx 的错误，此时 pix 可能只处理了一部分。
func ApplyThresholdParallel(ctx context.Context, pix []uint8, width, height int, bg Color, threshold, workers int) error {
	return applyStride(ctx, pix, width*4, width, height, bg, threshold, workers)
}

// ApplyImageThreshold 作用于 NRGBA 图像（支持子图）
func ApplyImageThreshold(ctx context.Context, img *image.NRGBA, bg Color, threshold, workers int) error {
	b := img.Bounds()
	off := img.PixOffset(b.Min.X, b.Min.Y)
	return applyStride(ctx, img.Pix[off:], img.Stride, b.Dx(), b.Dy(), bg, threshold, workers)
}

func applyStride(ctx context.Context, pix []uint8, stride, width, height int, bg Color, threshold, workers int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	th := float64(threshold)
	if workers <= 1 || width*height < MinParallelPixels {
		applyRows(pix, stride, width, 0, height, bg, th)
		return nil
	}

	band := (height + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < height; start += band {
		end := min(start+band, height)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			applyRows(pix, stride, width, start, end, bg, th)
			return nil
		})
	}
	return g.Wait()
}

func applyRows(pix []uint8, stride, width, startY, endY int, bg Color, threshold float64) {
	for y := startY; y < endY; y++ {
		row := y * stride
		for x := 0; x < width; x++ {
			i := row + x*4
			if pixelDistance(pix[i], pix[i+1], pix[i+2], bg) < threshold {
				pix[i+3] = 0
			}
		}
	}
}
