package rembg

import (
	"image"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// cloneNRGBA 复制成 Min 为 (0,0)、Stride 紧凑的 NRGBA
func cloneNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	// NRGBA 直接按行拷贝，避免经过预乘 alpha 的转换丢失透明像素的 RGB
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src.Pix[off:off+b.Dx()*4])
		}
		return dst
	}

	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// resizeToWidth 宽度超过 maxWidth 时等比缩小
func resizeToWidth(img *image.NRGBA, maxWidth int) *image.NRGBA {
	w := img.Bounds().Dx()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}

	scale := float64(maxWidth) / float64(w)
	newH := max(1, int(float64(img.Bounds().Dy())*scale))

	resized := resize.Resize(uint(maxWidth), uint(newH), img, resize.Lanczos3)
	return cloneNRGBA(resized)
}

// alphaBBox 从 alpha 通道计算主体 bounding box，alpha 为 0 的像素视为背景
func alphaBBox(img *image.NRGBA) image.Rectangle {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	minX, minY := w, h
	maxX, maxY := -1, -1

	for y := 0; y < h; y++ {
		row := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			if img.Pix[row+x*4+3] == 0 {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}

	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

func countTransparent(img *image.NRGBA) int {
	b := img.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			if img.Pix[row+x*4+3] == 0 {
				n++
			}
		}
	}
	return n
}
