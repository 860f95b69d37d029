package rembg

import "image"

// SamplePoints 背景采样点：四个角 + 上下边的中点，共 6 个
func SamplePoints(width, height int) []image.Point {
	return []image.Point{
		{X: 0, Y: 0},
		{X: width - 1, Y: 0},
		{X: 0, Y: height - 1},
		{X: width - 1, Y: height - 1},
		{X: width / 2, Y: 0},
		{X: width / 2, Y: height - 1},
	}
}

// EstimateBackgroundColor 用边缘采样点的平均颜色估计背景色
//
// pix 是行优先的 RGBA 像素，长度必须等于 width*height*4，且 width、height > 0。
// 不修改 pix。
func EstimateBackgroundColor(pix []uint8, width, height int) Color {
	return estimate(pix, width*4, width, height)
}

// EstimateImageBackground 同 EstimateBackgroundColor，支持任意 Stride 的子图
func EstimateImageBackground(img *image.NRGBA) Color {
	b := img.Bounds()
	off := img.PixOffset(b.Min.X, b.Min.Y)
	return estimate(img.Pix[off:], img.Stride, b.Dx(), b.Dy())
}

func estimate(pix []uint8, stride, width, height int) Color {
	points := SamplePoints(width, height)

	var totalR, totalG, totalB float64
	for _, p := range points {
		idx := p.Y*stride + p.X*4
		totalR += float64(pix[idx])
		totalG += float64(pix[idx+1])
		totalB += float64(pix[idx+2])
	}

	count := float64(len(points))
	return Color{
		R: totalR / count,
		G: totalG / count,
		B: totalB / count,
	}
}
