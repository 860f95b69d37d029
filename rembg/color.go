package rembg

import (
	"fmt"
	"math"
)

// MaxThreshold 大于 RGB 空间最大欧氏距离 sqrt(3*255^2) ≈ 441.67 的最小整数，
// 阈值取到它时所有像素都会被移除
const MaxThreshold = 442

// Color 背景参考色，只有 RGB，没有 alpha
type Color struct {
	R float64
	G float64
	B float64
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%.2f, %.2f, %.2f)", c.R, c.G, c.B)
}

// ColorDistance RGB 空间中的欧氏距离
func ColorDistance(a, b Color) float64 {
	dr := a.R - b.R
	dg := a.G - b.G
	db := a.B - b.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func pixelDistance(r, g, b uint8, bg Color) float64 {
	return ColorDistance(Color{R: float64(r), G: float64(g), B: float64(b)}, bg)
}
