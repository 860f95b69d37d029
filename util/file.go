package util

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	nhttp "github.com/chaos-io/bgeraser/util/http"
)

// DefaultExportName 导出文件的默认名字
const DefaultExportName = "image-no-bg.png"

var ErrNotImage = errors.New("not an image file")

// DecodeImage 解码图片，自动按 EXIF 旋转，返回图片格式
// 内容不是图片时返回 ErrNotImage
func DecodeImage(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}

	_, format, err := image.DecodeConfig(bytesReader(data))
	if err != nil {
		// TIFF 等格式 DetectContentType 不认识，所以先看能否解析头部
		if !strings.HasPrefix(http.DetectContentType(data), "image/") {
			return nil, "", ErrNotImage
		}
		return nil, "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	img, err := imaging.Decode(bytesReader(data), imaging.AutoOrientation(true))
	if err != nil {
		// 头部合法但内容损坏或被截断，同样算不是有效图片
		return nil, "", fmt.Errorf("%w: decode %s: %v", ErrNotImage, format, err)
	}
	return img, format, nil
}

// DownloadImage 下载图片，maxBytes > 0 时响应体超过该大小直接失败
func DownloadImage(ctx context.Context, cli nhttp.IClient, url string, maxBytes int64) (image.Image, string, error) {
	var data []byte
	err := cli.DoHTTPRequest(ctx, &nhttp.RequestParam{
		RequestURI:   url,
		Method:       http.MethodGet,
		Response:     &data,
		MaxBodyBytes: maxBytes,
	})
	if err != nil {
		return nil, "", fmt.Errorf("download image: %w", err)
	}
	return DecodeImage(bytesReader(data))
}

// OpenImage 打开本地图片
func OpenImage(path string) (image.Image, error) {
	img, _, err := OpenImageFs(afero.NewOsFs(), path)
	return img, err
}

// OpenImageFs 从指定文件系统打开图片
func OpenImageFs(fs afero.Fs, path string) (image.Image, string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = file.Close()
	}()

	return DecodeImage(file)
}

// IsURL 判断输入是否为 http(s) 地址
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// EncodePNG 编码为 PNG，透明像素保留 alpha
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// SavePNG 写入 PNG 文件，父目录不存在时自动创建
func SavePNG(fs afero.Fs, path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := EncodePNG(f, img); err != nil {
		return fmt.Errorf("png encode: %w", err)
	}
	return nil
}
