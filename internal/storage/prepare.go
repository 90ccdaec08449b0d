package storage

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// allowedTypes 允许上传的类型，值表示是否需要做图片归一化
var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       false,
	"image/webp":      false,
	"application/pdf": false,
	"video/mp4":       false,
}

// File 已校验、可上传的文件
type File struct {
	Name        string
	ContentType string
	Extension   string
	Data        []byte
	Width       int
	Height      int
}

// Size 文件字节数
func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// UnsupportedTypeError 文件类型不在允许范围内
type UnsupportedTypeError struct {
	ContentType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %s", e.ContentType)
}

// Prepare 通过内容嗅探确定类型，不信任客户端声明的 Content-Type。
// JPEG 和 PNG 会按 EXIF 方向摆正，长边超过 maxEdge 时等比缩小。
func Prepare(name string, data []byte, maxEdge int) (*File, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("file %s is empty", name)
	}

	mt := mimetype.Detect(data)
	base := mt
	for base != nil && !isAllowed(base.String()) {
		base = base.Parent()
	}
	if base == nil {
		return nil, &UnsupportedTypeError{ContentType: mt.String()}
	}

	f := &File{
		Name:        name,
		ContentType: base.String(),
		Extension:   base.Extension(),
		Data:        data,
	}
	if !allowedTypes[f.ContentType] {
		return f, nil
	}
	return normalizeImage(f, maxEdge)
}

func isAllowed(contentType string) bool {
	_, ok := allowedTypes[contentType]
	return ok
}

func normalizeImage(f *File, maxEdge int) (*File, error) {
	img, err := imaging.Decode(bytes.NewReader(f.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", f.Name, err)
	}
	if maxEdge > 0 && (img.Bounds().Dx() > maxEdge || img.Bounds().Dy() > maxEdge) {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	format := imaging.JPEG
	if f.ContentType == "image/png" {
		format = imaging.PNG
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode image %s: %w", f.Name, err)
	}

	f.Data = buf.Bytes()
	f.Width, f.Height = dimensions(img)
	return f, nil
}

func dimensions(img image.Image) (int, int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}
