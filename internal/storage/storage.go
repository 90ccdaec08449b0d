// Package storage 把附件上传到对象存储，返回可公开访问的地址
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/config"
)

// ErrStorageDisabled 未配置存储提供方
var ErrStorageDisabled = errors.New("file storage is not configured")

// Uploader 对象存储
type Uploader interface {
	Name() string
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// New 根据配置创建存储
func New(ctx context.Context, cfg config.StorageConfig) (Uploader, error) {
	switch cfg.Provider {
	case "":
		return disabled{}, nil
	case "cloudinary":
		return NewCloudinaryUploader(cfg.Cloudinary, cfg.Folder)
	case "s3":
		return NewS3Uploader(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// ObjectKey 生成对象键：folder/yyyy/mm/uuid.ext
func ObjectKey(folder, ext string, now time.Time) string {
	name := uuid.NewString() + strings.ToLower(ext)
	return path.Join(strings.Trim(folder, "/"), now.UTC().Format("2006/01"), name)
}

type disabled struct{}

func (disabled) Name() string { return "disabled" }

func (disabled) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "", ErrStorageDisabled
}

func (disabled) Delete(context.Context, string) error {
	return ErrStorageDisabled
}
