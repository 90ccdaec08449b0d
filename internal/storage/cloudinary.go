package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/config"
)

// CloudinaryUploader 上传到 Cloudinary
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader 创建 Cloudinary 存储
func NewCloudinaryUploader(cfg config.CloudinaryConfig, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: folder}, nil
}

func (u *CloudinaryUploader) Name() string {
	return "cloudinary"
}

// Upload 上传文件；key 去掉扩展名后作为 public id
func (u *CloudinaryUploader) Upload(ctx context.Context, key string, body io.Reader, _ string) (string, error) {
	publicID := strings.TrimSuffix(key, path.Ext(key))
	resp, err := u.cld.Upload.Upload(ctx, body, uploader.UploadParams{
		PublicID:     publicID,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload error: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// Delete 根据完整地址删除文件
func (u *CloudinaryUploader) Delete(ctx context.Context, fileURL string) error {
	publicID, err := cloudinaryPublicID(fileURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %w", err)
	}
	if _, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	return nil
}

// cloudinaryPublicID 从地址提取 public id，例如
// https://res.cloudinary.com/demo/image/upload/v1234567890/reports/2026/01/abc.jpg -> reports/2026/01/abc
func cloudinaryPublicID(fileURL string) (string, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", err
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	upload := -1
	for i, p := range parts {
		if p == "upload" {
			upload = i
			break
		}
	}
	if upload < 0 || upload+1 >= len(parts) {
		return "", errors.New("invalid cloudinary URL format")
	}
	rest := parts[upload+1:]
	if len(rest) > 1 && isVersionSegment(rest[0]) {
		rest = rest[1:]
	}
	joined := path.Join(rest...)
	return strings.TrimSuffix(joined, path.Ext(joined)), nil
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
