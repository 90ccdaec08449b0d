package storage

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/config"
)

func encodeImage(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func TestPrepareResizesLargePNG(t *testing.T) {
	data := encodeImage(t, 400, 200, imaging.PNG)

	f, err := Prepare("receipt.png", data, 100)
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType)
	assert.Equal(t, ".png", f.Extension)
	assert.Equal(t, 100, f.Width)
	assert.Equal(t, 50, f.Height)

	decoded, err := imaging.Decode(bytes.NewReader(f.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
}

func TestPrepareKeepsSmallJPEG(t *testing.T) {
	data := encodeImage(t, 64, 48, imaging.JPEG)

	f, err := Prepare("photo.jpg", data, 1024)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", f.ContentType)
	assert.Equal(t, 64, f.Width)
	assert.Equal(t, 48, f.Height)
	assert.Positive(t, f.Size())
}

func TestPreparePassesThroughPDF(t *testing.T) {
	data := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

	f, err := Prepare("invoice.pdf", data, 100)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.Equal(t, data, f.Data)
	assert.Zero(t, f.Width)
}

func TestPrepareRejects(t *testing.T) {
	_, err := Prepare("notes.txt", []byte("just some text, not a receipt"), 100)
	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.True(t, strings.HasPrefix(unsupported.ContentType, "text/plain"))

	_, err = Prepare("empty.png", nil, 100)
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("/reports/", ".PDF", time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, `^reports/2026/04/[0-9a-f-]{36}\.pdf$`, key)
}

func TestCloudinaryPublicID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1234567890/reports/2026/01/abc.jpg", "reports/2026/01/abc"},
		{"https://res.cloudinary.com/demo/raw/upload/reports/invoice.pdf", "reports/invoice"},
	}
	for _, tc := range tests {
		got, err := cloudinaryPublicID(tc.url)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := cloudinaryPublicID("https://example.com/file.jpg")
	assert.Error(t, err)
}

func TestS3KeyFromURL(t *testing.T) {
	u := &S3Uploader{bucket: "verifund-docs", region: "ap-southeast-1", prefix: "uploads"}
	url := u.objectURL("uploads/reports/a.pdf")
	assert.Equal(t, "https://verifund-docs.s3.ap-southeast-1.amazonaws.com/uploads/reports/a.pdf", url)

	key, err := u.keyFromURL(url)
	require.NoError(t, err)
	assert.Equal(t, "uploads/reports/a.pdf", key)

	_, err = u.keyFromURL("https://other.s3.ap-southeast-1.amazonaws.com/a.pdf")
	assert.Error(t, err)
}

func TestNewDisabledAndUnknown(t *testing.T) {
	u, err := New(context.Background(), config.StorageConfig{})
	require.NoError(t, err)
	_, err = u.Upload(context.Background(), "k", bytes.NewReader(nil), "image/png")
	assert.True(t, errors.Is(err, ErrStorageDisabled))

	_, err = New(context.Background(), config.StorageConfig{Provider: "ftp"})
	assert.Error(t, err)
}
