package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
)

// MaxWidth is the width uploaded images are scaled down to.
const MaxWidth = 800

// DiskStore re-encodes uploads as JPEG files under a local directory
// served by the HTTP layer at URLPrefix.
type DiskStore struct {
	Dir       string
	URLPrefix string
}

func NewDiskStore(dir, urlPrefix string) (*DiskStore, error) {
	if dir == "" {
		return nil, errors.New("upload directory is required for the disk image backend")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = "/uploads/"
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &DiskStore{Dir: dir, URLPrefix: urlPrefix}, nil
}

func (d *DiskStore) Put(_ context.Context, img Image) (string, error) {
	decoded, format, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return "", apperr.Validation("unsupported image format, only PNG and JPEG are allowed")
	}

	// Resize only when wider than MaxWidth, preserving aspect ratio.
	if decoded.Bounds().Dx() > MaxWidth {
		decoded = resize.Resize(MaxWidth, 0, decoded, resize.Lanczos3)
	}

	filename := fmt.Sprintf("%s.jpg", uuid.New().String())
	out, err := os.Create(filepath.Join(d.Dir, filename))
	if err != nil {
		return "", fmt.Errorf("error saving image file: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, decoded, &jpeg.Options{Quality: 80}); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("error encoding image: %w", err)
	}

	slog.Debug("Stored image on disk", "file", filename, "source_format", format)
	return d.URLPrefix + filename, nil
}

func (d *DiskStore) Delete(_ context.Context, ref string) error {
	if !strings.HasPrefix(ref, d.URLPrefix) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(ref, d.URLPrefix))
	err := os.Remove(filepath.Join(d.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
