// Package images stores product images and hands back a reference the
// catalog keeps in place of the bytes.
package images

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
)

const (
	BackendInline = "inline"
	BackendDisk   = "disk"
	BackendRemote = "remote"
)

type Image struct {
	Data        []byte
	ContentType string
	Filename    string
}

type Store interface {
	// Put stores img and returns its reference.
	Put(ctx context.Context, img Image) (string, error)
	// Delete removes a reference previously returned by Put. Unknown
	// references are ignored.
	Delete(ctx context.Context, ref string) error
}

type Options struct {
	MaxBytes   int64
	UploadDir  string
	URLPrefix  string
	RemoteURL  string
	RemoteKey  string
	HTTPClient *http.Client
}

// New builds the backend named by backend.
func New(backend string, opts Options) (Store, error) {
	switch backend {
	case BackendInline, "":
		return &InlineStore{}, nil
	case BackendDisk:
		return NewDiskStore(opts.UploadDir, opts.URLPrefix)
	case BackendRemote:
		return NewRemoteStore(opts.RemoteURL, opts.RemoteKey, opts.HTTPClient)
	default:
		return nil, fmt.Errorf("unknown image backend %q", backend)
	}
}

// Check enforces the common payload rules before any backend sees it.
func Check(img Image, maxBytes int64) error {
	if len(img.Data) == 0 {
		return apperr.Validation("image is required")
	}
	if img.ContentType == "" {
		img.ContentType = http.DetectContentType(img.Data)
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return apperr.Validation("invalid image format")
	}
	if maxBytes > 0 && int64(len(img.Data)) > maxBytes {
		return apperr.Validation("image is too large (%.2fMB), it must be under %dMB",
			float64(len(img.Data))/(1<<20), maxBytes>>20)
	}
	return nil
}

// DecodeDataURI parses a base64 "data:image/...;base64," URI.
func DecodeDataURI(uri string) (Image, error) {
	if !strings.HasPrefix(uri, "data:image/") {
		return Image{}, apperr.Validation("invalid image format")
	}
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return Image{}, apperr.Validation("invalid image format")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, apperr.Validation("invalid image encoding")
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	return Image{Data: data, ContentType: contentType}, nil
}

// InlineStore keeps the image inside the product record as a data URI.
type InlineStore struct{}

func (InlineStore) Put(_ context.Context, img Image) (string, error) {
	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Data)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data), nil
}

func (InlineStore) Delete(context.Context, string) error { return nil }
