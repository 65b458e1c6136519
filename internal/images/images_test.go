package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCheck(t *testing.T) {
	data := pngBytes(t, 4, 4)

	assert.NoError(t, Check(Image{Data: data, ContentType: "image/png"}, 1<<20))
	assert.NoError(t, Check(Image{Data: data}, 1<<20), "content type is sniffed")

	err := Check(Image{}, 1<<20)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = Check(Image{Data: []byte("hello"), ContentType: "text/plain"}, 1<<20)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = Check(Image{Data: make([]byte, 2<<20), ContentType: "image/png"}, 1<<20)
	require.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "must be under 1MB")
}

func TestDecodeDataURI(t *testing.T) {
	data := pngBytes(t, 2, 2)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	img, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, data, img.Data)

	for _, bad := range []string{
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png,rawbytes",
		"data:image/png;base64,***",
		"/uploads/a.jpg",
	} {
		_, err := DecodeDataURI(bad)
		assert.True(t, apperr.Is(err, apperr.KindValidation), bad)
	}
}

func TestInlineRoundTrip(t *testing.T) {
	data := pngBytes(t, 2, 2)
	ref, err := InlineStore{}.Put(context.Background(), Image{Data: data, ContentType: "image/png"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "data:image/png;base64,"))

	back, err := DecodeDataURI(ref)
	require.NoError(t, err)
	assert.Equal(t, data, back.Data)
	assert.NoError(t, InlineStore{}.Delete(context.Background(), ref))
}

func TestDiskStoreResizesAndDeletes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewDiskStore(dir, "/uploads")
	require.NoError(t, err)

	ref, err := s.Put(ctx, Image{Data: pngBytes(t, 1600, 400), ContentType: "image/png"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "/uploads/"))
	require.True(t, strings.HasSuffix(ref, ".jpg"))

	path := filepath.Join(dir, strings.TrimPrefix(ref, "/uploads/"))
	f, err := os.Open(path)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, MaxWidth, cfg.Width)
	assert.Equal(t, 200, cfg.Height)

	require.NoError(t, s.Delete(ctx, ref))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, ref), "deleting twice is fine")
	assert.NoError(t, s.Delete(ctx, "https://cdn.example.com/a.jpg"), "foreign refs are ignored")
}

func TestDiskStoreKeepsSmallImages(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(dir, "")
	require.NoError(t, err)

	ref, err := s.Put(context.Background(), Image{Data: pngBytes(t, 120, 60)})
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, filepath.Base(ref)))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Width)
}

func TestDiskStoreRejectsUndecodable(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "")
	require.NoError(t, err)
	_, err = s.Put(context.Background(), Image{Data: []byte("GIF89a not really"), ContentType: "image/gif"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRemoteStore(t *testing.T) {
	var deleted []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		switch r.Method {
		case http.MethodPost:
			file, header, err := r.FormFile("file")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			defer file.Close()
			body, _ := io.ReadAll(file)
			if len(body) == 0 || header.Header.Get("Content-Type") != "image/png" {
				http.Error(w, "bad file", http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn.example.com/img/abc123", "id": "abc123"})
		case http.MethodDelete:
			deleted = append(deleted, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	s, err := NewRemoteStore(srv.URL+"/", "secret", srv.Client())
	require.NoError(t, err)

	ref, err := s.Put(ctx, Image{Data: pngBytes(t, 2, 2), ContentType: "image/png", Filename: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/img/abc123", ref)

	require.NoError(t, s.Delete(ctx, ref))
	assert.Equal(t, []string{"/abc123"}, deleted)

	require.NoError(t, s.Delete(ctx, "/uploads/local.jpg"))
	assert.Len(t, deleted, 1)

	bad, err := NewRemoteStore(srv.URL, "wrong", srv.Client())
	require.NoError(t, err)
	_, err = bad.Put(ctx, Image{Data: pngBytes(t, 2, 2), ContentType: "image/png"})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	s, err := New(BackendInline, Options{})
	require.NoError(t, err)
	assert.IsType(t, &InlineStore{}, s)

	_, err = New(BackendDisk, Options{})
	assert.Error(t, err)

	_, err = New(BackendRemote, Options{})
	assert.Error(t, err)

	_, err = New("s3", Options{})
	assert.Error(t, err)
}
