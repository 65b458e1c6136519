package images

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RemoteStore forwards uploads to an image-hosting endpoint that accepts a
// multipart "file" part and answers {"url": ..., "id": ...}.
type RemoteStore struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

func NewRemoteStore(endpoint, apiKey string, client *http.Client) (*RemoteStore, error) {
	if endpoint == "" {
		return nil, errors.New("remote image URL is required for the remote image backend")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid remote image URL: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RemoteStore{Endpoint: strings.TrimSuffix(endpoint, "/"), APIKey: apiKey, Client: client}, nil
}

type remoteUploadResponse struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

func (r *RemoteStore) Put(ctx context.Context, img Image) (string, error) {
	filename := img.Filename
	if filename == "" {
		filename = uuid.New().String()
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Data)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, path.Base(filename)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.authorize(req)

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("image upload failed: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out remoteUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("image upload returned invalid JSON: %w", err)
	}
	if out.URL == "" {
		return "", errors.New("image upload returned no url")
	}
	return out.URL, nil
}

// Delete asks the host to drop the image whose id is the last path
// segment of ref. References that are not URLs are ignored.
func (r *RemoteStore) Delete(ctx context.Context, ref string) error {
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil
	}
	id := path.Base(u.Path)
	if id == "" || id == "/" || id == "." {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, r.Endpoint+"/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	r.authorize(req)

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("image delete failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("image delete failed: %s", resp.Status)
	}
	return nil
}

func (r *RemoteStore) authorize(req *http.Request) {
	if r.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}
}
