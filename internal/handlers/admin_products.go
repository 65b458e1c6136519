package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/images"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/models"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/store"
)

const defaultMaxImageBytes = 5 << 20

// productForm is an admin product write, from either a JSON body or a
// multipart form.
type productForm struct {
	Name        string
	Description string
	Price       string
	Sizes       []models.SizeStock
	SizesSet    bool
	Bestseller  bool
	Image       *images.Image
}

type productRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       flexString          `json:"price"`
	Sizes       *[]models.SizeStock `json:"sizes"`
	Bestseller  flexString          `json:"bestseller"`
	ImageBase64 string              `json:"imageBase64"`
}

func (h *AdminHandler) maxImageBytes() int64 {
	if h.MaxImageBytes > 0 {
		return h.MaxImageBytes
	}
	return defaultMaxImageBytes
}

func (h *AdminHandler) parseProduct(w http.ResponseWriter, r *http.Request, creating bool) (*productForm, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return h.parseProductMultipart(w, r)
	}

	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	f := &productForm{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price.String(),
		Bestseller:  req.Bestseller.Bool(),
	}
	if req.Sizes != nil {
		f.Sizes, f.SizesSet = *req.Sizes, true
	}

	// On update a client may echo back the current image reference; only a
	// data URI counts as a replacement.
	if req.ImageBase64 != "" && (creating || strings.HasPrefix(req.ImageBase64, "data:")) {
		img, err := images.DecodeDataURI(req.ImageBase64)
		if err != nil {
			return nil, err
		}
		f.Image = &img
	}
	return f, nil
}

func (h *AdminHandler) parseProductMultipart(w http.ResponseWriter, r *http.Request) (*productForm, error) {
	limit := h.maxImageBytes() + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation("image is too large, it must be under %dMB", h.maxImageBytes()>>20)
		}
		return nil, apperr.Validation("invalid form data")
	}

	f := &productForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       strings.TrimSpace(r.FormValue("price")),
		Bestseller:  flexString(r.FormValue("bestseller")).Bool(),
	}
	if raw := strings.TrimSpace(r.FormValue("sizes")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &f.Sizes); err != nil {
			return nil, apperr.Validation("invalid sizes")
		}
		f.SizesSet = true
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return nil, apperr.Validation("invalid image upload")
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, apperr.Validation("invalid image upload")
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		f.Image = &images.Image{Data: data, ContentType: contentType, Filename: header.Filename}
	}
	return f, nil
}

// validate checks f and returns the parsed price.
func (h *AdminHandler) validate(f *productForm, requireImage bool) (decimal.Decimal, error) {
	if f.Name == "" || f.Price == "" {
		return decimal.Zero, apperr.Validation("name and price are required")
	}
	price, err := decimal.NewFromString(f.Price)
	if err != nil || price.IsNegative() {
		return decimal.Zero, apperr.Validation("invalid price")
	}
	if price.Exponent() < -2 && !price.Equal(price.Round(2)) {
		return decimal.Zero, apperr.Validation("price must have at most 2 decimal places")
	}

	seen := map[models.Size]bool{}
	for i, s := range f.Sizes {
		size := models.Size(strings.ToUpper(strings.TrimSpace(string(s.Size))))
		if !size.Valid() {
			return decimal.Zero, apperr.Validation("invalid size %s", s.Size)
		}
		if s.Quantity < 0 {
			return decimal.Zero, apperr.Validation("quantity for size %s must not be negative", size)
		}
		if seen[size] {
			return decimal.Zero, apperr.Validation("duplicate size %s", size)
		}
		seen[size] = true
		f.Sizes[i].Size = size
	}

	if f.Image == nil {
		if requireImage {
			return decimal.Zero, apperr.Validation("image is required")
		}
		return price, nil
	}
	if err := images.Check(*f.Image, h.maxImageBytes()); err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

func (h *AdminHandler) putImage(ctx context.Context, img *images.Image) (string, error) {
	ref, err := h.Images.Put(ctx, *img)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return "", ae
		}
		return "", apperr.Internal(err, "error uploading image")
	}
	return ref, nil
}

// dropImage deletes ref and only logs failures; the catalog write it
// follows has already been decided.
func (h *AdminHandler) dropImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := h.Images.Delete(ctx, ref); err != nil {
		slog.Warn("Failed to delete image", "ref", truncateRef(ref), "error", err)
	}
}

func truncateRef(ref string) string {
	if len(ref) > 64 {
		return ref[:64] + "..."
	}
	return ref
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context(), false)
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error fetching products"))
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := h.parseProduct(w, r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	price, err := h.validate(f, true)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ref, err := h.putImage(ctx, f.Image)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p := &models.Product{
		Name:        f.Name,
		Description: f.Description,
		Price:       price,
		Image:       ref,
		Sizes:       f.Sizes,
		Bestseller:  f.Bestseller,
	}
	if err := h.Store.CreateProduct(ctx, p); err != nil {
		h.dropImage(context.WithoutCancel(ctx), ref)
		writeError(w, r, apperr.Internal(err, "error saving product"))
		return
	}

	created, err := h.Store.GetProduct(ctx, p.ID)
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error fetching product"))
		return
	}
	slog.Info("Product created", "product_id", created.ID, "name", created.Name)
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, apperr.NotFound("product not found"))
		return
	}
	existing, err := h.Store.GetProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, apperr.NotFound("product not found"))
		return
	}
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error fetching product"))
		return
	}

	f, err := h.parseProduct(w, r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	price, err := h.validate(f, false)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p := &models.Product{
		ID:          id,
		Name:        f.Name,
		Description: f.Description,
		Price:       price,
		Image:       existing.Image,
		Bestseller:  f.Bestseller,
	}
	// Nil sizes leave the stored stock rows untouched.
	if f.SizesSet {
		p.Sizes = f.Sizes
		if p.Sizes == nil {
			p.Sizes = []models.SizeStock{}
		}
	}

	newRef := ""
	if f.Image != nil {
		if newRef, err = h.putImage(ctx, f.Image); err != nil {
			writeError(w, r, err)
			return
		}
		p.Image = newRef
	}

	if err := h.Store.UpdateProduct(ctx, p); err != nil {
		h.dropImage(context.WithoutCancel(ctx), newRef)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, apperr.NotFound("product not found"))
			return
		}
		writeError(w, r, apperr.Internal(err, "error updating product"))
		return
	}
	if newRef != "" && newRef != existing.Image {
		h.dropImage(context.WithoutCancel(ctx), existing.Image)
	}

	updated, err := h.Store.GetProduct(ctx, id)
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error fetching product"))
		return
	}
	slog.Info("Product updated", "product_id", id, "image_replaced", newRef != "")
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, apperr.NotFound("product not found"))
		return
	}
	existing, err := h.Store.GetProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, apperr.NotFound("product not found"))
		return
	}
	if err != nil {
		writeError(w, r, apperr.Internal(err, "error fetching product"))
		return
	}

	if err := h.Store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, apperr.NotFound("product not found"))
			return
		}
		writeError(w, r, apperr.Internal(err, "error deleting product"))
		return
	}
	h.dropImage(context.WithoutCancel(ctx), existing.Image)

	slog.Info("Product deleted", "product_id", id)
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "product deleted"})
}
