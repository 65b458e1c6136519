package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/auth"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/images"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/orders"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/store"
)

type RouterConfig struct {
	Store         *store.Store
	Engine        *orders.Engine
	Auth          *auth.Authenticator
	Images        images.Store
	MaxImageBytes int64
	// UploadDir is served at /uploads/ when set.
	UploadDir   string
	CORSOrigins []string
}

// NewRouter wires every route and wraps them in the middleware chain:
// Logger -> Security Headers -> CORS -> Router.
func NewRouter(cfg RouterConfig) http.Handler {
	home := &HomeHandler{Store: cfg.Store}
	orderHandler := &OrderHandler{Store: cfg.Store, Engine: cfg.Engine}
	contact := &ContactHandler{Store: cfg.Store}
	admin := &AdminHandler{
		Store:         cfg.Store,
		Engine:        cfg.Engine,
		Auth:          cfg.Auth,
		Images:        cfg.Images,
		MaxImageBytes: cfg.MaxImageBytes,
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, apperr.NotFound("route not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, apiResponse{Success: false, Message: "method not allowed"})
	})

	r.HandleFunc("/", home.Health).Methods(http.MethodGet)
	if cfg.UploadDir != "" {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Public Routes
	api.HandleFunc("/products", home.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/bestsellers", home.Bestsellers).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", home.GetProduct).Methods(http.MethodGet)

	api.HandleFunc("/shipping/governorates", ListGovernorates).Methods(http.MethodGet)
	api.HandleFunc("/shipping/shipping-cost/{id}", ShippingCost).Methods(http.MethodGet)
	api.HandleFunc("/shipping/governorate/{id}", GetGovernorate).Methods(http.MethodGet)

	api.HandleFunc("/orders", orderHandler.CreateOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders", orderHandler.ListOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", orderHandler.GetOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", orderHandler.UpdateOrderStatus).Methods(http.MethodPatch)

	api.HandleFunc("/contact", contact.Submit).Methods(http.MethodPost)

	api.HandleFunc("/admin/login", admin.Login).Methods(http.MethodPost)

	// Protected Routes
	protected := api.PathPrefix("/admin").Subrouter()
	protected.Use(RequireAdmin(cfg.Auth))

	protected.HandleFunc("/products", admin.ListProducts).Methods(http.MethodGet)
	protected.HandleFunc("/products", admin.CreateProduct).Methods(http.MethodPost)
	protected.HandleFunc("/products/{id}", admin.UpdateProduct).Methods(http.MethodPut)
	protected.HandleFunc("/products/{id}", admin.DeleteProduct).Methods(http.MethodDelete)

	protected.HandleFunc("/orders", admin.ListOrders).Methods(http.MethodGet)
	protected.HandleFunc("/orders/{id}", admin.UpdateOrderStatus).Methods(http.MethodPatch)

	protected.HandleFunc("/stats", admin.Stats).Methods(http.MethodGet)

	protected.HandleFunc("/messages", admin.ListMessages).Methods(http.MethodGet)
	protected.HandleFunc("/messages/stats", admin.MessageStats).Methods(http.MethodGet)
	protected.HandleFunc("/messages/{id}", admin.GetMessage).Methods(http.MethodGet)
	protected.HandleFunc("/messages/{id}", admin.UpdateMessageStatus).Methods(http.MethodPatch)
	protected.HandleFunc("/messages/{id}", admin.DeleteMessage).Methods(http.MethodDelete)

	return LoggingMiddleware(
		SecurityHeadersMiddleware(
			CORSMiddleware(cfg.CORSOrigins)(r),
		),
	)
}
