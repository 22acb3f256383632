package transport

import (
	"context"
	"mime/multipart"
	"net/http"

	"storefront/internal/category"
	"storefront/internal/feedback"
	"storefront/internal/metrics"
	"storefront/internal/product"
	"storefront/internal/user"
	"storefront/internal/utils"

	"github.com/gorilla/mux"
)

// ImageStore persists uploaded product images.
type ImageStore interface {
	Save(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
	Remove(ctx context.Context, paths []string)
}

type Deps struct {
	Products   product.Service
	Categories category.Service
	Feedback   feedback.Service
	Users      user.Service
	Images     ImageStore
	Metrics    *metrics.Recorder

	// AssetsDir is served under /assets/.
	AssetsDir string
}

type Handler struct {
	products   product.Service
	categories category.Service
	feedback   feedback.Service
	users      user.Service
	images     ImageStore
	metrics    *metrics.Recorder
}

// NewRouter wires the REST API, static assets and health check.
func NewRouter(d Deps) *mux.Router {
	h := &Handler{
		products:   d.Products,
		categories: d.Categories,
		feedback:   d.Feedback,
		users:      d.Users,
		images:     d.Images,
		metrics:    d.Metrics,
	}

	router := mux.NewRouter()
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware)
	}

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", h.createProduct).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.updateProduct).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", h.deleteProduct).Methods(http.MethodDelete)

	api.HandleFunc("/categories", h.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.createCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", h.getCategory).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", h.updateCategory).Methods(http.MethodPut)
	api.HandleFunc("/categories/{id}", h.deleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/feedback/create", h.createFeedback).Methods(http.MethodPost)

	api.HandleFunc("/register/create", h.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)

	if d.AssetsDir != "" {
		router.PathPrefix("/assets/").Handler(
			http.StripPrefix("/assets/", http.FileServer(http.Dir(d.AssetsDir))),
		).Methods(http.MethodGet, http.MethodHead)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, "route not found", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return router
}
