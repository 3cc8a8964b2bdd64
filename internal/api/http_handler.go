package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"designghar-service/internal/auth"
	"designghar-service/internal/domain"
	"designghar-service/internal/service"
	"designghar-service/internal/store"
	"designghar-service/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes = 32 << 20

// Deps are the collaborators of HTTPHandler.
type Deps struct {
	Products       *service.ProductService
	Categories     *service.CategoryService
	Banners        *service.BannerService
	Offers         *service.OfferService
	Auth           *service.AuthService
	JWT            *auth.JWTManager
	Uploader       upload.Uploader
	Logger         *zap.Logger
	MaxUploadBytes int64
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	products       *service.ProductService
	categories     *service.CategoryService
	banners        *service.BannerService
	offers         *service.OfferService
	auth           *service.AuthService
	jwt            *auth.JWTManager
	uploader       upload.Uploader
	logger         *zap.Logger
	validate       *validator.Validate
	forms          *form.Decoder
	maxUploadBytes int64
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(d Deps) *HTTPHandler {
	if d.Uploader == nil {
		d.Uploader = upload.Disabled{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &HTTPHandler{
		products:       d.Products,
		categories:     d.Categories,
		banners:        d.Banners,
		offers:         d.Offers,
		auth:           d.Auth,
		jwt:            d.JWT,
		uploader:       d.Uploader,
		logger:         d.Logger,
		validate:       validator.New(),
		forms:          newFormDecoder(),
		maxUploadBytes: d.MaxUploadBytes,
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	if payload == nil {
		w.WriteHeader(code)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already written; nothing useful can be sent to the client.
		zap.L().Error("failed to encode json response", zap.Error(err))
	}
}

var notFoundErrors = []error{
	store.ErrProductNotFound,
	store.ErrCategoryNotFound,
	store.ErrBannerNotFound,
	store.ErrOfferNotFound,
	store.ErrUserNotFound,
}

// respondWithServiceError maps an error returned by a service to a status.
// action completes the generic 500 message, e.g. "create product".
func (h *HTTPHandler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, action string, fields ...zap.Field) {
	var verr *service.ValidationError
	var conflict *service.ConflictError
	switch {
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &conflict):
		respondWithError(w, http.StatusConflict, conflict.Message)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, upload.ErrUploadFailed):
		h.logger.Warn(action+" failed", append(fields, zap.Error(err))...)
		respondWithError(w, http.StatusBadGateway, "Image upload failed")
	default:
		for _, nf := range notFoundErrors {
			if errors.Is(err, nf) {
				respondWithError(w, http.StatusNotFound, nf.Error())
				return
			}
		}
		h.logger.Error(action+" failed", append(fields,
			zap.Error(err),
			zap.String("path", r.URL.Path),
		)...)
		respondWithError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

// parseID reads the ObjectID path parameter name.
func parseID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id: "+raw)
		return primitive.NilObjectID, false
	}
	return id, true
}

func parseIDs(raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("Invalid id: %s", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newFormDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetTagName("form")
	d.RegisterCustomTypeFunc(func(vals []string) (interface{}, error) {
		if vals[0] == "" {
			return time.Time{}, nil
		}
		return time.Parse(time.RFC3339, vals[0])
	}, time.Time{})
	return d
}

// decodeInput fills dst from a JSON body or, for multipart requests, from the
// form fields. File parts named fileFields are returned in order.
func (h *HTTPHandler) decodeInput(w http.ResponseWriter, r *http.Request, dst any, fileFields ...string) ([]*multipart.FileHeader, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
			return nil, false
		}
		if err := h.forms.Decode(dst, r.MultipartForm.Value); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return nil, false
		}
		var files []*multipart.FileHeader
		for _, name := range fileFields {
			files = append(files, r.MultipartForm.File[name]...)
			files = append(files, r.MultipartForm.File[name+"[]"]...)
		}
		return files, true
	}

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return nil, false
	}
	return nil, true
}

func (h *HTTPHandler) validateInput(w http.ResponseWriter, input any) bool {
	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// uploadFiles stores every file with the uploader and returns their URLs in
// the order given.
func (h *HTTPHandler) uploadFiles(r *http.Request, headers []*multipart.FileHeader) ([]string, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	files := make([]upload.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", upload.ErrUploadFailed, fh.Filename, err)
		}
		defer f.Close()
		files = append(files, upload.File{Name: fh.Filename, Reader: f})
	}
	return upload.All(r.Context(), h.uploader, files)
}

func firstFile(files []*multipart.FileHeader) []*multipart.FileHeader {
	if len(files) > 1 {
		return files[:1]
	}
	return files
}

// formFile returns the first file part called name, or nil for JSON requests
// and forms without it.
func formFile(r *http.Request, name string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	if files := r.MultipartForm.File[name]; len(files) > 0 {
		return files[0]
	}
	return nil
}

// splitList flattens repeated and comma-separated values and trims each element.
func splitList(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			out = append(out, strings.TrimSpace(part))
		}
	}
	return out
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	requireAuth := auth.Authenticate(h.jwt)
	adminOnly := auth.RequireRole(domain.RoleAdmin)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		// Static segments must be registered before {productId}.
		r.Get("/featured", h.ListFeaturedProducts)
		r.Get("/sku/{sku}", h.GetProductBySKU)
		r.Get("/{productId}", h.GetProductByID)
		r.Patch("/{productId}/view", h.IncrementProductView)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, adminOnly)
			r.Post("/", h.CreateProduct)
			r.Post("/bulk-status", h.BulkProductStatus)
			r.Put("/{productId}", h.ReplaceProduct)
			r.Patch("/{productId}", h.UpdateProduct)
			r.Delete("/{productId}", h.DeleteProduct)
			r.Patch("/{productId}/activate", h.ActivateProduct)
			r.Patch("/{productId}/feature", h.FeatureProduct)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Get("/{categoryId}", h.GetCategoryByID)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, adminOnly)
			r.Post("/", h.CreateCategory)
			r.Patch("/{categoryId}", h.UpdateCategory)
			r.Patch("/{categoryId}/activate", h.ActivateCategory)
			r.Delete("/{categoryId}", h.DeleteCategory)
		})
	})

	r.Route("/banners", func(r chi.Router) {
		r.Get("/", h.ListBanners)
		r.Get("/{bannerId}", h.GetBannerByID)
		r.Patch("/{bannerId}/view", h.RecordBannerView)
		r.Patch("/{bannerId}/click", h.RecordBannerClick)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, adminOnly)
			r.Post("/", h.CreateBanner)
			r.Patch("/{bannerId}", h.UpdateBanner)
			r.Delete("/{bannerId}", h.DeleteBanner)
		})
	})

	r.Route("/offers", func(r chi.Router) {
		r.Get("/", h.ListOffers)
		r.Get("/{offerId}", h.GetOfferByID)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, adminOnly)
			r.Post("/", h.CreateOffer)
			r.Patch("/{offerId}", h.UpdateOffer)
			r.Delete("/{offerId}", h.DeleteOffer)
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.With(requireAuth).Get("/me", h.Me)
		r.With(requireAuth).Post("/me", h.Me)
		r.With(requireAuth, adminOnly).Post("/register", h.Register)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", h.ListUsers)
		r.Get("/{userId}", h.GetUserByID)
	})
}
