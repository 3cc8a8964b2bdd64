package api

import (
	"net/http"

	"designghar-service/internal/domain"
	"designghar-service/internal/service"
	"designghar-service/internal/store"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProductListResponse is one page of products.
type ProductListResponse struct {
	Data  []domain.Product `json:"data"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int              `json:"total"`
}

func newProductListResponse(page *service.ProductPage, p pagination) ProductListResponse {
	data := page.Products
	if data == nil {
		data = []domain.Product{}
	}
	return ProductListResponse{Data: data, Page: p.Page, Limit: p.Limit, Total: page.Total}
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params, page, err := parseProductListQuery(r.URL.Query())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.products.List(r.Context(), params)
	if err != nil {
		h.respondWithServiceError(w, r, err, "retrieve products")
		return
	}
	respondWithJSON(w, http.StatusOK, newProductListResponse(result, page))
}

func (h *HTTPHandler) ListFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	page, err := parsePagination(r.URL.Query())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.products.Featured(r.Context(), page.Limit, page.offset())
	if err != nil {
		h.respondWithServiceError(w, r, err, "retrieve featured products")
		return
	}
	respondWithJSON(w, http.StatusOK, newProductListResponse(result, page))
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productId")
	if !ok {
		return
	}

	product, err := h.products.Get(r.Context(), productID)
	if err != nil {
		h.respondWithServiceError(w, r, err, "retrieve product", zap.String("product_id", productID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) GetProductBySKU(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	product, err := h.products.GetBySKU(r.Context(), sku)
	if err != nil {
		h.respondWithServiceError(w, r, err, "retrieve product", zap.String("sku", sku))
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) IncrementProductView(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productId")
	if !ok {
		return
	}
	if err := h.products.IncrementView(r.Context(), productID); err != nil {
		h.respondWithServiceError(w, r, err, "record product view", zap.String("product_id", productID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// ProductCreateInput defines the expected input for creating or replacing a
// product. finalPrice is accepted for compatibility and always recomputed.
type ProductCreateInput struct {
	Name               string   `json:"name" form:"name" validate:"required,max=255"`
	SKU                string   `json:"sku" form:"sku" validate:"required,max=100"`
	Description        string   `json:"description" form:"description" validate:"required"`
	Features           *string  `json:"features" form:"features"`
	CategoryID         string   `json:"categoryId" form:"categoryId" validate:"required,mongodb"`
	CategoryName       *string  `json:"categoryName" form:"categoryName"`
	MediaURLs          []string `json:"mediaURLs" form:"mediaURLs" validate:"omitempty,dive,url"`
	BasePrice          *float64 `json:"basePrice" form:"basePrice" validate:"required,gte=0"`
	DiscountPercentage *float64 `json:"discountPercentage" form:"discountPercentage" validate:"omitempty,gte=0,lte=100"`
	FinalPrice         *float64 `json:"finalPrice" form:"finalPrice"`
	IsActive           *bool    `json:"isActive" form:"isActive"`
	IsFeatured         *bool    `json:"isFeatured" form:"isFeatured"`
	Tags               []string `json:"tags" form:"tags" validate:"omitempty,dive,required"`
}

func (in *ProductCreateInput) toProduct() *domain.Product {
	p := &domain.Product{
		Name:               in.Name,
		SKU:                in.SKU,
		Description:        in.Description,
		Features:           in.Features,
		CategoryID:         in.CategoryID,
		CategoryName:       in.CategoryName,
		MediaURLs:          in.MediaURLs,
		BasePrice:          *in.BasePrice,
		DiscountPercentage: in.DiscountPercentage,
		IsActive:           true,
		Tags:               in.Tags,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	return p
}

// decodeProductCreate reads, validates and uploads a full product payload.
// self is the product being replaced, nil on create.
func (h *HTTPHandler) decodeProductCreate(w http.ResponseWriter, r *http.Request, self *primitive.ObjectID) (*domain.Product, bool) {
	var input ProductCreateInput
	files, ok := h.decodeInput(w, r, &input, "files")
	if !ok {
		return nil, false
	}
	input.Tags = splitList(input.Tags)
	if !h.validateInput(w, input) {
		return nil, false
	}
	if len(files) > 0 && !h.checkSKUBeforeUpload(w, r, input.SKU, self) {
		return nil, false
	}

	product := input.toProduct()
	urls, err := h.uploadFiles(r, files)
	if err != nil {
		h.respondWithServiceError(w, r, err, "upload product images", zap.String("sku", input.SKU))
		return nil, false
	}
	if len(urls) > 0 {
		product.MediaURLs = append(product.MediaURLs, urls...)
	}
	return product, true
}

// checkSKUBeforeUpload rejects a taken SKU so a doomed request uploads nothing.
func (h *HTTPHandler) checkSKUBeforeUpload(w http.ResponseWriter, r *http.Request, sku string, self *primitive.ObjectID) bool {
	if err := h.products.CheckSKU(r.Context(), sku, self); err != nil {
		h.respondWithServiceError(w, r, err, "check product sku", zap.String("sku", sku))
		return false
	}
	return true
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.decodeProductCreate(w, r, nil)
	if !ok {
		return
	}

	created, err := h.products.Create(r.Context(), product)
	if err != nil {
		h.respondWithServiceError(w, r, err, "create product", zap.String("sku", product.SKU))
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ReplaceProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productId")
	if !ok {
		return
	}
	product, ok := h.decodeProductCreate(w, r, &productID)
	if !ok {
		return
	}

	updated, err := h.products.Replace(r.Context(), productID, product)
	if err != nil {
		h.respondWithServiceError(w, r, err, "update product", zap.String("product_id", productID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// ProductUpdateInput defines the expected input for a partial product update.
// Omitted fields keep their stored value.
type ProductUpdateInput struct {
	Name               *string  `json:"name" form:"name" validate:"omitempty,min=1,max=255"`
	SKU                *string  `json:"sku" form:"sku" validate:"omitempty,min=1,max=100"`
	Description        *string  `json:"description" form:"description"`
	Features           *string  `json:"features" form:"features"`
	CategoryID         *string  `json:"categoryId" form:"categoryId" validate:"omitempty,mongodb"`
	CategoryName       *string  `json:"categoryName" form:"categoryName"`
	MediaURLs          []string `json:"mediaURLs" form:"mediaURLs" validate:"omitempty,dive,url"`
	BasePrice          *float64 `json:"basePrice" form:"basePrice" validate:"omitempty,gte=0"`
	DiscountPercentage *float64 `json:"discountPercentage" form:"discountPercentage" validate:"omitempty,gte=0,lte=100"`
	FinalPrice         *float64 `json:"finalPrice" form:"finalPrice"`
	IsActive           *bool    `json:"isActive" form:"isActive"`
	IsFeatured         *bool    `json:"isFeatured" form:"isFeatured"`
	Tags               []string `json:"tags" form:"tags" validate:"omitempty,dive,required"`
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productId")
	if !ok {
		return
	}

	var input ProductUpdateInput
	files, ok := h.decodeInput(w, r, &input, "files")
	if !ok {
		return
	}
	input.Tags = splitList(input.Tags)
	if !h.validateInput(w, input) {
		return
	}

	patch := service.ProductPatch{
		Name:               input.Name,
		SKU:                input.SKU,
		Description:        input.Description,
		Features:           input.Features,
		CategoryID:         input.CategoryID,
		CategoryName:       input.CategoryName,
		MediaURLs:          input.MediaURLs,
		BasePrice:          input.BasePrice,
		DiscountPercentage: input.DiscountPercentage,
		IsActive:           input.IsActive,
		IsFeatured:         input.IsFeatured,
		Tags:               input.Tags,
	}

	if len(files) > 0 && input.SKU != nil && !h.checkSKUBeforeUpload(w, r, *input.SKU, &productID) {
		return
	}

	// Uploaded files replace the stored media list.
	urls, err := h.uploadFiles(r, files)
	if err != nil {
		h.respondWithServiceError(w, r, err, "upload product images", zap.String("product_id", productID.Hex()))
		return
	}
	if len(urls) > 0 {
		patch.MediaURLs = urls
	}

	updated, err := h.products.Update(r.Context(), productID, patch)
	if err != nil {
		h.respondWithServiceError(w, r, err, "update product", zap.String("product_id", productID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productId")
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), productID); err != nil {
		h.respondWithServiceError(w, r, err, "delete product", zap.String("product_id", productID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

type ActivateInput struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type FeatureInput struct {
	IsFeatured *bool `json:"isFeatured" validate:"required"`
}

func (h *HTTPHandler) ActivateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productId")
	if !ok {
		return
	}
	var input ActivateInput
	if _, ok := h.decodeInput(w, r, &input); !ok || !h.validateInput(w, input) {
		return
	}

	product, err := h.products.SetActive(r.Context(), productID, *input.IsActive)
	if err != nil {
		h.respondWithServiceError(w, r, err, "update product status", zap.String("product_id", productID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) FeatureProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productId")
	if !ok {
		return
	}
	var input FeatureInput
	if _, ok := h.decodeInput(w, r, &input); !ok || !h.validateInput(w, input) {
		return
	}

	product, err := h.products.SetFeatured(r.Context(), productID, *input.IsFeatured)
	if err != nil {
		h.respondWithServiceError(w, r, err, "update product status", zap.String("product_id", productID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

// BulkStatusInput applies the given flags to every listed product.
type BulkStatusInput struct {
	IDs        []string `json:"ids" validate:"required,min=1"`
	IsActive   *bool    `json:"isActive"`
	IsFeatured *bool    `json:"isFeatured"`
}

type BulkStatusResponse struct {
	Modified int              `json:"modified"`
	Products []domain.Product `json:"products"`
}

func (h *HTTPHandler) BulkProductStatus(w http.ResponseWriter, r *http.Request) {
	var input BulkStatusInput
	if _, ok := h.decodeInput(w, r, &input); !ok || !h.validateInput(w, input) {
		return
	}
	ids, err := parseIDs(input.IDs)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	modified, products, err := h.products.BulkStatus(r.Context(), ids, store.ProductFlags{
		IsActive:   input.IsActive,
		IsFeatured: input.IsFeatured,
	})
	if err != nil {
		h.respondWithServiceError(w, r, err, "update product status", zap.Int("count", len(ids)))
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondWithJSON(w, http.StatusOK, BulkStatusResponse{Modified: modified, Products: products})
}
