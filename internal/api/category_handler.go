package api

import (
	"net/http"

	"designghar-service/internal/domain"
	"designghar-service/internal/service"
	"designghar-service/internal/store"

	"go.uber.org/zap"
)

// CategoryCreateInput defines the expected input for creating a category.
type CategoryCreateInput struct {
	Name        string   `json:"name" form:"name" validate:"required,max=255"`
	SKU         string   `json:"sku" form:"sku" validate:"required,max=100"`
	Description *string  `json:"description" form:"description"`
	ImageURL    *string  `json:"imageUrl" form:"imageUrl" validate:"omitempty,url"`
	IsActive    *bool    `json:"isActive" form:"isActive"`
	Sequence    *int     `json:"sequence" form:"sequence" validate:"required,gte=0"`
	Tags        []string `json:"tags" form:"tags" validate:"omitempty,dive,required"`
}

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input CategoryCreateInput
	files, ok := h.decodeInput(w, r, &input, "image")
	if !ok {
		return
	}
	input.Tags = splitList(input.Tags)
	if !h.validateInput(w, input) {
		return
	}

	category := &domain.Category{
		Name:        input.Name,
		SKU:         input.SKU,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		IsActive:    true,
		Sequence:    *input.Sequence,
		Tags:        input.Tags,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	urls, err := h.uploadFiles(r, firstFile(files))
	if err != nil {
		h.respondWithServiceError(w, r, err, "upload category image", zap.String("sku", input.SKU))
		return
	}
	if len(urls) > 0 {
		category.ImageURL = &urls[0]
	}

	createdCategory, err := h.categories.Create(r.Context(), category)
	if err != nil {
		h.respondWithServiceError(w, r, err, "create category", zap.String("sku", input.SKU))
		return
	}
	respondWithJSON(w, http.StatusCreated, createdCategory)
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	isActive, err := parseBoolParam(r.URL.Query(), "isActive")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories, err := h.categories.List(r.Context(), store.ListCategoriesParams{IsActive: isActive})
	if err != nil {
		h.respondWithServiceError(w, r, err, "retrieve categories")
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	respondWithJSON(w, http.StatusOK, categories)
}

func (h *HTTPHandler) GetCategoryByID(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseID(w, r, "categoryId")
	if !ok {
		return
	}

	category, err := h.categories.Get(r.Context(), categoryID)
	if err != nil {
		h.respondWithServiceError(w, r, err, "retrieve category", zap.String("category_id", categoryID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

// CategoryUpdateInput defines the expected input for updating a category.
// Omitted fields keep their stored value.
type CategoryUpdateInput struct {
	Name        *string  `json:"name" form:"name" validate:"omitempty,min=1,max=255"`
	SKU         *string  `json:"sku" form:"sku" validate:"omitempty,min=1,max=100"`
	Description *string  `json:"description" form:"description"`
	ImageURL    *string  `json:"imageUrl" form:"imageUrl" validate:"omitempty,url"`
	IsActive    *bool    `json:"isActive" form:"isActive"`
	Sequence    *int     `json:"sequence" form:"sequence" validate:"omitempty,gte=0"`
	Tags        []string `json:"tags" form:"tags" validate:"omitempty,dive,required"`
}

func (h *HTTPHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseID(w, r, "categoryId")
	if !ok {
		return
	}

	var input CategoryUpdateInput
	files, ok := h.decodeInput(w, r, &input, "image")
	if !ok {
		return
	}
	input.Tags = splitList(input.Tags)
	if !h.validateInput(w, input) {
		return
	}

	urls, err := h.uploadFiles(r, firstFile(files))
	if err != nil {
		h.respondWithServiceError(w, r, err, "upload category image", zap.String("category_id", categoryID.Hex()))
		return
	}
	if len(urls) > 0 {
		input.ImageURL = &urls[0]
	}

	updatedCategory, err := h.categories.Update(r.Context(), categoryID, service.CategoryPatch{
		Name:        input.Name,
		SKU:         input.SKU,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		IsActive:    input.IsActive,
		Sequence:    input.Sequence,
		Tags:        input.Tags,
	})
	if err != nil {
		h.respondWithServiceError(w, r, err, "update category", zap.String("category_id", categoryID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusOK, updatedCategory)
}

func (h *HTTPHandler) ActivateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseID(w, r, "categoryId")
	if !ok {
		return
	}
	var input ActivateInput
	if _, ok := h.decodeInput(w, r, &input); !ok || !h.validateInput(w, input) {
		return
	}

	category, err := h.categories.SetActive(r.Context(), categoryID, *input.IsActive)
	if err != nil {
		h.respondWithServiceError(w, r, err, "update category status", zap.String("category_id", categoryID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (h *HTTPHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseID(w, r, "categoryId")
	if !ok {
		return
	}

	if err := h.categories.Delete(r.Context(), categoryID); err != nil {
		h.respondWithServiceError(w, r, err, "delete category", zap.String("category_id", categoryID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
