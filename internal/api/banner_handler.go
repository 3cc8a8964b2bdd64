package api

import (
	"mime/multipart"
	"net/http"
	"time"

	"designghar-service/internal/domain"
	"designghar-service/internal/service"

	"go.uber.org/zap"
)

// BannerInput is shared by create and update. On create title and one of
// imageUrl or an image file are required.
type BannerInput struct {
	Title          *string    `json:"title" form:"title" validate:"omitempty,min=1,max=255"`
	ImageURL       *string    `json:"imageUrl" form:"imageUrl" validate:"omitempty,url"`
	MobileImageURL *string    `json:"mobileImageUrl" form:"mobileImageUrl" validate:"omitempty,url"`
	AltText        *string    `json:"altText" form:"altText" validate:"omitempty,max=255"`
	StartDate      *time.Time `json:"startDate" form:"startDate"`
	EndDate        *time.Time `json:"endDate" form:"endDate"`
	IsActive       *bool      `json:"isActive" form:"isActive"`
	Sequence       *int       `json:"sequence" form:"sequence" validate:"omitempty,gte=0"`
	RedirectURL    *string    `json:"redirectUrl" form:"redirectUrl"`
	Category       *string    `json:"category" form:"category"`
}

// uploadBannerImages uploads the optional image and mobileImage parts and
// stores their URLs on input.
func (h *HTTPHandler) uploadBannerImages(r *http.Request, input *BannerInput) error {
	var (
		headers []*multipart.FileHeader
		targets []**string
	)
	if fh := formFile(r, "image"); fh != nil {
		headers = append(headers, fh)
		targets = append(targets, &input.ImageURL)
	}
	if fh := formFile(r, "mobileImage"); fh != nil {
		headers = append(headers, fh)
		targets = append(targets, &input.MobileImageURL)
	}
	urls, err := h.uploadFiles(r, headers)
	if err != nil {
		return err
	}
	for i, u := range urls {
		*targets[i] = &u
	}
	return nil
}

// decodeBanner parses and validates a banner payload, then uploads any image
// files. Request checks run first so a rejected request uploads nothing.
func (h *HTTPHandler) decodeBanner(w http.ResponseWriter, r *http.Request, creating bool) (*BannerInput, bool) {
	var input BannerInput
	if _, ok := h.decodeInput(w, r, &input); !ok || !h.validateInput(w, input) {
		return nil, false
	}
	if creating && input.Title == nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: title is required")
		return nil, false
	}
	if input.StartDate != nil && input.StartDate.IsZero() {
		input.StartDate = nil
	}
	if input.EndDate != nil && input.EndDate.IsZero() {
		input.EndDate = nil
	}
	if err := h.uploadBannerImages(r, &input); err != nil {
		h.respondWithServiceError(w, r, err, "upload banner image")
		return nil, false
	}
	return &input, true
}

func (h *HTTPHandler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeBanner(w, r, true)
	if !ok {
		return
	}

	banner := &domain.Banner{
		Title:          *input.Title,
		MobileImageURL: input.MobileImageURL,
		EndDate:        input.EndDate,
		IsActive:       true,
		RedirectURL:    input.RedirectURL,
		Category:       input.Category,
	}
	if input.ImageURL != nil {
		banner.ImageURL = *input.ImageURL
	}
	if input.AltText != nil {
		banner.AltText = *input.AltText
	}
	if input.StartDate != nil {
		banner.StartDate = *input.StartDate
	}
	if input.IsActive != nil {
		banner.IsActive = *input.IsActive
	}
	if input.Sequence != nil {
		banner.Sequence = *input.Sequence
	}

	created, err := h.banners.Create(r.Context(), banner)
	if err != nil {
		h.respondWithServiceError(w, r, err, "create banner")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListBanners(w http.ResponseWriter, r *http.Request) {
	active, err := parseBoolParam(r.URL.Query(), "active")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	banners, err := h.banners.List(r.Context(), active != nil && *active)
	if err != nil {
		h.respondWithServiceError(w, r, err, "retrieve banners")
		return
	}
	if banners == nil {
		banners = []domain.Banner{}
	}
	respondWithJSON(w, http.StatusOK, banners)
}

func (h *HTTPHandler) GetBannerByID(w http.ResponseWriter, r *http.Request) {
	bannerID, ok := parseID(w, r, "bannerId")
	if !ok {
		return
	}

	banner, err := h.banners.Get(r.Context(), bannerID)
	if err != nil {
		h.respondWithServiceError(w, r, err, "retrieve banner", zap.String("banner_id", bannerID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusOK, banner)
}

func (h *HTTPHandler) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	bannerID, ok := parseID(w, r, "bannerId")
	if !ok {
		return
	}
	input, ok := h.decodeBanner(w, r, false)
	if !ok {
		return
	}

	updated, err := h.banners.Update(r.Context(), bannerID, service.BannerPatch{
		Title:          input.Title,
		ImageURL:       input.ImageURL,
		MobileImageURL: input.MobileImageURL,
		AltText:        input.AltText,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		IsActive:       input.IsActive,
		Sequence:       input.Sequence,
		RedirectURL:    input.RedirectURL,
		Category:       input.Category,
	})
	if err != nil {
		h.respondWithServiceError(w, r, err, "update banner", zap.String("banner_id", bannerID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	bannerID, ok := parseID(w, r, "bannerId")
	if !ok {
		return
	}

	if err := h.banners.Delete(r.Context(), bannerID); err != nil {
		h.respondWithServiceError(w, r, err, "delete banner", zap.String("banner_id", bannerID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) RecordBannerView(w http.ResponseWriter, r *http.Request) {
	bannerID, ok := parseID(w, r, "bannerId")
	if !ok {
		return
	}
	if err := h.banners.RecordView(r.Context(), bannerID); err != nil {
		h.respondWithServiceError(w, r, err, "record banner view", zap.String("banner_id", bannerID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) RecordBannerClick(w http.ResponseWriter, r *http.Request) {
	bannerID, ok := parseID(w, r, "bannerId")
	if !ok {
		return
	}
	if err := h.banners.RecordClick(r.Context(), bannerID); err != nil {
		h.respondWithServiceError(w, r, err, "record banner click", zap.String("banner_id", bannerID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
