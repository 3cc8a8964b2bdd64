package api

import (
	"net/http"
	"time"

	"designghar-service/internal/domain"
	"designghar-service/internal/service"

	"go.uber.org/zap"
)

// OfferCreateInput defines the expected input for creating an offer. The
// appliesTo variant rules are checked by domain.Offer.Validate.
type OfferCreateInput struct {
	Name          string     `json:"name" validate:"required,max=255"`
	DiscountType  string     `json:"discountType" validate:"required,oneof=percentage flat"`
	DiscountValue *float64   `json:"discountValue" validate:"required,gt=0"`
	AppliesTo     string     `json:"appliesTo" validate:"required,oneof=all category specific"`
	Category      *string    `json:"category"`
	ProductIDs    []string   `json:"productIds" validate:"omitempty,dive,mongodb"`
	StartDate     *time.Time `json:"startDate" validate:"required"`
	EndDate       *time.Time `json:"endDate" validate:"required"`
}

func (h *HTTPHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var input OfferCreateInput
	if _, ok := h.decodeInput(w, r, &input); !ok || !h.validateInput(w, input) {
		return
	}

	created, err := h.offers.Create(r.Context(), &domain.Offer{
		Name:          input.Name,
		DiscountType:  domain.DiscountType(input.DiscountType),
		DiscountValue: *input.DiscountValue,
		AppliesTo:     domain.OfferScope(input.AppliesTo),
		Category:      input.Category,
		ProductIDs:    input.ProductIDs,
		StartDate:     input.StartDate.UTC(),
		EndDate:       input.EndDate.UTC(),
	})
	if err != nil {
		h.respondWithServiceError(w, r, err, "create offer")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	active, err := parseBoolParam(r.URL.Query(), "active")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	offers, err := h.offers.List(r.Context(), active != nil && *active)
	if err != nil {
		h.respondWithServiceError(w, r, err, "retrieve offers")
		return
	}
	if offers == nil {
		offers = []domain.Offer{}
	}
	respondWithJSON(w, http.StatusOK, offers)
}

func (h *HTTPHandler) GetOfferByID(w http.ResponseWriter, r *http.Request) {
	offerID, ok := parseID(w, r, "offerId")
	if !ok {
		return
	}

	offer, err := h.offers.Get(r.Context(), offerID)
	if err != nil {
		h.respondWithServiceError(w, r, err, "retrieve offer", zap.String("offer_id", offerID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusOK, offer)
}

// OfferUpdateInput defines the expected input for a partial offer update.
type OfferUpdateInput struct {
	Name          *string    `json:"name" validate:"omitempty,min=1,max=255"`
	DiscountType  *string    `json:"discountType" validate:"omitempty,oneof=percentage flat"`
	DiscountValue *float64   `json:"discountValue" validate:"omitempty,gt=0"`
	AppliesTo     *string    `json:"appliesTo" validate:"omitempty,oneof=all category specific"`
	Category      *string    `json:"category"`
	ProductIDs    []string   `json:"productIds" validate:"omitempty,dive,mongodb"`
	StartDate     *time.Time `json:"startDate"`
	EndDate       *time.Time `json:"endDate"`
}

func (h *HTTPHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	offerID, ok := parseID(w, r, "offerId")
	if !ok {
		return
	}
	var input OfferUpdateInput
	if _, ok := h.decodeInput(w, r, &input); !ok || !h.validateInput(w, input) {
		return
	}

	patch := service.OfferPatch{
		Name:          input.Name,
		DiscountValue: input.DiscountValue,
		Category:      input.Category,
		ProductIDs:    input.ProductIDs,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
	}
	if input.DiscountType != nil {
		dt := domain.DiscountType(*input.DiscountType)
		patch.DiscountType = &dt
	}
	if input.AppliesTo != nil {
		scope := domain.OfferScope(*input.AppliesTo)
		patch.AppliesTo = &scope
	}

	updated, err := h.offers.Update(r.Context(), offerID, patch)
	if err != nil {
		h.respondWithServiceError(w, r, err, "update offer", zap.String("offer_id", offerID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	offerID, ok := parseID(w, r, "offerId")
	if !ok {
		return
	}

	if err := h.offers.Delete(r.Context(), offerID); err != nil {
		h.respondWithServiceError(w, r, err, "delete offer", zap.String("offer_id", offerID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
