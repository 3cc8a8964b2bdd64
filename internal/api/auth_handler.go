package api

import (
	"net/http"

	"designghar-service/internal/auth"
	"designghar-service/internal/domain"
	"designghar-service/internal/service"

	"go.uber.org/zap"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input LoginInput
	if _, ok := h.decodeInput(w, r, &input); !ok || !h.validateInput(w, input) {
		return
	}

	result, err := h.auth.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		h.respondWithServiceError(w, r, err, "log in")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin manager"`
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input RegisterInput
	if _, ok := h.decodeInput(w, r, &input); !ok || !h.validateInput(w, input) {
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     domain.Role(input.Role),
	})
	if err != nil {
		h.respondWithServiceError(w, r, err, "register user")
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

// Me returns the identity carried by the caller's token.
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Missing bearer token")
		return
	}
	respondWithJSON(w, http.StatusOK, id)
}

func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, err, "retrieve users")
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	respondWithJSON(w, http.StatusOK, users)
}

func (h *HTTPHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "userId")
	if !ok {
		return
	}

	user, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		h.respondWithServiceError(w, r, err, "retrieve user", zap.String("user_id", userID.Hex()))
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}
