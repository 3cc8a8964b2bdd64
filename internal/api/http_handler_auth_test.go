package api

import (
	"context"
	"net/http"
	"testing"

	"designghar-service/internal/auth"
	"designghar-service/internal/domain"
	"designghar-service/internal/service"
	"designghar-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHTTPHandler_Login(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	user := &domain.User{
		ID:           primitive.NewObjectID(),
		Name:         "Ravi",
		Email:        "ravi@designghar.test",
		PasswordHash: hash,
		Role:         domain.RoleManager,
	}

	t.Run("Success", func(t *testing.T) {
		env := setupTestChiServer(t)
		env.users.On("GetUserByEmail", mock.Anything, "ravi@designghar.test").Return(user, nil).Once()

		res := env.do(t, http.MethodPost, "/auth/login", LoginInput{Email: "ravi@designghar.test", Password: "s3cret-pass"}, "")
		require.Equal(t, http.StatusOK, res.StatusCode)

		result := decodeBody[service.LoginResult](t, res)
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, user.ID.Hex(), result.User.UserID)
		assert.Equal(t, domain.RoleManager, result.User.Role)

		claims, err := env.jwt.Parse(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), claims.Subject)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		env := setupTestChiServer(t)
		env.users.On("GetUserByEmail", mock.Anything, "ravi@designghar.test").Return(user, nil).Once()

		res := env.do(t, http.MethodPost, "/auth/login", LoginInput{Email: "ravi@designghar.test", Password: "guess"}, "")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "Invalid credentials", decodeBody[ErrorResponse](t, res).Error)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		env := setupTestChiServer(t)
		env.users.On("GetUserByEmail", mock.Anything, "nobody@designghar.test").Return(nil, store.ErrUserNotFound).Once()

		res := env.do(t, http.MethodPost, "/auth/login", LoginInput{Email: "nobody@designghar.test", Password: "s3cret-pass"}, "")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "Invalid credentials", decodeBody[ErrorResponse](t, res).Error)
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		env := setupTestChiServer(t)

		res := env.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "not-an-email"}, "")
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		env.users.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
	})
}

func TestHTTPHandler_Me(t *testing.T) {
	env := setupTestChiServer(t)

	res := env.do(t, http.MethodGet, "/auth/me", nil, env.token(t, domain.RoleManager))
	require.Equal(t, http.StatusOK, res.StatusCode)
	id := decodeBody[auth.Identity](t, res)
	assert.Equal(t, "tester@designghar.test", id.Email)
	assert.Equal(t, domain.RoleManager, id.Role)

	res = env.do(t, http.MethodGet, "/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "Missing bearer token", decodeBody[ErrorResponse](t, res).Error)
}

func TestHTTPHandler_Register(t *testing.T) {
	input := RegisterInput{Name: "Asha", Email: "Asha@DesignGhar.test", Password: "long-enough", Role: "manager"}

	t.Run("Success", func(t *testing.T) {
		env := setupTestChiServer(t)
		env.users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.PasswordHash != "" && u.PasswordHash != "long-enough" && u.Role == domain.RoleManager
		})).Return(func(_ context.Context, u *domain.User) (*domain.User, error) {
			out := *u
			out.ID = primitive.NewObjectID()
			return &out, nil
		}).Once()

		res := env.do(t, http.MethodPost, "/auth/register", input, env.token(t, domain.RoleAdmin))
		require.Equal(t, http.StatusCreated, res.StatusCode)

		body := decodeBody[map[string]any](t, res)
		assert.Equal(t, "Asha", body["name"])
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "passwordHash")
		env.users.AssertExpectations(t)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		env := setupTestChiServer(t)
		env.users.On("CreateUser", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil, store.ErrUserEmailExists).Once()

		res := env.do(t, http.MethodPost, "/auth/register", input, env.token(t, domain.RoleAdmin))
		assert.Equal(t, http.StatusConflict, res.StatusCode)
		assert.Equal(t, "Email already registered: asha@designghar.test", decodeBody[ErrorResponse](t, res).Error)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		env := setupTestChiServer(t)
		short := input
		short.Password = "short"

		res := env.do(t, http.MethodPost, "/auth/register", short, env.token(t, domain.RoleAdmin))
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		env.users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("ManagerForbidden", func(t *testing.T) {
		env := setupTestChiServer(t)

		res := env.do(t, http.MethodPost, "/auth/register", input, env.token(t, domain.RoleManager))
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})
}

func TestHTTPHandler_Users(t *testing.T) {
	env := setupTestChiServer(t)
	known := domain.User{ID: primitive.NewObjectID(), Name: "Ravi", Email: "ravi@designghar.test", Role: domain.RoleAdmin}
	missing := primitive.NewObjectID()

	env.users.On("ListUsers", mock.Anything).Return(nil, nil).Once()
	env.users.On("GetUserByID", mock.Anything, known.ID).Return(&known, nil).Once()
	env.users.On("GetUserByID", mock.Anything, missing).Return(nil, store.ErrUserNotFound).Once()

	res := env.do(t, http.MethodGet, "/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	token := env.token(t, domain.RoleManager)
	res = env.do(t, http.MethodGet, "/users", nil, token)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, decodeBody[[]domain.User](t, res))

	res = env.do(t, http.MethodGet, "/users/"+known.ID.Hex(), nil, token)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ravi@designghar.test", decodeBody[domain.User](t, res).Email)

	res = env.do(t, http.MethodGet, "/users/"+missing.Hex(), nil, token)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	env.users.AssertExpectations(t)
}
