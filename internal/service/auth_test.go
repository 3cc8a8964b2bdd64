package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"designghar-service/internal/auth"
	"designghar-service/internal/domain"
	"designghar-service/internal/store"
	"designghar-service/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newAuthService(us store.UserStorer) (*AuthService, *auth.JWTManager) {
	jwtMgr := auth.NewJWTManager(auth.JWTConfig{Issuer: "designghar-test", Secret: "test-secret", TTL: time.Hour})
	return NewAuthService(us, jwtMgr, zap.NewNop()), jwtMgr
}

func storedUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &domain.User{
		ID:           primitive.NewObjectID(),
		Name:         "Asha",
		Email:        "asha@designghar.test",
		PasswordHash: hash,
		Role:         domain.RoleManager,
	}
}

func TestAuthService_Login(t *testing.T) {
	us := new(storetest.MockUserStorer)
	svc, jwtMgr := newAuthService(us)
	user := storedUser(t, "s3cret-pass")

	us.On("GetUserByEmail", mock.Anything, "asha@designghar.test").Return(user, nil)
	us.On("GetUserByEmail", mock.Anything, "nobody@designghar.test").Return(nil, store.ErrUserNotFound)

	t.Run("valid credentials", func(t *testing.T) {
		res, err := svc.Login(context.Background(), "asha@designghar.test", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), res.User.UserID)
		assert.Equal(t, domain.RoleManager, res.User.Role)

		claims, err := jwtMgr.Parse(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), claims.Subject)
		assert.Equal(t, domain.RoleManager, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "asha@designghar.test", "guess")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email is indistinguishable", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@designghar.test", "s3cret-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email still pays for a hash comparison", func(t *testing.T) {
		var hashes []string
		orig := comparePassword
		comparePassword = func(hash, plain string) bool {
			hashes = append(hashes, hash)
			return orig(hash, plain)
		}
		t.Cleanup(func() { comparePassword = orig })

		_, err := svc.Login(context.Background(), "nobody@designghar.test", "s3cret-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, []string{auth.DecoyHash()}, hashes)

		_, err = svc.Login(context.Background(), "asha@designghar.test", "guess")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, []string{auth.DecoyHash(), user.PasswordHash}, hashes)
	})
}

func TestAuthService_Register(t *testing.T) {
	t.Run("rejects unknown role", func(t *testing.T) {
		us := new(storetest.MockUserStorer)
		svc, _ := newAuthService(us)

		_, err := svc.Register(context.Background(), RegisterInput{Name: "X", Email: "x@y.z", Password: "password1", Role: "owner"})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		us.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("hashes the password", func(t *testing.T) {
		us := new(storetest.MockUserStorer)
		svc, _ := newAuthService(us)
		us.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.PasswordHash != "password1" && auth.CheckPassword(u.PasswordHash, "password1")
		})).Return(func(_ context.Context, u *domain.User) (*domain.User, error) {
			out := *u
			out.ID = primitive.NewObjectID()
			return &out, nil
		}).Once()

		user, err := svc.Register(context.Background(), RegisterInput{Name: " Ravi ", Email: "Ravi@DesignGhar.test", Password: "password1", Role: domain.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, "Ravi", user.Name)
		us.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		us := new(storetest.MockUserStorer)
		svc, _ := newAuthService(us)
		us.On("CreateUser", mock.Anything, mock.Anything).Return(nil, store.ErrUserEmailExists).Once()

		_, err := svc.Register(context.Background(), RegisterInput{Name: "R", Email: "Ravi@DesignGhar.test", Password: "password1", Role: domain.RoleAdmin})
		var conflict *ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, "Email already registered: ravi@designghar.test", conflict.Message)
	})
}

func TestAuthService_SeedRootAdmin(t *testing.T) {
	t.Run("skips without credentials", func(t *testing.T) {
		us := new(storetest.MockUserStorer)
		svc, _ := newAuthService(us)

		require.NoError(t, svc.SeedRootAdmin(context.Background(), "", ""))
		us.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
	})

	t.Run("keeps an existing admin", func(t *testing.T) {
		us := new(storetest.MockUserStorer)
		svc, _ := newAuthService(us)
		admin := storedUser(t, "whatever1")
		admin.Role = domain.RoleAdmin
		us.On("GetUserByEmail", mock.Anything, "root@designghar.test").Return(admin, nil).Once()

		require.NoError(t, svc.SeedRootAdmin(context.Background(), "root@designghar.test", "changeme"))
		us.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("creates a missing admin", func(t *testing.T) {
		us := new(storetest.MockUserStorer)
		svc, _ := newAuthService(us)
		us.On("GetUserByEmail", mock.Anything, "root@designghar.test").Return(nil, store.ErrUserNotFound).Once()
		us.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Role == domain.RoleAdmin && u.Email == "root@designghar.test"
		})).Return(&domain.User{ID: primitive.NewObjectID(), Email: "root@designghar.test", Role: domain.RoleAdmin}, nil).Once()

		require.NoError(t, svc.SeedRootAdmin(context.Background(), "root@designghar.test", "changeme"))
		us.AssertExpectations(t)
	})

	t.Run("lost race is not an error", func(t *testing.T) {
		us := new(storetest.MockUserStorer)
		svc, _ := newAuthService(us)
		us.On("GetUserByEmail", mock.Anything, "root@designghar.test").Return(nil, store.ErrUserNotFound).Once()
		us.On("CreateUser", mock.Anything, mock.Anything).Return(nil, store.ErrUserEmailExists).Once()

		assert.NoError(t, svc.SeedRootAdmin(context.Background(), "root@designghar.test", "changeme"))
	})
}
