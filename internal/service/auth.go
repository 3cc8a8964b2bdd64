package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"designghar-service/internal/auth"
	"designghar-service/internal/domain"
	"designghar-service/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string        `json:"access_token"`
	User        auth.Identity `json:"user"`
}

// RegisterInput describes a new back-office user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

type AuthService struct {
	users  store.UserStorer
	jwt    *auth.JWTManager
	logger *zap.Logger
}

// comparePassword is replaced in tests.
var comparePassword = auth.CheckPassword

func NewAuthService(us store.UserStorer, jwtMgr *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{users: us, jwt: jwtMgr, logger: logger}
}

// Login checks email and password and issues an access token. Any mismatch
// returns ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			comparePassword(auth.DecoyHash(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !comparePassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, _, err := s.jwt.Sign(user)
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}
	return &LoginResult{AccessToken: token, User: identityOf(user)}, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Role != domain.RoleAdmin && in.Role != domain.RoleManager {
		return nil, invalid("role must be one of: admin, manager")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	user, err := s.users.CreateUser(ctx, &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	})
	if err != nil {
		if errors.Is(err, store.ErrUserEmailExists) {
			return nil, &ConflictError{Message: "Email already registered: " + strings.ToLower(in.Email), Err: err}
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *AuthService) GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// SeedRootAdmin creates the root admin account unless a user with email
// already exists. Empty credentials skip seeding.
func (s *AuthService) SeedRootAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		s.logger.Warn("root admin credentials not set, skipping seed")
		return nil
	}
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			s.logger.Warn("root admin email belongs to a non-admin user", zap.String("email", existing.Email))
		} else {
			s.logger.Info("root admin already exists", zap.String("email", existing.Email))
		}
		return nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return fmt.Errorf("seed root admin: %w", err)
	}

	_, err = s.Register(ctx, RegisterInput{Name: "Root Admin", Email: email, Password: password, Role: domain.RoleAdmin})
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		// Another replica seeded it first.
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed root admin: %w", err)
	}
	s.logger.Info("root admin seeded", zap.String("email", strings.ToLower(email)))
	return nil
}

func identityOf(u *domain.User) auth.Identity {
	return auth.Identity{UserID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: u.Role}
}
