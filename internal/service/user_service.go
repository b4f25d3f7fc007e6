package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"gameblog/internal/domain"
	"gameblog/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that the password does not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when logging in with an unknown username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when attempting to register with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrPasswordTooLong is returned when the password exceeds what bcrypt can hash.
	ErrPasswordTooLong = errors.New("password too long")
)

// Registration carries validated sign-up input.
type Registration struct {
	Name     string
	Username string
	Email    string
	Password string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, reg Registration) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
	cost  int
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{
		users: users,
		cost:  bcrypt.DefaultCost,
	}
}

// NewUserServiceWithCost is NewUserService with an explicit bcrypt cost.
func NewUserServiceWithCost(users repository.UserRepository, cost int) UserService {
	return &userService{
		users: users,
		cost:  cost,
	}
}

func (s *userService) Register(ctx context.Context, reg Registration) (*domain.User, error) {
	if reg.Username == "" {
		return nil, errors.New("username is required")
	}
	if reg.Password == "" {
		return nil, errors.New("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         reg.Name,
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUserNotFound
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
