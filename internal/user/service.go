package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cozycorner-be/internal/logger"

	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service interface {
	Register(ctx context.Context, name, email, password, phone string) (string, User, error)
	Login(ctx context.Context, email, password string) (string, User, error)
	GetByID(ctx context.Context, id uint) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	SetRole(ctx context.Context, id uint, role string) (User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, name, email, password, phone string) (string, User, error) {
	log := logger.FromCtx(ctx)

	hashed, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", User{}, err
	}

	u, err := s.repo.Create(ctx, name, email, hashed, phone, string(RoleUser))
	if err != nil {
		log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		if strings.Contains(err.Error(), "users_email_key") {
			return "", User{}, ErrEmailExists
		}
		return "", User{}, err
	}

	token, err := GenerateJWT(u.ID, string(u.Role), u.Email, u.Name)
	if err != nil {
		log.Error("failed to generate jwt", zap.String("user_id", fmt.Sprint(u.ID)), zap.Error(err))
		return "", User{}, err
	}

	log.Info("register completed",
		zap.String("user_id", fmt.Sprint(u.ID)),
		zap.String("email", email),
	)

	return token, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	if !CheckPasswordHash(password, u.Password) {
		return "", User{}, ErrInvalidCredentials
	}

	token, err := GenerateJWT(u.ID, string(u.Role), u.Email, u.Name)
	return token, u, err
}

func (s *service) GetByID(ctx context.Context, id uint) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) SetRole(ctx context.Context, id uint, role string) (User, error) {
	if role != string(RoleUser) && role != string(RoleAdmin) {
		return User{}, fmt.Errorf("invalid role: %s", role)
	}
	return s.repo.UpdateRole(ctx, id, role)
}
