package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	log := logger.FromCtx(ctx)

	u := User{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Gender:  strings.TrimSpace(input.Gender),
		DOB:     strings.TrimSpace(input.DOB),
		Address: strings.TrimSpace(input.Address),
		Phone:   strings.TrimSpace(input.Phone),
	}

	for field, v := range map[string]string{
		"email": u.Email, "gender": u.Gender, "dob": u.DOB, "address": u.Address,
		"phone": u.Phone, "password": input.Password,
	} {
		if v == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}

	if input.Password != input.RetypePassword {
		return nil, ErrPasswordMismatch
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}
	u.Password = hashed

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		if !errors.Is(err, ErrEmailExists) {
			log.Error("failed to create user", zap.String("email", u.Email), zap.Error(err))
		}
		return nil, err
	}

	log.Info("register service completed",
		zap.String("user_id", created.ID),
		zap.String("email", created.Email),
	)

	return created, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	log := logger.FromCtx(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login: email not found", zap.String("email", email))
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if !CheckPasswordHash(password, u.Password) {
		log.Info("login: password mismatch", zap.String("user_id", u.ID))
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(u.ID, string(u.Role), u.Email)
	if err != nil {
		log.Error("failed to generate jwt", zap.String("user_id", u.ID), zap.Error(err))
		return "", nil, err
	}

	return token, u, nil
}
