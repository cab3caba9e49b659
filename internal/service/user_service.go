package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"safebites-be/internal/dto"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/repository/specification"
	"safebites-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
	// Lookup accepts either a user id or a username.
	Lookup(ctx context.Context, idOrUsername string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteAccount(ctx context.Context, userId uuid.UUID) error
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.find(ctx, s.uowFactory.NewUnitOfWork(ctx), specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) Lookup(ctx context.Context, idOrUsername string) (*dto.UserResponse, error) {
	var spec specification.Specification = specification.ByUsername{Username: idOrUsername}
	if id, err := uuid.Parse(idOrUsername); err == nil {
		spec = specification.ByID{ID: id}
	}

	user, err := s.find(ctx, s.uowFactory.NewUnitOfWork(ctx), spec)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.find(ctx, uow, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperror.Generic(err, "failed to hash password")
		}
		user.PasswordHash = string(hash)
	}
	if req.AllergenPreferences != nil {
		user.AllergenPreferences = cleanList(*req.AllergenPreferences)
	}
	user.UpdatedAt = time.Now()

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("username '%s' already exists", user.Username)
		}
		return nil, apperror.Database(err, "failed to update user")
	}
	return toUserResponse(user), nil
}

func (s *userService) DeleteAccount(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.find(ctx, uow, specification.ByID{ID: userId}); err != nil {
		return err
	}
	if err := uow.UserRepository().Delete(ctx, userId); err != nil {
		return apperror.Database(err, "failed to delete user")
	}
	return nil
}

func (s *userService) find(ctx context.Context, uow unitofwork.UnitOfWork, spec specification.Specification) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, spec)
	if err != nil {
		return nil, apperror.Database(err, "failed to load user")
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}
	return user, nil
}
