package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"safebites-be/internal/dto"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/pkg/serverutils"
	"safebites-be/internal/repository/specification"
	"safebites-be/internal/repository/unitofwork"
	"safebites-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type IAuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	jwtSecret      string
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	jwtSecret string,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		jwtSecret:      jwtSecret,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Generic(err, "failed to hash password")
	}

	user := &entity.User{
		Id:                  uuid.New(),
		Name:                strings.TrimSpace(req.Name),
		Username:            strings.TrimSpace(req.Username),
		PasswordHash:        string(hash),
		AllergenPreferences: cleanList(req.AllergenPreferences),
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}

	// The unique index on username decides races; no read-before-write.
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("username '%s' already exists", user.Username)
		}
		return nil, apperror.Database(err, "failed to create user")
	}

	err = s.eventPublisher.Publish(ctx, events.New(events.UserSignedUp, map[string]interface{}{
		"user_id":  user.Id.String(),
		"username": user.Username,
	}))
	if err != nil {
		s.logger.Warn("AuthService", "Failed to publish signup event", map[string]interface{}{"error": err.Error()})
	}

	return toUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: strings.TrimSpace(req.Username)})
	if err != nil {
		return nil, apperror.Database(err, "failed to look up user")
	}
	if user == nil {
		return nil, apperror.Auth("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Auth("invalid username or password")
	}

	token, expiresAt, err := serverutils.IssueToken(s.jwtSecret, user.Id)
	if err != nil {
		return nil, apperror.Generic(err, "failed to issue token")
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        *toUserResponse(user),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	prefs := u.AllergenPreferences
	if prefs == nil {
		prefs = []string{}
	}
	return &dto.UserResponse{
		Id:                  u.Id,
		Name:                u.Name,
		Username:            u.Username,
		AllergenPreferences: prefs,
		CreatedAt:           u.CreatedAt,
	}
}
