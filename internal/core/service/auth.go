package service

import (
	"context"
	"errors"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/model/request"
	"tasktracker/internal/core/port"
	"tasktracker/internal/core/telemetry"
	"tasktracker/pkg/auth"
)

type AuthService struct {
	repo    port.UserRepository
	metrics *telemetry.AppMetrics
	logger  *otelzap.Logger
}

func NewAuthService(repo port.UserRepository, metrics *telemetry.AppMetrics, logger *otelzap.Logger) *AuthService {
	return &AuthService{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
	}
}

func (as *AuthService) Register(ctx context.Context, req *request.UserRequest) (*domain.User, error) {
	encrypted, err := auth.HashPassword(req.Password)

	if err != nil {
		as.metrics.RecordUserOperation(ctx, "register", err)
		return nil, err
	}

	user, err := as.repo.Create(ctx, domain.User{
		Username: req.Username,
		Password: encrypted,
	})

	as.metrics.RecordUserOperation(ctx, "register", err)

	if err != nil {
		as.logger.Ctx(ctx).Warn("Auth#Register", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	as.logger.Ctx(ctx).Info("Auth#Register", zap.Int("user_id", user.ID))

	return &user, nil
}

// Authenticate reports ErrInvalidCredentials for both an unknown username
// and a wrong password.
func (as *AuthService) Authenticate(ctx context.Context, req *request.UserRequest) (*domain.User, error) {
	user, err := as.repo.GetByUsername(ctx, req.Username)

	if errors.Is(err, domain.ErrNotFoundOrUnauthorized) {
		err = domain.ErrInvalidCredentials
	} else if err == nil && auth.CheckPassword(user.Password, req.Password) != nil {
		err = domain.ErrInvalidCredentials
	}

	as.metrics.RecordUserOperation(ctx, "login", err)

	if err != nil {
		as.logger.Ctx(ctx).Warn("Auth#Authenticate", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	return &user, nil
}

func (as *AuthService) CurrentUser(ctx context.Context, userId int) (*domain.User, error) {
	user, err := as.repo.GetByID(ctx, userId)

	if err != nil {
		return nil, err
	}

	return &user, nil
}
