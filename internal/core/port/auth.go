package port

import (
	"context"

	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/model/request"
)

type AuthService interface {
	Register(ctx context.Context, req *request.UserRequest) (*domain.User, error)
	Authenticate(ctx context.Context, req *request.UserRequest) (*domain.User, error)
	CurrentUser(ctx context.Context, userId int) (*domain.User, error)
}

type TokenIssuer interface {
	CreateToken(userId int) (string, error)
	VerifyToken(token string) (int, error)
}
