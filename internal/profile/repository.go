package profile

import (
	"context"

	"github.com/fekuna/omnipos-storefront/internal/model"
)

type Repository interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateUser(ctx context.Context, u *model.User) error

	CreateAddress(ctx context.Context, a *model.Address) error
	FindAddressByUser(ctx context.Context, userID string) (*model.Address, error)
	UpdateAddress(ctx context.Context, a *model.Address) error
}
