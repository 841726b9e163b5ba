package profile

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/profile/dto"
	"github.com/fekuna/omnipos-storefront/internal/session"
)

var (
	ErrUserExists         = errors.New("a user with that username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// CartMerger folds the anonymous session cart into the user's cart.
type CartMerger interface {
	MergeOnLogin(ctx context.Context, userID string, sess *session.Session) (*model.Cart, error)
}

type TokenIssuer interface {
	Issue(userID, username, role string) (string, error)
}

type UseCase interface {
	// Register creates the user together with an empty address.
	Register(ctx context.Context, input *dto.RegisterInput) (*model.User, error)
	// Login stores the user in the session and merges the session cart.
	// Staff users also get an admin bearer token.
	Login(ctx context.Context, sess *session.Session, input *dto.LoginInput) (*dto.LoginResult, error)
	Logout(ctx context.Context, sess *session.Session) error
	Detail(ctx context.Context, userID string) (*model.User, *model.Address, error)
	Update(ctx context.Context, userID string, input *dto.ProfileInput) error
}
