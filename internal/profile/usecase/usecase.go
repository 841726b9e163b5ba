package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/auth"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/profile"
	"github.com/fekuna/omnipos-storefront/internal/profile/dto"
	"github.com/fekuna/omnipos-storefront/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type profileUseCase struct {
	repo   profile.Repository
	carts  profile.CartMerger
	tokens profile.TokenIssuer
	txm    postgres.TxManager
	logger logger.ZapLogger
}

func NewProfileUseCase(
	repo profile.Repository,
	carts profile.CartMerger,
	tokens profile.TokenIssuer,
	txm postgres.TxManager,
	log logger.ZapLogger,
) profile.UseCase {
	return &profileUseCase{
		repo:   repo,
		carts:  carts,
		tokens: tokens,
		txm:    txm,
		logger: log,
	}
}

func (uc *profileUseCase) Register(ctx context.Context, input *dto.RegisterInput) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	u := &model.User{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hash),
	}

	err = uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := uc.repo.UsernameExists(ctx, u.Username)
		if err != nil {
			return err
		}
		if exists {
			return profile.ErrUserExists
		}

		if err := uc.repo.CreateUser(ctx, u); err != nil {
			return err
		}
		return uc.repo.CreateAddress(ctx, &model.Address{
			BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			UserID:    u.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("User registered", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

func (uc *profileUseCase) Login(ctx context.Context, sess *session.Session, input *dto.LoginInput) (*dto.LoginResult, error) {
	u, err := uc.repo.FindUserByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, profile.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, profile.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := sess.Rotate(ctx); err != nil {
		return nil, err
	}
	if _, err := uc.carts.MergeOnLogin(ctx, u.ID, sess); err != nil {
		return nil, fmt.Errorf("merge session cart: %w", err)
	}
	if err := sess.Set(ctx, session.KeyUserID, u.ID); err != nil {
		return nil, err
	}

	result := &dto.LoginResult{User: u}
	if u.IsStaff {
		token, err := uc.tokens.Issue(u.ID, u.Username, auth.RoleStaff)
		if err != nil {
			return nil, fmt.Errorf("issue admin token: %w", err)
		}
		result.Token = token
	}
	return result, nil
}

func (uc *profileUseCase) Logout(ctx context.Context, sess *session.Session) error {
	return sess.Flush(ctx)
}

func (uc *profileUseCase) Detail(ctx context.Context, userID string) (*model.User, *model.Address, error) {
	u, err := uc.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, profile.ErrUserNotFound
	}

	a, err := uc.repo.FindAddressByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		a = &model.Address{UserID: userID}
	}
	return u, a, nil
}

func (uc *profileUseCase) Update(ctx context.Context, userID string, input *dto.ProfileInput) error {
	return uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		u, a, err := uc.Detail(ctx, userID)
		if err != nil {
			return err
		}

		now := time.Now()
		u.FirstName = input.User.FirstName
		u.LastName = input.User.LastName
		u.Email = input.User.Email
		u.UpdatedAt = now
		if err := uc.repo.UpdateUser(ctx, u); err != nil {
			return err
		}

		f := input.Address
		a.Country, a.City, a.Street = &f.Country, &f.City, &f.Street
		a.Postcode, a.House, a.Apartment = &f.Postcode, &f.House, &f.Apartment
		a.UpdatedAt = now
		if a.ID == "" {
			a.ID = uuid.New().String()
			a.CreatedAt = now
			return uc.repo.CreateAddress(ctx, a)
		}
		return uc.repo.UpdateAddress(ctx, a)
	})
}
