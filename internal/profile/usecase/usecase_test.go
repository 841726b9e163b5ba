package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/auth"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/profile"
	"github.com/fekuna/omnipos-storefront/internal/profile/dto"
	"github.com/fekuna/omnipos-storefront/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	users     map[string]*model.User
	addresses map[string]*model.Address
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*model.User{}, addresses: map[string]*model.Address{}}
}

func (r *memRepo) CreateUser(_ context.Context, u *model.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) FindUserByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepo) FindUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	u, _ := r.FindUserByUsername(ctx, username)
	return u != nil, nil
}

func (r *memRepo) UpdateUser(_ context.Context, u *model.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) CreateAddress(_ context.Context, a *model.Address) error {
	cp := *a
	r.addresses[a.UserID] = &cp
	return nil
}

func (r *memRepo) FindAddressByUser(_ context.Context, userID string) (*model.Address, error) {
	if a, ok := r.addresses[userID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepo) UpdateAddress(_ context.Context, a *model.Address) error {
	return r.CreateAddress(context.Background(), a)
}

type merger struct {
	merged []string
	err    error
}

func (m *merger) MergeOnLogin(ctx context.Context, userID string, sess *session.Session) (*model.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.merged = append(m.merged, userID)
	_, _, err := sess.Pop(ctx, session.KeyCartID)
	return &model.Cart{UserID: &userID}, err
}

func setup(t *testing.T) (profile.UseCase, *memRepo, *merger, *auth.TokenManager) {
	t.Helper()
	repo := newMemRepo()
	m := &merger{}
	tm := auth.NewTokenManager("test-secret", time.Hour)
	return NewProfileUseCase(repo, m, tm, postgres.NoopTxManager{}, logger.NewNopLogger()), repo, m, tm
}

func register(t *testing.T, uc profile.UseCase, username string) *model.User {
	t.Helper()
	u, err := uc.Register(context.Background(), &dto.RegisterInput{
		Username: username, Email: username + "@example.com", Password1: "s3cret-pass", Password2: "s3cret-pass",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterCreatesAddressScaffold(t *testing.T) {
	uc, repo, _, _ := setup(t)
	u := register(t, uc, "ada")

	assert.NotEqual(t, "s3cret-pass", repo.users[u.ID].PasswordHash)
	a := repo.addresses[u.ID]
	require.NotNil(t, a)
	assert.Nil(t, a.City)

	_, err := uc.Register(context.Background(), &dto.RegisterInput{Username: "ada", Password1: "x", Password2: "x"})
	assert.ErrorIs(t, err, profile.ErrUserExists)
}

func TestLogin(t *testing.T) {
	uc, _, m, _ := setup(t)
	u := register(t, uc, "ada")

	ctx := context.Background()
	sess := session.New("sid", session.NewMemoryStore())
	require.NoError(t, sess.Set(ctx, session.KeyCartID, "anon-cart"))

	res, err := uc.Login(ctx, sess, &dto.LoginInput{Username: "ada", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.Empty(t, res.Token, "regular users get no admin token")

	userID, ok, err := sess.Get(ctx, session.KeyUserID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, []string{u.ID}, m.merged)

	_, ok, _ = sess.Get(ctx, session.KeyCartID)
	assert.False(t, ok)
}

func TestLoginIssuesNewSessionID(t *testing.T) {
	uc, _, _, _ := setup(t)
	u := register(t, uc, "ada")

	ctx := context.Background()
	store := session.NewMemoryStore()
	planted := "11111111-1111-1111-1111-111111111111"
	sess := session.New(planted, store)

	_, err := uc.Login(ctx, sess, &dto.LoginInput{Username: "ada", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEqual(t, planted, sess.ID())

	_, ok, err := session.New(planted, store).Get(ctx, session.KeyUserID)
	require.NoError(t, err)
	assert.False(t, ok, "the old id must not be authenticated")

	userID, ok, err := session.New(sess.ID(), store).Get(ctx, session.KeyUserID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, u.ID, userID)
}

func TestLoginLeavesSessionAnonymousWhenMergeFails(t *testing.T) {
	uc, _, m, _ := setup(t)
	register(t, uc, "ada")
	m.err = errors.New("db unavailable")

	ctx := context.Background()
	sess := session.New("sid", session.NewMemoryStore())
	require.NoError(t, sess.Set(ctx, session.KeyCartID, "anon-cart"))

	_, err := uc.Login(ctx, sess, &dto.LoginInput{Username: "ada", Password: "s3cret-pass"})
	require.ErrorIs(t, err, m.err)

	_, ok, _ := sess.Get(ctx, session.KeyUserID)
	assert.False(t, ok)
	cartID, ok, _ := sess.Get(ctx, session.KeyCartID)
	assert.True(t, ok)
	assert.Equal(t, "anon-cart", cartID)
}

func TestLoginStaffGetsToken(t *testing.T) {
	uc, repo, _, tm := setup(t)
	u := register(t, uc, "boss")
	repo.users[u.ID].IsStaff = true

	res, err := uc.Login(context.Background(), session.New("sid", session.NewMemoryStore()),
		&dto.LoginInput{Username: "boss", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := tm.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleStaff, claims.Role)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	uc, _, m, _ := setup(t)
	register(t, uc, "ada")
	sess := session.New("sid", session.NewMemoryStore())

	_, err := uc.Login(context.Background(), sess, &dto.LoginInput{Username: "ada", Password: "wrong"})
	assert.ErrorIs(t, err, profile.ErrInvalidCredentials)

	_, err = uc.Login(context.Background(), sess, &dto.LoginInput{Username: "nobody", Password: "x"})
	assert.ErrorIs(t, err, profile.ErrInvalidCredentials)
	assert.Empty(t, m.merged)
}

func TestLogoutFlushesSession(t *testing.T) {
	uc, _, _, _ := setup(t)
	ctx := context.Background()
	sess := session.New("sid", session.NewMemoryStore())
	require.NoError(t, sess.Set(ctx, session.KeyUserID, "u1"))

	require.NoError(t, uc.Logout(ctx, sess))
	_, ok, _ := sess.Get(ctx, session.KeyUserID)
	assert.False(t, ok)
}

func TestUpdateProfile(t *testing.T) {
	uc, _, _, _ := setup(t)
	u := register(t, uc, "ada")
	ctx := context.Background()

	err := uc.Update(ctx, u.ID, &dto.ProfileInput{
		User: dto.UserForm{FirstName: "Ada", LastName: "Lovelace", Email: "ada@lovelace.org"},
		Address: dto.AddressForm{
			Country: "UK", City: "London", Street: "St James's Sq",
			Postcode: "123456", House: "12", Apartment: "1",
		},
	})
	require.NoError(t, err)

	got, a, err := uc.Detail(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.FullName())
	assert.Equal(t, "ada@lovelace.org", got.Email)
	require.NotNil(t, a.City)
	assert.Equal(t, "London", *a.City)

	_, _, err = uc.Detail(ctx, "missing")
	assert.ErrorIs(t, err, profile.ErrUserNotFound)
}
