package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tillage/internal/core/apperror"
	appctx "tillage/internal/core/context"
	"tillage/internal/core/id"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *User) error {
	r.users[u.LoginCode] = u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	for _, u := range r.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", userID.String())
}

func (r *fakeUserRepo) GetByLoginCode(ctx context.Context, code string) (*User, error) {
	u, ok := r.users[code]
	if !ok {
		return nil, apperror.NewNotFound("user", code)
	}
	return u, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *User) error {
	r.users[u.LoginCode] = u
	return nil
}

func (r *fakeUserRepo) SetActive(ctx context.Context, userID id.ID, active bool) error {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.IsActive = active
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, f UserFilter) ([]User, int, error) {
	var out []User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) ExistsByLoginCode(ctx context.Context, code string) (bool, error) {
	_, ok := r.users[code]
	return ok, nil
}

func newService(repo *fakeUserRepo) *Service {
	return NewService(repo, nopTxManager{}, NewJWTService(DefaultJWTConfig("test-secret")), DefaultServiceConfig())
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newService(repo)

	user, err := svc.Register(ctx, RegisterRequest{
		LoginCode: "1234",
		Name:      "Anna",
		Password:  "correct horse",
		Position:  appctx.PositionEmployee,
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	res, err := svc.Login(ctx, Credentials{LoginCode: "1234", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.NotNil(t, user.LastLoginAt)

	// Token round-trips through validation.
	uc, err := NewJWTService(DefaultJWTConfig("test-secret")).ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), uc.UserID)
	assert.Equal(t, "1234", uc.LoginCode)
	assert.Equal(t, appctx.PositionEmployee, uc.Position)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(newFakeUserRepo())

	_, err := svc.Register(ctx, RegisterRequest{LoginCode: "12", Name: "X", Password: "longenough", Position: appctx.PositionEmployee})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "short login code")

	_, err = svc.Register(ctx, RegisterRequest{LoginCode: "1234", Name: "X", Password: "short", Position: appctx.PositionEmployee})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "short password")

	_, err = svc.Register(ctx, RegisterRequest{LoginCode: "1234", Name: "X", Password: "longenough", Position: "owner"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "unknown position")
}

func TestRegisterDuplicateLoginCode(t *testing.T) {
	ctx := context.Background()
	svc := newService(newFakeUserRepo())

	_, err := svc.Register(ctx, RegisterRequest{LoginCode: "1234", Name: "A", Password: "longenough", Position: appctx.PositionEmployee})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{LoginCode: "1234", Name: "B", Password: "longenough", Position: appctx.PositionEmployee})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestLoginFailuresLockAccount(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	cfg := DefaultServiceConfig()
	cfg.MaxLoginAttempts = 3
	cfg.LockDuration = time.Hour
	svc := NewService(repo, nopTxManager{}, NewJWTService(DefaultJWTConfig("test-secret")), cfg)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, NewUser("1234", "Anna", string(hash), appctx.PositionEmployee)))

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, Credentials{LoginCode: "1234", Password: "wrong"})
		require.Error(t, err)
	}

	// Locked now, even with the right password.
	_, err = svc.Login(ctx, Credentials{LoginCode: "1234", Password: "secret123"})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestValidLoginCode(t *testing.T) {
	assert.True(t, ValidLoginCode("0000"))
	assert.False(t, ValidLoginCode("123"))
	assert.False(t, ValidLoginCode("12345"))
	assert.False(t, ValidLoginCode("12a4"))
}
