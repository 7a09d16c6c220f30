package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Clark-Hu/book-reviews/internal/apperror"
	"github.com/Clark-Hu/book-reviews/internal/domain"
	"github.com/Clark-Hu/book-reviews/internal/repository"
)

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]domain.User
	// raceOnCreate makes Create behave as if another request won the insert.
	raceOnCreate bool
	failWith     error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]domain.User{}}
}

func (f *fakeUsers) Create(_ context.Context, params repository.UserCreateParams) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.raceOnCreate {
		return domain.User{}, repository.ErrDuplicate
	}
	if _, ok := f.byEmail[params.Email]; ok {
		return domain.User{}, repository.ErrDuplicate
	}
	u := domain.User{
		ID:           uuid.New(),
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now(),
	}
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return domain.User{}, f.failWith
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byEmail[email]
	return ok, nil
}

func newTestService(t *testing.T, users UserStore) *Service {
	t.Helper()
	svc, err := NewService(users, Options{
		Secret:     "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return svc
}

func TestRegisterAuthenticateRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeUsers())

	user, token, err := svc.Register(ctx, " Ada@Example.com ", "secret1", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NotEmpty(t, token)

	id, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, user.Email, id.Email)

	again, token2, err := svc.Authenticate(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	id2, err := svc.VerifyToken(token2)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id2.UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeUsers())

	_, _, err := svc.Register(ctx, "dup@example.com", "secret1", "First")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "DUP@example.com", "secret2", "Second")
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "User already exists with this email", appErr.Message)
}

func TestRegisterLosingRaceIsConflict(t *testing.T) {
	users := newFakeUsers()
	users.raceOnCreate = true
	svc := newTestService(t, users)

	_, _, err := svc.Register(context.Background(), "race@example.com", "secret1", "Racer")
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	svc := newTestService(t, newFakeUsers())

	long := make([]byte, MaxPasswordBytes+1)
	for i := range long {
		long[i] = 'x'
	}
	_, _, err := svc.Register(context.Background(), "long@example.com", string(long), "Long")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeUsers())
	_, _, err := svc.Register(ctx, "known@example.com", "secret1", "Known")
	require.NoError(t, err)

	_, _, wrongPassword := svc.Authenticate(ctx, "known@example.com", "nope-nope")
	_, _, unknownEmail := svc.Authenticate(ctx, "ghost@example.com", "secret1")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(unknownEmail))
}

func TestAuthenticateStoreFailureIsInternal(t *testing.T) {
	users := newFakeUsers()
	users.failWith = errors.New("connection refused")
	svc := newTestService(t, users)

	_, _, err := svc.Authenticate(context.Background(), "a@b.co", "secret1")
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t, newFakeUsers())

	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := svc.VerifyToken(token)
		assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err), "token %q", token)
	}
}
