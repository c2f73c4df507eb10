package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/quizbowl-system/models"
	"github.com/Dosada05/quizbowl-system/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[string]*models.User{}}
}

// The fake stores copies: callers blank PasswordHash on the structs they
// get back, which must not reach the stored row.
func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return repositories.ErrUserEmailConflict
	}
	user.ID = r.nextID
	r.nextID++
	stored := *user
	r.users[user.Email] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			out := *u
			return &out, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

const testSecret = "test-secret"

func TestRegister_DefaultsToReaderRole(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Sam Reader",
		Email:    "Sam@Example.com",
		Password: "correct horse",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleReader, user.Role)
	assert.Equal(t, "sam@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Sam Reader",
		Email:    "sam@example.com",
		Password: "short",
	})

	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegister_EmailConflict(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)
	ctx := context.Background()

	input := RegisterInput{Name: "Sam Reader", Email: "sam@example.com", Password: "correct horse"}
	_, err := svc.Register(ctx, input)
	assert.NoError(t, err)

	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrUserEmailConflict)
}

func TestLogin_IssuesSignedToken(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name:     "Ada Admin",
		Email:    "ada@example.com",
		Password: "correct horse",
		Role:     models.RoleAdmin,
	})
	assert.NoError(t, err)

	user, token, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "correct horse"})
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NotEmpty(t, token)

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	assert.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, float64(user.ID), claims["sub"])
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Sam", Email: "sam@example.com", Password: "correct horse"})
	assert.NoError(t, err)

	_, _, err = svc.Login(ctx, LoginInput{Email: "sam@example.com", Password: "wrong horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)

	_, _, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
