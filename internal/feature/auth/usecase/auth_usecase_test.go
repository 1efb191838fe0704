package usecase

import (
	"context"
	"errors"
	"testing"

	"imagegen_backend/internal/feature/auth/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// mockUserRepository is a mock implementation of UserRepository.
type mockUserRepository struct {
	CreateFunc      func(user *entity.User) error
	FindByEmailFunc func(email string) (*entity.User, error)
	FindByIDFunc    func(id uint) (*entity.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(user)
	}
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, ErrUserNotFound
}

// mockJWTGenerator is a mock implementation of JWTGenerator.
type mockJWTGenerator struct {
	GenerateTokenFunc func(userID uint, email string) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(userID uint, email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email)
	}
	return "mock-jwt-token", nil
}

func TestAuthUsecase_Signup(t *testing.T) {
	t.Run("successful signup returns token and inactive user", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(user *entity.User) error {
				if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")); err != nil {
					t.Errorf("invalid bcrypt hash: %v", err)
				}
				user.ID = 7
				return nil
			},
		}

		uc := NewAuthUsecase(mockRepo, &mockJWTGenerator{})
		sess, err := uc.Signup(context.Background(), "  Test@Example.com ", "password123")

		require.NoError(t, err)
		assert.Equal(t, "mock-jwt-token", sess.Token)
		assert.Equal(t, uint(7), sess.User.ID)
		assert.Equal(t, "test@example.com", sess.User.Email)
		assert.Equal(t, entity.SubscriptionInactive, sess.User.SubscriptionStatus)
		assert.Nil(t, sess.User.SubscriptionExpiry)
	})

	t.Run("short password", func(t *testing.T) {
		called := false
		mockRepo := &mockUserRepository{CreateFunc: func(*entity.User) error { called = true; return nil }}

		uc := NewAuthUsecase(mockRepo, &mockJWTGenerator{})
		_, err := uc.Signup(context.Background(), "a@example.com", "short")

		assert.ErrorIs(t, err, ErrWeakPassword)
		assert.False(t, called, "repository must not be called")
	})

	t.Run("repository create failure", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(*entity.User) error { return ErrEmailAlreadyExists },
		}

		uc := NewAuthUsecase(mockRepo, &mockJWTGenerator{})
		_, err := uc.Signup(context.Background(), "a@example.com", "password123")

		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	testUser := &entity.User{ID: 1, Email: "test@example.com", Password: string(hashed)}

	repo := &mockUserRepository{
		FindByEmailFunc: func(email string) (*entity.User, error) {
			if email == testUser.Email {
				return testUser, nil
			}
			return nil, ErrUserNotFound
		},
	}

	tests := []struct {
		name     string
		email    string
		password string
		jwtErr   error
		wantErr  error
	}{
		{name: "success", email: "TEST@example.com", password: "password123"},
		{name: "wrong password", email: "test@example.com", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown user", email: "x@example.com", password: "password123", wantErr: ErrInvalidCredentials},
		{name: "token failure", email: "test@example.com", password: "password123", jwtErr: errors.New("no secret")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockJWTGenerator{}
			if tt.jwtErr != nil {
				gen.GenerateTokenFunc = func(uint, string) (string, error) { return "", tt.jwtErr }
			}
			uc := NewAuthUsecase(repo, gen)

			sess, err := uc.Login(context.Background(), tt.email, tt.password)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.jwtErr != nil:
				assert.ErrorIs(t, err, tt.jwtErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, "mock-jwt-token", sess.Token)
				assert.Equal(t, testUser, sess.User)
			}
		})
	}
}

func TestAuthUsecase_Profile(t *testing.T) {
	u := &entity.User{ID: 3, Email: "p@example.com"}
	repo := &mockUserRepository{
		FindByIDFunc: func(id uint) (*entity.User, error) {
			if id == 3 {
				return u, nil
			}
			return nil, ErrUserNotFound
		},
	}
	uc := NewAuthUsecase(repo, &mockJWTGenerator{})

	got, err := uc.Profile(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = uc.Profile(context.Background(), 4)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
