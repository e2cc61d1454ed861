package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/yashdave182/medinote/config"
	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/domain/entity"
	"github.com/yashdave182/medinote/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(users *MockUserRepository) (*authUsecase, *MockTokenStore, *jwt.JWTService) {
	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
	tokens := NewMockTokenStore()
	uc := NewAuthUsecase(newTestLogger(), users, jwtService, tokens, &MockAuditService{}).(*authUsecase)
	uc.bcryptCost = bcrypt.MinCost
	return uc, tokens, jwtService
}

func hashed(t *testing.T, password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var savedUser *entity.User
		var savedProfile *entity.Profile
		users := &MockUserRepository{
			CreateWithProfileFunc: func(_ context.Context, user *entity.User, profile *entity.Profile) error {
				user.ID = uuid.New()
				profile.UserID = user.ID
				savedUser, savedProfile = user, profile
				return nil
			},
		}
		uc, _, _ := newAuthFixture(users)

		resp, err := uc.Register(context.Background(), &dto.RegisterRequest{
			Email:         " Doc@Example.com ",
			Password:      "secret-pass",
			FullName:      " Dr. Ada ",
			LicenseNumber: "LIC-1",
		})

		require.NoError(t, err)
		assert.Equal(t, "doc@example.com", savedUser.Email)
		assert.NotEqual(t, "secret-pass", savedUser.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(savedUser.Password), []byte("secret-pass")))
		assert.Equal(t, "Dr. Ada", savedProfile.FullName)
		require.NotNil(t, resp.Profile)
		assert.Equal(t, "LIC-1", resp.Profile.LicenseNumber)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		users := &MockUserRepository{
			CreateWithProfileFunc: func(context.Context, *entity.User, *entity.Profile) error {
				return &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
			},
		}
		uc, _, _ := newAuthFixture(users)

		_, err := uc.Register(context.Background(), &dto.RegisterRequest{Email: "a@b.co", Password: "12345678", FullName: "Ab"})
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("DuplicateLicense", func(t *testing.T) {
		users := &MockUserRepository{
			CreateWithProfileFunc: func(context.Context, *entity.User, *entity.Profile) error {
				return &pgconn.PgError{Code: "23505", ConstraintName: "uq_profiles_license_number"}
			},
		}
		uc, _, _ := newAuthFixture(users)

		_, err := uc.Register(context.Background(), &dto.RegisterRequest{Email: "a@b.co", Password: "12345678", FullName: "Ab", LicenseNumber: "L"})
		assert.ErrorIs(t, err, ErrLicenseAlreadyExists)
	})
}

func TestLogin(t *testing.T) {
	active, inactive := true, false
	userID := uuid.New()
	users := &MockUserRepository{
		FindByEmailFunc: func(_ context.Context, email string) (*entity.User, error) {
			switch email {
			case "doc@example.com":
				return &entity.User{ID: userID, Email: email, Password: hashed(t, "right-pass"), IsActive: &active}, nil
			case "gone@example.com":
				return &entity.User{ID: uuid.New(), Email: email, Password: hashed(t, "right-pass"), IsActive: &inactive}, nil
			}
			return nil, nil
		},
	}
	uc, tokens, jwtService := newAuthFixture(users)

	t.Run("Success", func(t *testing.T) {
		resp, err := uc.Login(context.Background(), &dto.LoginRequest{Email: "DOC@example.com", Password: "right-pass"})

		require.NoError(t, err)
		assert.Equal(t, int64(900), resp.ExpiresIn)
		claims, err := jwtService.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		ok, _ := tokens.Exists(context.Background(), string(jwt.AccessToken), userID, claims.TokenID)
		assert.True(t, ok)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := uc.Login(context.Background(), &dto.LoginRequest{Email: "doc@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		_, err := uc.Login(context.Background(), &dto.LoginRequest{Email: "who@example.com", Password: "right-pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Inactive", func(t *testing.T) {
		_, err := uc.Login(context.Background(), &dto.LoginRequest{Email: "gone@example.com", Password: "right-pass"})
		assert.ErrorIs(t, err, ErrInactiveAccount)
	})
}

func TestRefreshToken_RotatesAndRejectsReuse(t *testing.T) {
	active := true
	userID := uuid.New()
	users := &MockUserRepository{
		FindByEmailFunc: func(_ context.Context, email string) (*entity.User, error) {
			return &entity.User{ID: userID, Email: email, Password: hashed(t, "pw-123456"), IsActive: &active}, nil
		},
	}
	uc, _, _ := newAuthFixture(users)

	pair, err := uc.Login(context.Background(), &dto.LoginRequest{Email: "doc@example.com", Password: "pw-123456"})
	require.NoError(t, err)

	rotated, err := uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	_, err = uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: rotated.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: "garbage"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RevokesBothTokens(t *testing.T) {
	active := true
	userID := uuid.New()
	users := &MockUserRepository{
		FindByEmailFunc: func(_ context.Context, email string) (*entity.User, error) {
			return &entity.User{ID: userID, Email: email, Password: hashed(t, "pw-123456"), IsActive: &active}, nil
		},
	}
	uc, tokens, jwtService := newAuthFixture(users)

	pair, err := uc.Login(context.Background(), &dto.LoginRequest{Email: "doc@example.com", Password: "pw-123456"})
	require.NoError(t, err)
	assert.Equal(t, 2, tokens.Len())

	access, err := jwtService.ValidateToken(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, uc.Logout(context.Background(), userID, access.TokenID, pair.RefreshToken))
	assert.Equal(t, 0, tokens.Len())
}

func TestGetCurrentUser(t *testing.T) {
	userID := uuid.New()
	users := &MockUserRepository{
		FindByIDFunc: func(_ context.Context, id uuid.UUID) (*entity.User, error) {
			if id != userID {
				return nil, nil
			}
			return &entity.User{ID: id, Email: "doc@example.com", Profile: &entity.Profile{UserID: id, FullName: "Dr. Ada"}}, nil
		},
	}
	uc, _, _ := newAuthFixture(users)

	resp, err := uc.GetCurrentUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Ada", resp.Profile.FullName)

	_, err = uc.GetCurrentUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
