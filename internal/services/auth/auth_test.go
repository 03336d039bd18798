package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tapfolio/entitlement-service/internal/lib/jwt"
	"github.com/tapfolio/entitlement-service/internal/lib/password"
	"github.com/tapfolio/entitlement-service/internal/models"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetClaims(ctx context.Context, userUID string) (models.Claims, error) {
	args := m.Called(ctx, userUID)
	return args.Get(0).(models.Claims), args.Error(1)
}

func newMaker() *jwt.MakerImpl {
	return jwt.NewJWTMaker("test-secret", time.Hour)
}

func TestService_Register(t *testing.T) {
	users := new(MockUserRepository)
	users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Username == "alice" &&
			u.Email == "alice@example.com" &&
			u.Role == models.RoleUser &&
			u.PasswordHash != "" && u.PasswordHash != "s3cretpass"
	})).Return("uid-1", nil).Once()

	svc := NewService(users, newMaker())

	uid, err := svc.Register(context.Background(), "alice@example.com", "alice", "s3cretpass")

	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	users.AssertExpectations(t)
}

func TestService_Login(t *testing.T) {
	hash, err := password.GetHash("s3cretpass")
	require.NoError(t, err)

	tests := []struct {
		name       string
		rawPass    string
		user       *models.User
		userErr    error
		claims     models.Claims
		claimsErr  error
		wantErr    string
		wantBanned bool
	}{
		{
			name:    "valid credentials issue token with cached claims",
			rawPass: "s3cretpass",
			user:    &models.User{UID: "uid-1", Username: "alice", PasswordHash: hash, Role: models.RoleAdmin},
			claims:  models.Claims{Admin: true},
		},
		{
			name:    "wrong password",
			rawPass: "wrongpass",
			user:    &models.User{UID: "uid-1", Username: "alice", PasswordHash: hash},
			wantErr: "invalid credentials",
		},
		{
			name:       "banned account refused",
			rawPass:    "s3cretpass",
			user:       &models.User{UID: "uid-1", Username: "alice", PasswordHash: hash, IsBanned: true},
			wantBanned: true,
		},
		{
			name:    "unknown user",
			rawPass: "s3cretpass",
			userErr: errors.New("user not found"),
			wantErr: "user not found",
		},
		{
			name:      "claim store failure",
			rawPass:   "s3cretpass",
			user:      &models.User{UID: "uid-1", Username: "alice", PasswordHash: hash},
			claimsErr: errors.New("claims unavailable"),
			wantErr:   "claims unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			users.On("GetUserByUsername", mock.Anything, "alice").Return(tt.user, tt.userErr).Once()
			if tt.userErr == nil && tt.rawPass == "s3cretpass" && !tt.user.IsBanned {
				users.On("GetClaims", mock.Anything, "uid-1").Return(tt.claims, tt.claimsErr).Once()
			}

			maker := newMaker()
			svc := NewService(users, maker)

			token, user, err := svc.Login(context.Background(), "alice", tt.rawPass)

			switch {
			case tt.wantBanned:
				require.ErrorIs(t, err, ErrBanned)
			case tt.wantErr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			default:
				require.NoError(t, err)
				require.NotNil(t, user)
				parsed, err := maker.ParseToken(token)
				require.NoError(t, err)
				assert.Equal(t, "uid-1", parsed.UserUID)
				assert.Equal(t, tt.claims, parsed.Authority())
			}
			users.AssertExpectations(t)
		})
	}
}

func TestService_ValidateToken(t *testing.T) {
	maker := newMaker()
	svc := NewService(new(MockUserRepository), maker)

	token, err := maker.GenerateToken("alice", "uid-1", models.RoleUser, models.Claims{})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	_, err = svc.ValidateToken(context.Background(), token+"tampered")
	require.Error(t, err)
}
