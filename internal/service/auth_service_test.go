package service

import (
	"context"
	"testing"
	"time"

	"golden-notes-be/internal/config"
	"golden-notes-be/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:         "test_secret",
		SessionCookieName: "golden_session",
		SessionTTL:        24 * time.Hour,
	}
}

func TestRegisterCreatesStarterNotebook(t *testing.T) {
	factory := newFakeUowFactory()
	mail := &fakeMailer{}
	svc := NewAuthService(factory, mail, nil, testAuthConfig())

	res, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:           "ada@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	})
	assert.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.Email)

	user := factory.uow.userRepo.users[res.Id]
	assert.NotNil(t, user)
	assert.NotEqual(t, "hunter22", user.PasswordHash, "password is stored hashed")

	nb := factory.uow.notebookRepo.notebooks[res.NotebookId]
	assert.NotNil(t, nb)
	assert.Equal(t, "General notes", nb.Name)
	assert.Equal(t, res.Id, nb.OwnerId)

	assert.True(t, factory.uow.begun, "user and notebook share a transaction")
	assert.True(t, factory.uow.committed)

	assert.Eventually(t, func() bool {
		sent := mail.Sent()
		return len(sent) == 1 && sent[0] == "ada@example.com"
	}, time.Second, 5*time.Millisecond)
}

func TestRegisterRejectsMismatchedPasswords(t *testing.T) {
	factory := newFakeUowFactory()
	svc := NewAuthService(factory, &fakeMailer{}, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:           "ada@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter23",
	})
	assert.EqualError(t, err, "passwords do not match")
	assert.Empty(t, factory.uow.userRepo.users)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	factory := newFakeUowFactory()
	svc := NewAuthService(factory, &fakeMailer{}, nil, testAuthConfig())

	req := &dto.RegisterRequest{
		Email:           "ada@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	}
	_, err := svc.Register(context.Background(), req)
	assert.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.EqualError(t, err, "email already registered")
}

func TestLoginIssuesSessionToken(t *testing.T) {
	factory := newFakeUowFactory()
	cfg := testAuthConfig()
	svc := NewAuthService(factory, &fakeMailer{}, nil, cfg)

	reg, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:           "ada@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	})
	assert.NoError(t, err)

	res, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "hunter22",
	}, "127.0.0.1", "tests")
	assert.NoError(t, err)
	assert.Equal(t, reg.Id, res.User.Id)
	assert.Empty(t, res.RefreshToken, "no refresh token without remember me")

	token, err := jwt.Parse(res.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, reg.Id.String(), claims["user_id"])
}

func TestLoginRememberMeCreatesRefreshToken(t *testing.T) {
	factory := newFakeUowFactory()
	svc := NewAuthService(factory, &fakeMailer{}, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:           "ada@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	})
	assert.NoError(t, err)

	res, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:      "ada@example.com",
		Password:   "hunter22",
		RememberMe: true,
	}, "127.0.0.1", "tests")
	assert.NoError(t, err)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Len(t, factory.uow.userRepo.refreshTokens, 1)

	for _, stored := range factory.uow.userRepo.refreshTokens {
		assert.NotEqual(t, res.RefreshToken, stored.TokenHash, "only the hash is stored")
		assert.False(t, stored.Revoked)
	}

	// Logout revokes by hash.
	assert.NoError(t, svc.Logout(context.Background(), res.RefreshToken))
	for _, stored := range factory.uow.userRepo.refreshTokens {
		assert.True(t, stored.Revoked)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	factory := newFakeUowFactory()
	svc := NewAuthService(factory, &fakeMailer{}, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:           "ada@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	})
	assert.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong",
	}, "", "")
	assert.EqualError(t, err, "invalid credentials")

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter22",
	}, "", "")
	assert.EqualError(t, err, "invalid credentials")
}
