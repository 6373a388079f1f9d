package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emprestafacil/emprestafacil-api/internal/config"
	"github.com/emprestafacil/emprestafacil-api/internal/models"
	"github.com/emprestafacil/emprestafacil-api/internal/repository"
)

// Mock UserRepository
type mockUserRepository struct {
	repository.UserRepository
	mockFindByID func(ctx context.Context, id uint) (*models.User, error)
	mockUpdate   func(ctx context.Context, user *models.User) error
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, user)
	}
	return nil
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("minha-senha-123")
	require.NoError(t, err)
	assert.NotEqual(t, "minha-senha-123", hash)

	assert.True(t, VerifyPassword("minha-senha-123", hash))
	assert.False(t, VerifyPassword("outra-senha", hash))
}

func TestAuthServiceChangePassword(t *testing.T) {
	currentHash, err := HashPassword("senha-atual")
	require.NoError(t, err)

	userRepo := &mockUserRepository{}
	userRepo.mockFindByID = func(ctx context.Context, id uint) (*models.User, error) {
		return &models.User{Email: "maria@exemplo.com", EncryptedPassword: currentHash}, nil
	}

	var updated *models.User
	userRepo.mockUpdate = func(ctx context.Context, user *models.User) error {
		updated = user
		return nil
	}

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 24}
	service := NewAuthService(userRepo, nil, cfg)

	// Wrong current password is rejected without touching the hash
	err = service.ChangePassword(context.Background(), 1, "senha-errada", "senha-nova")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.Nil(t, updated)

	// Correct current password stores a hash of the new one
	err = service.ChangePassword(context.Background(), 1, "senha-atual", "senha-nova")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, VerifyPassword("senha-nova", updated.EncryptedPassword))
	assert.False(t, VerifyPassword("senha-atual", updated.EncryptedPassword))
}
