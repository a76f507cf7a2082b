package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/takpuzzles/internal/models"
)

// MockPlayerRepository is a mock implementation of repository.PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) Get(ctx context.Context, username string) (*models.PlayerRating, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerRating), args.Error(1)
}

func (m *MockPlayerRepository) List(ctx context.Context) ([]models.PlayerRating, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlayerRating), args.Error(1)
}

func (m *MockPlayerRepository) Upsert(ctx context.Context, player models.PlayerRating) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}
