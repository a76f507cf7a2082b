package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/takpuzzles/internal/models"
)

// MockAttemptRepository is a mock implementation of repository.AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Insert(ctx context.Context, attempt models.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) FirstAttemptsByPlayer(ctx context.Context, username string) ([]models.Attempt, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) FirstAttemptsForPuzzle(ctx context.Context, puzzleID int64, excluded []string) ([]models.RatingSample, error) {
	args := m.Called(ctx, puzzleID, excluded)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingSample), args.Error(1)
}
