package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/takpuzzles/internal/models"
)

// MockPuzzleRepository is a mock implementation of repository.PuzzleRepository
type MockPuzzleRepository struct {
	mock.Mock
}

func (m *MockPuzzleRepository) Get(ctx context.Context, id int64) (*models.Puzzle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Puzzle), args.Error(1)
}

func (m *MockPuzzleRepository) Insert(ctx context.Context, puzzle models.Puzzle) (int64, error) {
	args := m.Called(ctx, puzzle)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPuzzleRepository) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockPuzzleRepository) UnattemptedIDs(ctx context.Context, username string, upperBound int64) ([]int64, error) {
	args := m.Called(ctx, username, upperBound)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}
