package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/takpuzzles/internal/errors"
	"github.com/vytor/takpuzzles/internal/models"
	"github.com/vytor/takpuzzles/internal/random"
	"github.com/vytor/takpuzzles/internal/services"
	"github.com/vytor/takpuzzles/internal/testutil/mocks"
)

// indexSource always picks the same index and the bottom of every range.
type indexSource struct{ index int }

func (s indexSource) IntN(n int) int   { return s.index % n }
func (s indexSource) Float64() float64 { return 0 }

var defaultSelection = services.SelectionConfig{
	OnboardingPuzzleIDs:     []int64{3, 15},
	CandidatePoolUpperBound: 20,
}

func emptyBoardPuzzle(id int64) *models.Puzzle {
	return &models.Puzzle{
		ID:       id,
		Size:     6,
		RootTPS:  "x6/x6/x6/x6/x6/x6 1 1",
		Solution: []string{"a1", "b1", "c1"},
	}
}

func attemptsOn(ids ...int64) []models.Attempt {
	out := make([]models.Attempt, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Attempt{PuzzleID: id, Username: "alice"})
	}
	return out
}

func TestNextPuzzle_OnboardingThenRandom(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh player gets first onboarding puzzle", func(t *testing.T) {
		puzzles, attempts := new(mocks.MockPuzzleRepository), new(mocks.MockAttemptRepository)
		attempts.On("FirstAttemptsByPlayer", mock.Anything, "alice").Return([]models.Attempt{}, nil)
		puzzles.On("Get", mock.Anything, int64(3)).Return(emptyBoardPuzzle(3), nil)

		svc := services.NewPuzzleService(puzzles, attempts, defaultSelection, indexSource{})
		got, err := svc.NextPuzzle(ctx, "alice")

		require.NoError(t, err)
		assert.Equal(t, int64(3), got.ID)
		assert.Equal(t, 42, got.TargetTimeSeconds, "the turn suffix adds one piece")
		puzzles.AssertNotCalled(t, "UnattemptedIDs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second onboarding puzzle after the first is attempted", func(t *testing.T) {
		puzzles, attempts := new(mocks.MockPuzzleRepository), new(mocks.MockAttemptRepository)
		attempts.On("FirstAttemptsByPlayer", mock.Anything, "alice").Return(attemptsOn(3), nil)
		puzzles.On("Get", mock.Anything, int64(15)).Return(emptyBoardPuzzle(15), nil)

		svc := services.NewPuzzleService(puzzles, attempts, defaultSelection, indexSource{})
		got, err := svc.NextPuzzle(ctx, "alice")

		require.NoError(t, err)
		assert.Equal(t, int64(15), got.ID)
	})

	t.Run("random unattempted puzzle once onboarding is done", func(t *testing.T) {
		puzzles, attempts := new(mocks.MockPuzzleRepository), new(mocks.MockAttemptRepository)
		attempts.On("FirstAttemptsByPlayer", mock.Anything, "alice").Return(attemptsOn(3, 15, 1), nil)
		puzzles.On("UnattemptedIDs", mock.Anything, "alice", int64(20)).Return([]int64{2, 4, 19}, nil)
		puzzles.On("Get", mock.Anything, int64(4)).Return(emptyBoardPuzzle(4), nil)

		svc := services.NewPuzzleService(puzzles, attempts, defaultSelection, indexSource{index: 1})
		got, err := svc.NextPuzzle(ctx, "alice")

		require.NoError(t, err)
		assert.Equal(t, int64(4), got.ID)
		puzzles.AssertExpectations(t)
	})
}

func TestNextPuzzle_FailedOnboardingAttemptCounts(t *testing.T) {
	puzzles, attempts := new(mocks.MockPuzzleRepository), new(mocks.MockAttemptRepository)
	// A failed first attempt on 3 still moves the player on to 15.
	attempts.On("FirstAttemptsByPlayer", mock.Anything, "alice").Return([]models.Attempt{
		{PuzzleID: 3, Username: "alice", Solved: false},
	}, nil)
	puzzles.On("Get", mock.Anything, int64(15)).Return(emptyBoardPuzzle(15), nil)

	svc := services.NewPuzzleService(puzzles, attempts, defaultSelection, indexSource{})
	got, err := svc.NextPuzzle(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, int64(15), got.ID)
}

func TestNextPuzzle_MissingOnboardingPuzzleSkipped(t *testing.T) {
	puzzles, attempts := new(mocks.MockPuzzleRepository), new(mocks.MockAttemptRepository)
	attempts.On("FirstAttemptsByPlayer", mock.Anything, "alice").Return([]models.Attempt{}, nil)
	puzzles.On("Get", mock.Anything, int64(3)).Return(nil, nil)
	puzzles.On("Get", mock.Anything, int64(15)).Return(emptyBoardPuzzle(15), nil)

	svc := services.NewPuzzleService(puzzles, attempts, defaultSelection, indexSource{})
	got, err := svc.NextPuzzle(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, int64(15), got.ID)
}

func TestNextPuzzle_SameSeedSameChoice(t *testing.T) {
	puzzles, attempts := new(mocks.MockPuzzleRepository), new(mocks.MockAttemptRepository)
	candidates := []int64{1, 2, 4, 5, 6, 7, 8, 9, 10}
	attempts.On("FirstAttemptsByPlayer", mock.Anything, "alice").Return(attemptsOn(3, 15), nil)
	puzzles.On("UnattemptedIDs", mock.Anything, "alice", int64(20)).Return(candidates, nil)
	for _, id := range candidates {
		puzzles.On("Get", mock.Anything, id).Return(emptyBoardPuzzle(id), nil)
	}

	first, err := services.NewPuzzleService(puzzles, attempts, defaultSelection, random.NewSeeded(42)).
		NextPuzzle(context.Background(), "alice")
	require.NoError(t, err)
	second, err := services.NewPuzzleService(puzzles, attempts, defaultSelection, random.NewSeeded(42)).
		NextPuzzle(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Contains(t, candidates, first.ID)
}

func TestNextPuzzle_PoolExhausted(t *testing.T) {
	puzzles, attempts := new(mocks.MockPuzzleRepository), new(mocks.MockAttemptRepository)
	attempts.On("FirstAttemptsByPlayer", mock.Anything, "alice").Return(attemptsOn(3, 15), nil)
	puzzles.On("UnattemptedIDs", mock.Anything, "alice", int64(20)).Return([]int64{}, nil)

	svc := services.NewPuzzleService(puzzles, attempts, defaultSelection, indexSource{})
	_, err := svc.NextPuzzle(context.Background(), "alice")

	assert.True(t, errors.IsNotFound(err))
}

func TestNextPuzzle_NoOnboardingUnboundedPool(t *testing.T) {
	puzzles, attempts := new(mocks.MockPuzzleRepository), new(mocks.MockAttemptRepository)
	attempts.On("FirstAttemptsByPlayer", mock.Anything, "alice").Return([]models.Attempt{}, nil)
	puzzles.On("UnattemptedIDs", mock.Anything, "alice", int64(0)).Return([]int64{250}, nil)
	puzzles.On("Get", mock.Anything, int64(250)).Return(emptyBoardPuzzle(250), nil)

	svc := services.NewPuzzleService(puzzles, attempts, services.SelectionConfig{}, indexSource{})
	got, err := svc.NextPuzzle(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, int64(250), got.ID)
}

func TestNextPuzzle_TrimsUsername(t *testing.T) {
	puzzles, attempts := new(mocks.MockPuzzleRepository), new(mocks.MockAttemptRepository)
	attempts.On("FirstAttemptsByPlayer", mock.Anything, "alice").Return(attemptsOn(3, 15), nil)
	puzzles.On("UnattemptedIDs", mock.Anything, "alice", int64(20)).Return([]int64{7}, nil)
	puzzles.On("Get", mock.Anything, int64(7)).Return(emptyBoardPuzzle(7), nil)

	svc := services.NewPuzzleService(puzzles, attempts, defaultSelection, indexSource{})
	got, err := svc.NextPuzzle(context.Background(), " alice\t")

	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	attempts.AssertExpectations(t)
	puzzles.AssertExpectations(t)
}

func TestNextPuzzle_EmptyUsername(t *testing.T) {
	puzzles, attempts := new(mocks.MockPuzzleRepository), new(mocks.MockAttemptRepository)

	svc := services.NewPuzzleService(puzzles, attempts, defaultSelection, indexSource{})
	_, err := svc.NextPuzzle(context.Background(), "  ")

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
	attempts.AssertNotCalled(t, "FirstAttemptsByPlayer", mock.Anything, mock.Anything)
}

func TestNextPuzzle_StorageFailure(t *testing.T) {
	puzzles, attempts := new(mocks.MockPuzzleRepository), new(mocks.MockAttemptRepository)
	attempts.On("FirstAttemptsByPlayer", mock.Anything, "alice").Return(nil, stderrors.New("disk I/O error"))

	svc := services.NewPuzzleService(puzzles, attempts, defaultSelection, indexSource{})
	_, err := svc.NextPuzzle(context.Background(), "alice")

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeStorageUnavailable, appErr.Code)
	assert.Equal(t, 500, appErr.Status)
}

func TestAddPuzzle(t *testing.T) {
	puzzles, attempts := new(mocks.MockPuzzleRepository), new(mocks.MockAttemptRepository)
	svc := services.NewPuzzleService(puzzles, attempts, defaultSelection, indexSource{})

	valid := models.Puzzle{Size: 5, RootTPS: "x5/x5/x5/x5/x5 1 1", Solution: []string{"a1"}}
	puzzles.On("Insert", mock.Anything, valid).Return(int64(31), nil)

	id, err := svc.AddPuzzle(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, int64(31), id)

	tests := []struct {
		name   string
		puzzle models.Puzzle
	}{
		{"no solution", models.Puzzle{Size: 5, RootTPS: "x5/x5/x5/x5/x5 1 1"}},
		{"board too small", models.Puzzle{Size: 2, RootTPS: "x2/x2 1 1", Solution: []string{"a1"}}},
		{"no position", models.Puzzle{Size: 5, Solution: []string{"a1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddPuzzle(context.Background(), tt.puzzle)
			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
		})
	}
	puzzles.AssertNumberOfCalls(t, "Insert", 1)
}
