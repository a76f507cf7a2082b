package api

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/takpuzzles/internal/difficulty"
	"github.com/vytor/takpuzzles/internal/glicko"
	"github.com/vytor/takpuzzles/internal/models"
	"github.com/vytor/takpuzzles/internal/random"
	"github.com/vytor/takpuzzles/internal/repository/sqlite"
	"github.com/vytor/takpuzzles/internal/services"
	"github.com/vytor/takpuzzles/internal/testutil"
)

const emptyBoard = "x6/x6/x6/x6/x6/x6 1 1"

type APISuite struct {
	suite.Suite
	db      *sql.DB
	server  *Server
	handler http.Handler
}

func (s *APISuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	for id := int64(1); id <= 20; id++ {
		testutil.SeedPuzzle(s.T(), s.db, id, emptyBoard, "a1", "b1", "c1", "d1")
	}

	puzzles := sqlite.NewPuzzleRepository(s.db)
	attempts := sqlite.NewAttemptRepository(s.db)
	players := sqlite.NewPlayerRepository(s.db)
	s.server = &Server{
		PuzzleService: services.NewPuzzleService(puzzles, attempts, services.SelectionConfig{
			OnboardingPuzzleIDs:     []int64{3, 15},
			CandidatePoolUpperBound: 20,
		}, random.NewSeeded(1)),
		AttemptService: services.NewAttemptService(attempts),
		RatingService: services.NewRatingService(puzzles, attempts, players, services.RatingConfig{
			ExcludedPlayers: []string{"Morten", "Mort2"},
			Glicko:          glicko.DefaultConfig(),
		}),
		DB: s.db,
	}
	s.handler = s.server.Routes()
}

func (s *APISuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *APISuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) nextPuzzle(username string) models.Puzzle {
	rec := s.do(http.MethodGet, "/puzzles?username="+username, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var p models.Puzzle
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func (s *APISuite) submit(id int64, username string, solved bool) {
	body := fmt.Sprintf(`{"username":%q,"solved":%t,"solution":["a1","b1"],"solveTimeSeconds":12}`, username, solved)
	rec := s.do(http.MethodPost, fmt.Sprintf("/puzzles/%d", id), body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *APISuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body errorBody
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Code
}

func (s *APISuite) TestServesOnboardingThenEveryPoolPuzzleOnce() {
	first := s.nextPuzzle("alice")
	s.Equal(int64(3), first.ID)
	s.Equal(emptyBoard, first.RootTPS)
	low, high := difficulty.TargetTimeBounds(emptyBoard, 4)
	s.GreaterOrEqual(float64(first.TargetTimeSeconds), low)
	s.Less(float64(first.TargetTimeSeconds), high)

	// Serving again without an attempt repeats the same onboarding puzzle.
	s.Equal(int64(3), s.nextPuzzle("alice").ID)
	s.submit(3, "alice", false)

	s.Equal(int64(15), s.nextPuzzle("alice").ID)
	s.submit(15, "alice", true)

	seen := map[int64]bool{3: true, 15: true}
	for i := 0; i < 17; i++ {
		p := s.nextPuzzle("alice")
		s.Less(p.ID, int64(20))
		s.False(seen[p.ID], "puzzle %d served twice", p.ID)
		seen[p.ID] = true
		s.submit(p.ID, "alice", true)
	}

	rec := s.do(http.MethodGet, "/puzzles?username=alice", "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("NOT_FOUND", s.errorCode(rec))
}

func (s *APISuite) TestNextPuzzleRequiresUsername() {
	rec := s.do(http.MethodGet, "/puzzles", "")

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))
	s.Equal("VALIDATION_ERROR", s.errorCode(rec))
}

func (s *APISuite) TestSubmitAttemptErrors() {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown puzzle", "/puzzles/999", `{"username":"alice","solved":true}`, http.StatusNotFound, "NOT_FOUND"},
		{"bad id", "/puzzles/abc", `{"username":"alice"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"bad json", "/puzzles/1", `{"username":`, http.StatusBadRequest, "BAD_REQUEST"},
		{"empty username", "/puzzles/1", `{"username":"","solved":true}`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.do(http.MethodPost, tt.path, tt.body)
			s.Equal(tt.status, rec.Code)
			s.Equal(tt.code, s.errorCode(rec))
		})
	}
}

func (s *APISuite) TestPuzzleRating() {
	readRating := func(id int64) float64 {
		rec := s.do(http.MethodGet, fmt.Sprintf("/puzzles/%d/rating", id), "")
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		var rating float64
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &rating))
		return rating
	}

	s.Equal(1950.0, readRating(2))

	testutil.SeedPlayer(s.T(), s.db, "Morten", 2400)
	s.submit(2, "Morten", true)
	s.Equal(1950.0, readRating(2), "excluded players never move a rating")

	testutil.SeedPlayer(s.T(), s.db, "bob", 1800)
	s.submit(2, "bob", true)
	easier := readRating(2)
	s.Less(easier, 1950.0)

	// Only the first attempt counts.
	s.submit(2, "bob", false)
	s.Equal(easier, readRating(2))
}

func (s *APISuite) TestPaddedUsernameJoinsCuratedRating() {
	testutil.SeedPlayer(s.T(), s.db, "bob", 1800)
	s.submit(6, " bob ", true)

	rec := s.do(http.MethodGet, "/puzzles/6/rating", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var rating float64
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &rating))
	s.Less(rating, 1950.0)

	rec = s.do(http.MethodGet, "/players/bob/attempts", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"username":"bob"`)
}

func (s *APISuite) TestPuzzleRatingUnknownPuzzle() {
	rec := s.do(http.MethodGet, "/puzzles/404/rating", "")

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("NOT_FOUND", s.errorCode(rec))
}

func (s *APISuite) TestPlayerAttempts() {
	s.submit(5, "carol", false)
	s.submit(5, "carol", true)
	s.submit(7, "carol", true)

	rec := s.do(http.MethodGet, "/players/carol/attempts", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var attempts []models.Attempt
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &attempts))
	s.Require().Len(attempts, 2)
	s.Equal(int64(5), attempts[0].PuzzleID)
	s.False(attempts[0].Solved)
	s.Equal([]string{"a1", "b1"}, attempts[0].Solution)
	s.Equal(int64(7), attempts[1].PuzzleID)
}

func (s *APISuite) TestHealthAndReadiness() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/healthz", "").Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/readyz", "").Code)

	s.server.DB = failingPinger{}
	s.Equal(http.StatusServiceUnavailable, s.do(http.MethodGet, "/readyz", "").Code)
}

func (s *APISuite) TestUnknownRoute() {
	rec := s.do(http.MethodGet, "/nope", "")

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("NOT_FOUND", s.errorCode(rec))
}

func (s *APISuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/puzzles/3", nil)
	req.Header.Set("Origin", "https://tak.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	s.handler.ServeHTTP(rec, req)

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func (s *APISuite) TestRequestIDEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()

	s.handler.ServeHTTP(rec, req)

	s.Equal("req-123", rec.Header().Get("X-Request-ID"))
	s.NotEmpty(s.do(http.MethodGet, "/healthz", "").Header().Get("X-Request-ID"))
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return stderrors.New("database is closed") }

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}
