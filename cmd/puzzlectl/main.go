// Command puzzlectl administers the puzzle database: curating player ratings,
// adding puzzles and printing the derived rating of every puzzle.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vytor/takpuzzles/internal/config"
	"github.com/vytor/takpuzzles/internal/db"
	"github.com/vytor/takpuzzles/internal/errors"
	"github.com/vytor/takpuzzles/internal/glicko"
	"github.com/vytor/takpuzzles/internal/logger"
	"github.com/vytor/takpuzzles/internal/models"
	"github.com/vytor/takpuzzles/internal/random"
	"github.com/vytor/takpuzzles/internal/repository/sqlite"
	"github.com/vytor/takpuzzles/internal/services"
	"github.com/vytor/takpuzzles/internal/worker"
)

const usage = `usage: puzzlectl <command> [flags]

commands:
  set-rating -player NAME -rating R   set a player's curated rating
  add-puzzle -tps TPS -solution MOVES add a puzzle to the catalog
  players                             list rated players
  ratings                             print the derived rating of every puzzle
`

type app struct {
	cfg     config.Config
	puzzles services.PuzzleService
	ratings services.RatingService
	out     io.Writer
}

func main() {
	cfg := config.Load()
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithOutput(os.Stderr),
		logger.WithJSON(cfg.LogFormat == "json"),
	)
	logger.SetDefault(log)
	defer log.Sync()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	a := newApp(cfg, database.DB, os.Stdout)
	if err := a.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		log.Error("%s: %v", os.Args[1], err)
		database.Close()
		os.Exit(1)
	}
}

func newApp(cfg config.Config, sqlDB *sql.DB, out io.Writer) *app {
	puzzleRepo := sqlite.NewPuzzleRepository(sqlDB)
	attemptRepo := sqlite.NewAttemptRepository(sqlDB)
	playerRepo := sqlite.NewPlayerRepository(sqlDB)
	return &app{
		cfg: cfg,
		puzzles: services.NewPuzzleService(puzzleRepo, attemptRepo, services.SelectionConfig{
			OnboardingPuzzleIDs:     cfg.OnboardingPuzzleIDs,
			CandidatePoolUpperBound: cfg.CandidatePoolUpperBound,
		}, random.Default()),
		ratings: services.NewRatingService(puzzleRepo, attemptRepo, playerRepo, services.RatingConfig{
			ExcludedPlayers: cfg.RatingExcludedPlayers,
			Glicko:          glicko.Config{Tau: cfg.GlickoTau},
		}),
		out: out,
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "set-rating":
		return a.setRating(ctx, args)
	case "add-puzzle":
		return a.addPuzzle(ctx, args)
	case "players":
		return a.listPlayers(ctx)
	case "ratings":
		return a.printRatings(ctx)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func (a *app) setRating(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-rating", flag.ContinueOnError)
	player := fs.String("player", "", "player username")
	rating := fs.Float64("rating", 0, "curated rating")
	if err := fs.Parse(args); err != nil {
		return err
	}

	previous := "unrated"
	current, err := a.ratings.PlayerRating(ctx, *player)
	switch {
	case err == nil:
		previous = fmt.Sprintf("%.1f", current.Rating)
	case !errors.IsNotFound(err):
		return err
	}

	if err := a.ratings.SetPlayerRating(ctx, *player, *rating); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s -> %.1f\n", strings.TrimSpace(*player), previous, *rating)
	return nil
}

func (a *app) addPuzzle(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-puzzle", flag.ContinueOnError)
	tps := fs.String("tps", "", "root position in TPS")
	solution := fs.String("solution", "", "space separated PTN moves")
	size := fs.Int("size", 6, "board size")
	komi := fs.String("komi", "0", "komi")
	defender := fs.String("defender", "", "defender's start move")
	white := fs.String("white", "", "white player of the source game")
	black := fs.String("black", "", "black player of the source game")
	gameID := fs.Int64("game-id", 0, "playtak game id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := a.puzzles.AddPuzzle(ctx, models.Puzzle{
		Size:              *size,
		Komi:              *komi,
		RootTPS:           *tps,
		DefenderStartMove: *defender,
		Solution:          strings.Fields(*solution),
		PlayerWhite:       *white,
		PlayerBlack:       *black,
		PlaytakGameID:     *gameID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d\n", id)
	return nil
}

func (a *app) listPlayers(ctx context.Context) error {
	players, err := a.ratings.ListPlayerRatings(ctx)
	if err != nil {
		return err
	}
	for _, p := range players {
		fmt.Fprintf(a.out, "%-24s %7.1f\n", p.Username, p.Rating)
	}
	return nil
}

// printRatings rates every puzzle on the report worker pool. Failed puzzles
// are reported inline and do not stop the run.
func (a *app) printRatings(ctx context.Context) error {
	ids, err := a.puzzles.ListPuzzleIDs(ctx)
	if err != nil {
		return err
	}

	report := &worker.RatingReport{}
	pool := worker.NewPool(a.cfg.ReportWorkerCount, len(ids))
	pool.Start(ctx)
	for _, id := range ids {
		pool.Submit(&worker.RatingJob{Rater: a.ratings, PuzzleID: id, Report: report})
	}
	pool.Drain()

	failed := 0
	for _, line := range report.Lines() {
		if line.Err != nil {
			failed++
			fmt.Fprintf(a.out, "%6d  error: %v\n", line.PuzzleID, line.Err)
			continue
		}
		fmt.Fprintf(a.out, "%6d  %7.1f  ±%5.1f\n", line.PuzzleID, line.Rating.Rating, line.Rating.Deviation)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d puzzles could not be rated", failed, len(ids))
	}
	return nil
}
