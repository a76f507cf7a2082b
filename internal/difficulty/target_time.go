package difficulty

import (
	"strings"

	"github.com/vytor/takpuzzles/internal/random"
)

// PieceCount counts the '1' and '2' markers of a TPS string and halves the
// total.
func PieceCount(rootTPS string) int {
	n := strings.Count(rootTPS, "1") + strings.Count(rootTPS, "2")
	return n / 2
}

// TargetTimeBounds returns the [low, high) range TargetTime draws from.
func TargetTimeBounds(rootTPS string, solutionLen int) (low, high float64) {
	plyPairs := (solutionLen + 1) / 2
	low = float64(20+PieceCount(rootTPS)) * float64(plyPairs)
	return low, low * 1.2
}

// TargetTime suggests a solve time in seconds. It is drawn fresh on every
// call and is only shown to the player, never scored.
func TargetTime(rootTPS string, solution []string, src random.Source) int {
	low, high := TargetTimeBounds(rootTPS, len(solution))
	if low <= 0 {
		return 0
	}
	return int(low + src.Float64()*(high-low))
}
