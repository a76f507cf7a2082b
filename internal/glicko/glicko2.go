// Package glicko implements a single Glicko-2 rating period as described in
// Mark Glickman's "Example of the Glicko-2 system".
package glicko

import "math"

const (
	// scale converts between the Glicko and Glicko-2 scales.
	scale = 173.7178

	DefaultRating     = 1500.0
	DefaultDeviation  = 350.0
	DefaultVolatility = 0.06

	maxIterations = 1000
)

type Rating struct {
	Rating     float64 `json:"rating"`
	Deviation  float64 `json:"deviation"`
	Volatility float64 `json:"volatility"`
}

// NewRating returns a competitor at r with the default deviation and volatility.
func NewRating(r float64) Rating {
	return Rating{Rating: r, Deviation: DefaultDeviation, Volatility: DefaultVolatility}
}

// Outcome is the score of a game from the rated competitor's side.
type Outcome float64

const (
	Loss Outcome = 0
	Draw Outcome = 0.5
	Win  Outcome = 1
)

type Result struct {
	Opponent Rating
	Outcome  Outcome
}

type Config struct {
	// Tau constrains the change in volatility over time.
	Tau float64
	// ConvergenceTolerance ends the volatility iteration.
	ConvergenceTolerance float64
}

func DefaultConfig() Config {
	return Config{Tau: 0.5, ConvergenceTolerance: 1e-6}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Tau <= 0 {
		c.Tau = def.Tau
	}
	if c.ConvergenceTolerance <= 0 {
		c.ConvergenceTolerance = def.ConvergenceTolerance
	}
	return c
}

// RatingPeriod rates player against every result at once. With no results
// the rating and volatility are kept and only the deviation grows.
func RatingPeriod(player Rating, results []Result, cfg Config) Rating {
	cfg = cfg.normalized()

	mu := (player.Rating - DefaultRating) / scale
	phi := player.Deviation / scale
	sigma := player.Volatility

	if len(results) == 0 {
		return Rating{
			Rating:     player.Rating,
			Deviation:  math.Sqrt(phi*phi+sigma*sigma) * scale,
			Volatility: sigma,
		}
	}

	var vInv, improvement float64
	for _, r := range results {
		muJ := (r.Opponent.Rating - DefaultRating) / scale
		gJ := g(r.Opponent.Deviation / scale)
		e := expected(mu, muJ, gJ)
		vInv += gJ * gJ * e * (1 - e)
		improvement += gJ * (float64(r.Outcome) - e)
	}
	v := 1 / vInv
	delta := v * improvement

	newSigma := volatility(phi, v, delta, sigma, cfg)
	phiStar := math.Sqrt(phi*phi + newSigma*newSigma)
	newPhi := 1 / math.Sqrt(1/(phiStar*phiStar)+1/v)
	newMu := mu + newPhi*newPhi*improvement

	return Rating{
		Rating:     newMu*scale + DefaultRating,
		Deviation:  newPhi * scale,
		Volatility: newSigma,
	}
}

func g(phi float64) float64 {
	return 1 / math.Sqrt(1+3*phi*phi/(math.Pi*math.Pi))
}

func expected(mu, muJ, gJ float64) float64 {
	return 1 / (1 + math.Exp(-gJ*(mu-muJ)))
}

// volatility solves for the new volatility with the Illinois variant of
// regula falsi.
func volatility(phi, v, delta, sigma float64, cfg Config) float64 {
	a := math.Log(sigma * sigma)
	tau2 := cfg.Tau * cfg.Tau
	f := func(x float64) float64 {
		ex := math.Exp(x)
		d := phi*phi + v + ex
		return ex*(delta*delta-phi*phi-v-ex)/(2*d*d) - (x-a)/tau2
	}

	A := a
	var B float64
	if delta*delta > phi*phi+v {
		B = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1.0
		for f(a-k*cfg.Tau) < 0 {
			k++
		}
		B = a - k*cfg.Tau
	}

	fA, fB := f(A), f(B)
	for i := 0; math.Abs(B-A) > cfg.ConvergenceTolerance && i < maxIterations; i++ {
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if fC*fB <= 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}
	return math.Exp(A / 2)
}
