package models

type PlayerRating struct {
	Username string  `json:"username"`
	Rating   float64 `json:"rating"`
}

// RatingSample is a player's first attempt on a puzzle joined with the
// player's current rating.
type RatingSample struct {
	Username string  `json:"username"`
	Solved   bool    `json:"solved"`
	Rating   float64 `json:"rating"`
}
