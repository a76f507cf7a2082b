package models

type Puzzle struct {
	ID                int64    `json:"id"`
	Size              int      `json:"size"`
	Komi              string   `json:"komi"`
	RootTPS           string   `json:"rootTPS"`
	DefenderStartMove string   `json:"defenderStartMove"`
	Solution          []string `json:"solution"`
	TargetTimeSeconds int      `json:"targetTimeSeconds"`
	PlayerWhite       string   `json:"playerWhite"`
	PlayerBlack       string   `json:"playerBlack"`
	PlaytakGameID     int64    `json:"playtakGameId"`
}
