// Package model defines the persistence models for game records and
// per-player statistics.
package model

import "time"

// GameRecord is one finished match as stored in the game_records table.
// GameData holds the serialized board snapshot.
type GameRecord struct {
	ID         int64     `db:"id"`
	GameType   string    `db:"game_type"`
	Player1ID  string    `db:"player1_id"`
	Player2ID  string    `db:"player2_id"`
	GroupID    string    `db:"group_id"`
	WinnerID   *string   `db:"winner_id"` // nil on a draw
	StartTime  time.Time `db:"start_time"`
	EndTime    time.Time `db:"end_time"`
	MovesCount int       `db:"moves_count"`
	GameData   []byte    `db:"game_data"`
	IsAIGame   bool      `db:"is_ai_game"`
}

// UserStats is one player's record for a (group, game type) pair.
type UserStats struct {
	UserID        string    `db:"user_id"`
	GroupID       string    `db:"group_id"`
	GameType      string    `db:"game_type"`
	TotalGames    int       `db:"total_games"`
	Wins          int       `db:"wins"`
	Losses        int       `db:"losses"`
	Draws         int       `db:"draws"`
	BestStreak    int       `db:"best_streak"`
	CurrentStreak int       `db:"current_streak"`
	LastGameTime  time.Time `db:"last_game_time"`
}

// RankingEntry is one row of a group leaderboard.
type RankingEntry struct {
	UserID     string `db:"user_id"`
	Wins       int    `db:"wins"`
	Losses     int    `db:"losses"`
	Draws      int    `db:"draws"`
	TotalGames int    `db:"total_games"`
}

// Outcome is a single player's result in one match.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)
